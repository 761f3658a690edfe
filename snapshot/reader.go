package snapshot

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/golang/snappy"

	"catalog/btree"
)

// maximum accepted length of a single ID or description
const maxFieldLen = 1 << 20

type Reader struct {
	br    *bufio.Reader
	buf   []byte
	count uint64
	done  bool
}

// NewReader checks the snapshot magic and prepares to read entries.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(snappy.NewReader(r))
	head := make([]byte, len(magic))
	if _, err := io.ReadFull(br, head); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrBadMagic
		}
		return nil, fmt.Errorf("%w: %w", ErrBadMagic, err)
	}
	if !bytes.Equal(head, magic) {
		return nil, ErrBadMagic
	}
	return &Reader{br: br, buf: make([]byte, 0, 256)}, nil
}

// Next returns the next part, or io.EOF once a valid trailer was read.
func (r *Reader) Next() (btree.Part, error) {
	if r.done {
		return btree.Part{}, io.EOF
	}
	kind, err := r.br.ReadByte()
	if err != nil {
		return btree.Part{}, r.wrap(err)
	}
	switch kind {
	case kindEnd:
		total, err := binary.ReadUvarint(r.br)
		if err != nil {
			return btree.Part{}, r.wrap(err)
		}
		if total != r.count {
			return btree.Part{}, fmt.Errorf("%w: trailer counts %d parts, read %d", ErrCorrupt, total, r.count)
		}
		r.done = true
		return btree.Part{}, io.EOF
	case kindPart:
	default:
		return btree.Part{}, fmt.Errorf("%w: unknown entry kind %d", ErrCorrupt, kind)
	}

	idLen, err := binary.ReadUvarint(r.br)
	if err != nil {
		return btree.Part{}, r.wrap(err)
	}
	descLen, err := binary.ReadUvarint(r.br)
	if err != nil {
		return btree.Part{}, r.wrap(err)
	}
	if idLen > maxFieldLen || descLen > maxFieldLen {
		return btree.Part{}, fmt.Errorf("%w: field length %d/%d", ErrCorrupt, idLen, descLen)
	}
	needed := int(idLen + descLen)
	if cap(r.buf) < needed {
		r.buf = make([]byte, needed)
	}
	buf := r.buf[:needed]
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return btree.Part{}, r.wrap(err)
	}
	r.count++
	return btree.Part{
		ID:          string(buf[:idLen]),
		Description: string(buf[idLen:]),
	}, nil
}

// a stream that ends before the trailer is truncated
func (r *Reader) wrap(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
