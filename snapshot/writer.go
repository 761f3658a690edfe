package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/golang/snappy"

	"catalog/btree"
)

/*
A snapshot is a snappy framed stream holding

	magic (4B) | entry* | trailer

entry   = kindPart (1B) | uvarint(len(id)) | uvarint(len(desc)) | id | desc
trailer = kindEnd (1B) | uvarint(number of entries)

The trailer lets the reader tell a complete snapshot from a truncated one.
*/
var magic = []byte{0x50, 0x43, 0x53, 0x01}

const (
	kindEnd  byte = 0
	kindPart byte = 1
)

var (
	ErrBadMagic  = errors.New("snapshot: not a catalog snapshot")
	ErrTruncated = errors.New("snapshot: truncated")
	ErrCorrupt   = errors.New("snapshot: corrupt")
	ErrClosed    = errors.New("snapshot: writer closed")
)

type Writer struct {
	sw     *snappy.Writer
	buf    *bytes.Buffer
	count  uint64
	closed bool
}

// NewWriter starts a snapshot on w. Close must be called to write the
// trailer; it does not close w.
func NewWriter(w io.Writer) (*Writer, error) {
	sw := snappy.NewBufferedWriter(w)
	if _, err := sw.Write(magic); err != nil {
		return nil, err
	}
	return &Writer{
		sw:  sw,
		buf: bytes.NewBuffer(make([]byte, 0, 256)),
	}, nil
}

// use the buffer's spare capacity as a staging area for one entry
func (w *Writer) scratchBuf(needed int) []byte {
	if needed > w.buf.Available() {
		w.buf.Grow(needed)
	}
	return w.buf.AvailableBuffer()[:needed]
}

func (w *Writer) Write(p btree.Part) error {
	if w.closed {
		return ErrClosed
	}
	idLen, descLen := len(p.ID), len(p.Description)
	buf := w.scratchBuf(1 + 2*binary.MaxVarintLen64 + idLen + descLen)
	buf[0] = kindPart
	n := 1
	n += binary.PutUvarint(buf[n:], uint64(idLen))
	n += binary.PutUvarint(buf[n:], uint64(descLen))
	n += copy(buf[n:], p.ID)
	n += copy(buf[n:], p.Description)
	if _, err := w.sw.Write(buf[:n]); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of parts written so far.
func (w *Writer) Count() uint64 {
	return w.count
}

// Close writes the trailer and flushes the compressed stream.
func (w *Writer) Close() error {
	if w.closed {
		return ErrClosed
	}
	w.closed = true
	buf := w.scratchBuf(1 + binary.MaxVarintLen64)
	buf[0] = kindEnd
	n := 1 + binary.PutUvarint(buf[1:], w.count)
	if _, err := w.sw.Write(buf[:n]); err != nil {
		return err
	}
	return w.sw.Close()
}
