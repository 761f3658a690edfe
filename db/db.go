package db

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"catalog/btree"
	"catalog/encoder"
	"catalog/snapshot"
)

const maxLineLength = 1 << 20

var (
	ErrLoad      = errors.New("catalog: load failed")
	ErrSave      = errors.New("catalog: save failed")
	ErrEmptyID   = errors.New("catalog: part ID is empty")
	ErrIDTooLong = fmt.Errorf("catalog: part ID longer than %d characters", encoder.KeyWidth)
)

/*
Catalog owns the in-memory index of parts and the flat file it is loaded
from and saved to. The whole index lives in memory; the file is only
touched by Load and Save.
*/
type Catalog struct {
	path    string
	tree    *btree.Tree
	maxKeys int
	encoder *encoder.Encoder
	log     *slog.Logger
}

type Option func(*Catalog)

// WithMaxKeys sets the fan-out bound of the index tree.
func WithMaxKeys(n int) Option {
	return func(c *Catalog) { c.maxKeys = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) { c.log = l }
}

/*
Open creates a catalog backed by path and loads it.
The returned catalog is always usable: when the file cannot be read the
catalog starts out empty and the load error is returned alongside it.
*/
func Open(path string, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		path:    path,
		maxKeys: btree.DefaultMaxKeys,
		encoder: encoder.NewEncoder(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("catalog", path)
	c.tree = btree.NewTree(c.maxKeys)
	return c, c.Load()
}

func (c *Catalog) Path() string      { return c.path }
func (c *Catalog) Len() int          { return c.tree.Len() }
func (c *Catalog) Tree() *btree.Tree { return c.tree }

/*
Load replaces the index with the contents of the catalog file.
Lines shorter than encoder.MinLineLength are skipped. On an I/O failure
the index is left empty.
*/
func (c *Catalog) Load() error {
	c.tree = btree.NewTree(c.maxKeys)

	f, err := os.Open(c.path)
	if err != nil {
		c.log.Warn("cannot open catalog file, starting empty", "err", err)
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)
	lineNum, skipped := 0, 0
	for scanner.Scan() {
		lineNum++
		p, ok := c.encoder.Parse(scanner.Text())
		if !ok {
			skipped++
			c.log.Debug("skipping short line", "line", lineNum)
			continue
		}
		c.tree.Insert(p)
	}
	if err := scanner.Err(); err != nil {
		c.tree = btree.NewTree(c.maxKeys)
		c.log.Warn("cannot read catalog file, starting empty", "line", lineNum, "err", err)
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}

	c.log.Info("loaded catalog", "parts", c.tree.Len(), "skipped", skipped)
	return nil
}

// Save overwrites the catalog file with every part in key order.
// A failed save leaves the index untouched; the file may be partially written.
func (c *Catalog) Save() (err error) {
	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrSave, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	for p := range c.tree.All() {
		if _, err := bw.WriteString(c.encoder.Encode(p) + "\n"); err != nil {
			return fmt.Errorf("%w: %w", ErrSave, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}

	c.log.Info("saved catalog", "parts", c.tree.Len())
	return nil
}

func (c *Catalog) Search(id string) (btree.Part, bool) {
	return c.tree.Search(strings.TrimSpace(id))
}

/*
Insert adds a part. An ID that is already present is not replaced, the
catalog then holds both entries (use Modify to replace).
IDs are trimmed and must fit the ID column of the catalog file.
*/
func (c *Catalog) Insert(id, description string) error {
	id, err := validID(id)
	if err != nil {
		return err
	}
	c.tree.Insert(btree.Part{ID: id, Description: description})
	c.log.Debug("inserted part", "id", id)
	return nil
}

// Delete removes the first part stored under id and reports whether one existed.
func (c *Catalog) Delete(id string) bool {
	removed := c.tree.Delete(strings.TrimSpace(id))
	c.log.Debug("deleted part", "id", id, "found", removed)
	return removed
}

// Modify replaces the description of id by deleting and re-inserting the part.
// A missing id is simply inserted.
func (c *Catalog) Modify(id, description string) error {
	id, err := validID(id)
	if err != nil {
		return err
	}
	c.tree.Delete(id)
	c.tree.Insert(btree.Part{ID: id, Description: description})
	c.log.Debug("modified part", "id", id)
	return nil
}

// List returns every part in key order.
func (c *Catalog) List() []btree.Part {
	return c.tree.Parts()
}

// Range returns the parts with from <= ID < to; an empty to is unbounded.
func (c *Catalog) Range(from, to string) []btree.Part {
	return c.tree.Range(from, to)
}

func (c *Catalog) Display(w io.Writer) error {
	return c.tree.Display(w)
}

// Reset drops every part from the index. The file is untouched until Save.
func (c *Catalog) Reset() {
	c.tree = btree.NewTree(c.maxKeys)
}

// Backup writes a compressed snapshot of the catalog to w.
func (c *Catalog) Backup(w io.Writer) (int, error) {
	sw, err := snapshot.NewWriter(w)
	if err != nil {
		return 0, err
	}
	for p := range c.tree.All() {
		if err := sw.Write(p); err != nil {
			return int(sw.Count()), err
		}
	}
	if err := sw.Close(); err != nil {
		return int(sw.Count()), err
	}
	c.log.Info("wrote snapshot", "parts", sw.Count())
	return int(sw.Count()), nil
}

// Restore replaces the index with the parts of a snapshot read from r.
// The index is only swapped once the whole snapshot was read.
func (c *Catalog) Restore(r io.Reader) (int, error) {
	sr, err := snapshot.NewReader(r)
	if err != nil {
		return 0, err
	}
	tree := btree.NewTree(c.maxKeys)
	for {
		p, err := sr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		tree.Insert(p)
	}
	c.tree = tree
	c.log.Info("restored snapshot", "parts", tree.Len())
	return tree.Len(), nil
}

func validID(id string) (string, error) {
	id = strings.TrimSpace(id)
	switch {
	case id == "":
		return "", ErrEmptyID
	case utf8.RuneCountInString(id) > encoder.KeyWidth:
		return "", fmt.Errorf("%w: %q", ErrIDTooLong, id)
	}
	return id, nil
}
