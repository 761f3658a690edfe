package db

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog/btree"
	"catalog/encoder"
)

var quiet = WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

func writeFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "partfile.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func line(id, desc string) string {
	return encoder.NewEncoder().Encode(btree.Part{ID: id, Description: desc})
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "nope.txt"), quiet)
	require.ErrorIs(t, err, ErrLoad)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.NotNil(t, c)
	assert.Equal(t, 0, c.Len())

	require.NoError(t, c.Insert("A1", "still usable"))
	p, ok := c.Search("A1")
	require.True(t, ok)
	assert.Equal(t, "still usable", p.Description)
}

func TestLoadSkipsShortLines(t *testing.T) {
	path := writeFile(t,
		line("B2", "Bolt"),
		"",
		"short line",
		"A1     xxxxxxx",
		line("A1", "Anchor"),
		"C3     ########Cog",
	)
	c, err := Open(path, quiet)
	require.NoError(t, err)
	assert.Equal(t, []btree.Part{
		{ID: "A1", Description: "Anchor"},
		{ID: "B2", Description: "Bolt"},
		{ID: "C3", Description: "Cog"},
	}, c.List())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partfile.txt")
	c, _ := Open(path, quiet, WithMaxKeys(4))

	want := map[string]string{}
	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("F%05d", i*7%1000)
		desc := faker.Sentence()
		if len(desc) > encoder.DescriptionWidth {
			desc = strings.TrimSpace(desc[:encoder.DescriptionWidth])
		}
		want[id] = desc
		require.NoError(t, c.Modify(id, desc))
	}
	require.NoError(t, c.Save())

	loaded, err := Open(path, quiet)
	require.NoError(t, err)
	assert.Equal(t, len(want), loaded.Len())
	for _, p := range loaded.List() {
		assert.Equal(t, want[p.ID], p.Description, p.ID)
	}
	assert.Equal(t, c.List(), loaded.List())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	assert.Len(t, lines, len(want))
}

func TestSaveFixedWidth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partfile.txt")
	c, _ := Open(path, quiet)
	require.NoError(t, c.Insert("X1", "Widget"))
	require.NoError(t, c.Save())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	got := strings.TrimSuffix(string(raw), "\n")
	assert.Equal(t, "X1", strings.TrimSpace(got[:7]))
	assert.Equal(t, "Widget", strings.TrimSpace(got[15:]))
}

func TestSaveFailureKeepsIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "partfile.txt")
	c, _ := Open(path, quiet)
	require.NoError(t, c.Insert("A1", "Anchor"))

	err := c.Save()
	require.ErrorIs(t, err, ErrSave)
	assert.Equal(t, []btree.Part{{ID: "A1", Description: "Anchor"}}, c.List())
}

func TestInsertValidatesID(t *testing.T) {
	c, _ := Open(filepath.Join(t.TempDir(), "p.txt"), quiet)
	assert.ErrorIs(t, c.Insert("   ", "blank"), ErrEmptyID)
	assert.ErrorIs(t, c.Insert("TOOLONG1", "eight"), ErrIDTooLong)
	assert.ErrorIs(t, c.Insert("ÄÄÄÄÄÄÄÄ", "eight runes"), ErrIDTooLong)
	require.NoError(t, c.Insert("ÄÖÜ-ß12", "seven runes, more bytes"))
	assert.ErrorIs(t, c.Modify("", "blank"), ErrEmptyID)
	require.NoError(t, c.Insert(" A1 ", "trimmed"))

	p, ok := c.Search("A1")
	require.True(t, ok)
	assert.Equal(t, "A1", p.ID)
	assert.Equal(t, 2, c.Len())
}

func TestInsertKeepsDuplicates(t *testing.T) {
	c, _ := Open(filepath.Join(t.TempDir(), "p.txt"), quiet)
	require.NoError(t, c.Insert("A1", "first"))
	require.NoError(t, c.Insert("A1", "second"))
	assert.Equal(t, 2, c.Len())

	p, _ := c.Search("A1")
	assert.Equal(t, "first", p.Description)
}

func TestModify(t *testing.T) {
	c, _ := Open(filepath.Join(t.TempDir(), "p.txt"), quiet)

	require.NoError(t, c.Modify("A123", "new desc"))
	p, ok := c.Search("A123")
	require.True(t, ok)
	assert.Equal(t, "new desc", p.Description)

	require.NoError(t, c.Modify("A123", "newer desc"))
	assert.Equal(t, []btree.Part{{ID: "A123", Description: "newer desc"}}, c.List())
}

func TestModifyDuplicateSplitAcrossLeaves(t *testing.T) {
	c, _ := Open(filepath.Join(t.TempDir(), "p.txt"), quiet, WithMaxKeys(3))
	for _, id := range []string{"A", "B", "B", "B", "C"} {
		require.NoError(t, c.Insert(id, "desc "+id))
	}

	require.NoError(t, c.Modify("B", "replaced"))
	assert.Equal(t, 5, c.Len())

	removed := 0
	for c.Delete("B") {
		removed++
	}
	assert.Equal(t, 3, removed)
	assert.Equal(t, []btree.Part{{ID: "A", Description: "desc A"}, {ID: "C", Description: "desc C"}}, c.List())
	require.NoError(t, c.Tree().Check())
}

func TestMultibyteIDsSurviveSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.txt")
	c, _ := Open(path, quiet)
	require.NoError(t, c.Insert("ÄÖÜ-ß12", "Dichtung, rund"))
	require.NoError(t, c.Insert("日本", "部品"))
	require.NoError(t, c.Save())

	loaded, err := Open(path, quiet)
	require.NoError(t, err)
	assert.Equal(t, c.List(), loaded.List())
}

func TestDelete(t *testing.T) {
	c, _ := Open(filepath.Join(t.TempDir(), "p.txt"), quiet)
	for _, id := range []string{"C", "A", "B"} {
		require.NoError(t, c.Insert(id, "part "+id))
	}
	before := c.List()

	assert.False(t, c.Delete("Z"))
	assert.Equal(t, before, c.List())

	assert.True(t, c.Delete("B"))
	_, ok := c.Search("B")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestRangeAndDisplay(t *testing.T) {
	c, _ := Open(filepath.Join(t.TempDir(), "p.txt"), quiet)
	for _, id := range []string{"D", "B", "A", "C"} {
		require.NoError(t, c.Insert(id, strings.ToLower(id)))
	}
	assert.Equal(t, []btree.Part{{ID: "B", Description: "b"}, {ID: "C", Description: "c"}}, c.Range("B", "D"))

	var buf bytes.Buffer
	require.NoError(t, c.Display(&buf))
	assert.Equal(t, "A: a\nB: b\nC: c\nD: d\n", buf.String())
}

func TestReset(t *testing.T) {
	path := writeFile(t, line("A1", "Anchor"))
	c, err := Open(path, quiet)
	require.NoError(t, err)
	c.Reset()
	assert.Equal(t, 0, c.Len())

	require.NoError(t, c.Load())
	assert.Equal(t, 1, c.Len())
}

func TestBackupRestore(t *testing.T) {
	src, _ := Open(filepath.Join(t.TempDir(), "a.txt"), quiet)
	for i := 0; i < 50; i++ {
		require.NoError(t, src.Insert(fmt.Sprintf("B%03d", i), faker.Word()))
	}

	var buf bytes.Buffer
	n, err := src.Backup(&buf)
	require.NoError(t, err)
	assert.Equal(t, 50, n)

	dst, _ := Open(filepath.Join(t.TempDir(), "b.txt"), quiet)
	require.NoError(t, dst.Insert("OLD", "replaced by restore"))
	n, err = dst.Restore(&buf)
	require.NoError(t, err)
	assert.Equal(t, 50, n)
	assert.Equal(t, src.List(), dst.List())
	require.NoError(t, dst.Tree().Check())
}

func TestRestoreFailureKeepsIndex(t *testing.T) {
	c, _ := Open(filepath.Join(t.TempDir(), "a.txt"), quiet)
	require.NoError(t, c.Insert("A1", "Anchor"))

	_, err := c.Restore(strings.NewReader("not a snapshot"))
	require.Error(t, err)
	assert.Equal(t, 1, c.Len())
}
