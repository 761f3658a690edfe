package encoder

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"catalog/btree"
)

/*
Fixed-column line layout of the catalog file:

	[0,7)    part ID, left-justified
	[7,15)   separator, spaces on write, ignored on read
	[15,80)  description, left-justified

Columns count characters, not bytes, matching the padding of fmt's %-*s.
Longer fields are not truncated, they just widen the line.
*/
const (
	KeyWidth          = 7
	DescriptionOffset = 15
	DescriptionWidth  = 65
	MinLineLength     = DescriptionOffset + 1
)

type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode formats p as one catalog line, without the trailing newline.
func (e *Encoder) Encode(p btree.Part) string {
	// the ID column and the separator are padded together
	return fmt.Sprintf("%-*s%-*s", DescriptionOffset, p.ID, DescriptionWidth, p.Description)
}

// Parse extracts a part from a catalog line. Lines shorter than
// MinLineLength characters are rejected.
func (e *Encoder) Parse(line string) (btree.Part, bool) {
	if utf8.RuneCountInString(line) < MinLineLength {
		return btree.Part{}, false
	}
	return btree.Part{
		ID:          strings.TrimSpace(line[:runeOffset(line, KeyWidth)]),
		Description: strings.TrimSpace(line[runeOffset(line, DescriptionOffset):]),
	}, true
}

// byte offset of the n-th character of s, so a cut never splits a rune
func runeOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}
