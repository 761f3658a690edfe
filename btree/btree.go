package btree

import "errors"

// DefaultMaxKeys is the fan-out bound used when none (or an unusable one) is given.
const (
	DefaultMaxKeys = 3
	minMaxKeys     = 3 // a full leaf must leave at least one key for its right sibling
)

// ErrCorrupt is returned by Check when a structural invariant does not hold.
var ErrCorrupt = errors.New("btree: invariant violated")

// Part is a catalog record. ID is the key the tree is ordered by.
type Part struct {
	ID          string
	Description string
}

func (p Part) String() string {
	return p.ID + ": " + p.Description
}

/*
Tree only keeps a pointer to the root node and the fan-out bound.
Leaves hold the parts, internal nodes hold routing keys only.
*/
type Tree struct {
	root    node
	maxKeys int
	size    int
}

// NewTree returns an empty tree whose root is an empty leaf.
// maxKeys below 3 falls back to DefaultMaxKeys.
func NewTree(maxKeys int) *Tree {
	if maxKeys < minMaxKeys {
		maxKeys = DefaultMaxKeys
	}
	return &Tree{root: &leafNode{}, maxKeys: maxKeys}
}

// MaxKeys returns the fan-out bound of the tree.
func (t *Tree) MaxKeys() int {
	return t.maxKeys
}

// Len returns the number of parts stored in the leaves.
func (t *Tree) Len() int {
	return t.size
}

// Height returns the number of levels, 1 for a tree that is a single leaf.
func (t *Tree) Height() int {
	h := 1
	for n, ok := t.root.(*internalNode); ok; n, ok = n.children[0].(*internalNode) {
		h++
	}
	return h
}
