package btree

import (
	"fmt"
	"strings"
)

// Check validates the structural invariants of the tree:
// keys ascend within every node, every key lies in the range its parent
// routes to that child, all leaves sit at the same depth, no node holds more
// than MaxKeys keys, and the leaf chain visits the leaves left to right.
//
// Keys equal to a neighbour are tolerated since Insert keeps duplicates.
// A key equal to a separator may sit on either side of it: a leaf split
// copies the sibling's first key up and equal keys can remain in the left
// leaf. Lookups descend with the lower bound and walk right to cover this.
func (t *Tree) Check() error {
	var leaves []*leafNode
	depth := -1
	var visit func(n node, low, high *string, d int) error
	visit = func(n node, low, high *string, d int) error {
		var keys []string
		switch n := n.(type) {
		case *leafNode:
			keys = n.keys
			if len(n.parts) != len(n.keys) {
				return fmt.Errorf("%w: leaf has %d keys but %d parts", ErrCorrupt, len(n.keys), len(n.parts))
			}
			for i, p := range n.parts {
				if p.ID != n.keys[i] {
					return fmt.Errorf("%w: leaf key %q does not match part %q", ErrCorrupt, n.keys[i], p.ID)
				}
			}
			if depth < 0 {
				depth = d
			} else if depth != d {
				return fmt.Errorf("%w: leaves at depth %d and %d", ErrCorrupt, depth, d)
			}
			leaves = append(leaves, n)
		case *internalNode:
			keys = n.keys
			if len(n.children) != len(n.keys)+1 {
				return fmt.Errorf("%w: internal node has %d keys but %d children", ErrCorrupt, len(n.keys), len(n.children))
			}
		}
		if len(keys) > t.maxKeys {
			return fmt.Errorf("%w: node holds %d keys, bound is %d", ErrCorrupt, len(keys), t.maxKeys)
		}
		for i, k := range keys {
			if i > 0 && strings.Compare(keys[i-1], k) > 0 {
				return fmt.Errorf("%w: keys %q and %q out of order", ErrCorrupt, keys[i-1], k)
			}
			if low != nil && k < *low {
				return fmt.Errorf("%w: key %q below separator %q", ErrCorrupt, k, *low)
			}
			if high != nil && k > *high {
				return fmt.Errorf("%w: key %q above separator %q", ErrCorrupt, k, *high)
			}
		}
		if in, ok := n.(*internalNode); ok {
			for i, child := range in.children {
				lo, hi := low, high
				if i > 0 {
					lo = &in.keys[i-1]
				}
				if i < len(in.keys) {
					hi = &in.keys[i]
				}
				if err := visit(child, lo, hi, d+1); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := visit(t.root, nil, nil, 0); err != nil {
		return err
	}

	for i, leaf := range leaves {
		var want *leafNode
		if i+1 < len(leaves) {
			want = leaves[i+1]
		}
		if leaf.next != want {
			return fmt.Errorf("%w: leaf chain broken after leaf %d", ErrCorrupt, i)
		}
	}
	count := 0
	for _, leaf := range leaves {
		count += len(leaf.keys)
	}
	if count != t.size {
		return fmt.Errorf("%w: leaves hold %d parts, size is %d", ErrCorrupt, count, t.size)
	}
	return nil
}
