package btree

import (
	"fmt"
	"io"
	"iter"
	"strings"
)

/*
Create a new root node.
The existing root becomes the only child of the new root and is split right
away, so the new root ends up with one key and two children.
*/
func (t *Tree) splitRoot() {
	newRoot := &internalNode{children: []node{t.root}}
	newRoot.splitChild(0)
	t.root = newRoot
}

/*
Insert adds p at its sorted position. An existing part with the same ID is
kept; the new one goes right after it.
Splits happen on the way down: a full root is split before the descent
starts and a full child is split before we step into it, so no node ever
has to split after its parent was left behind.
*/
func (t *Tree) Insert(p Part) {
	if t.root.keyCount() >= t.maxKeys {
		t.splitRoot()
	}

	cur := t.root
	for {
		n, ok := cur.(*internalNode)
		if !ok {
			break
		}
		pos := upperBound(n.keys, p.ID)
		if n.children[pos].keyCount() >= t.maxKeys && n.splitChild(pos) {
			// the promoted key decides which half we continue in
			if strings.Compare(n.keys[pos], p.ID) <= 0 {
				pos++
			}
		}
		cur = n.children[pos]
	}

	leaf := cur.(*leafNode)
	leaf.insertAt(upperBound(leaf.keys, p.ID), p)
	t.size++
}

// Search returns the first part stored under id, in key order.
func (t *Tree) Search(id string) (Part, bool) {
	leaf, pos := t.first(id)
	if leaf == nil {
		return Part{}, false
	}
	return leaf.parts[pos], true
}

/*
Delete removes the first part stored under id and reports whether one was found.
Nodes are never merged or dropped: a leaf may become empty and its
separator keeps routing to it.
*/
func (t *Tree) Delete(id string) bool {
	leaf, pos := t.first(id)
	if leaf == nil {
		return false
	}
	leaf.removeAt(pos)
	t.size--
	return true
}

/*
first locates the leftmost entry equal to id.
A leaf split copies the sibling's first key up while equal keys may stay
behind in the left leaf, so the descent takes the lower bound and then
follows the chain until it passes id.
*/
func (t *Tree) first(id string) (*leafNode, int) {
	for leaf := t.findLeaf(id); leaf != nil; leaf = leaf.next {
		for i, k := range leaf.keys {
			switch {
			case k == id:
				return leaf, i
			case k > id:
				return nil, -1
			}
		}
	}
	return nil, -1
}

// walk down to the leftmost leaf that may hold key
func (t *Tree) findLeaf(key string) *leafNode {
	cur := t.root
	for {
		switch n := cur.(type) {
		case *leafNode:
			return n
		case *internalNode:
			cur = n.children[lowerBound(n.keys, key)]
		default:
			panic(fmt.Sprintf("btree: unexpected node type %T", cur))
		}
	}
}

func (t *Tree) leftmostLeaf() *leafNode {
	cur := t.root
	for {
		n, ok := cur.(*internalNode)
		if !ok {
			return cur.(*leafNode)
		}
		cur = n.children[0]
	}
}

// All yields every part in key order by following the leaf chain.
func (t *Tree) All() iter.Seq[Part] {
	return func(yield func(Part) bool) {
		for leaf := t.leftmostLeaf(); leaf != nil; leaf = leaf.next {
			for _, p := range leaf.parts {
				if !yield(p) {
					return
				}
			}
		}
	}
}

// Parts returns every part in key order.
func (t *Tree) Parts() []Part {
	parts := make([]Part, 0, t.size)
	for p := range t.All() {
		parts = append(parts, p)
	}
	return parts
}

/*
Range returns the parts with from <= ID < to in key order. An empty to means
no upper bound.
The descent uses the lower bound so that it lands at or before the first
entry equal to from, even when equal IDs straddle a leaf boundary.
*/
func (t *Tree) Range(from, to string) []Part {
	var parts []Part
	for leaf := t.findLeaf(from); leaf != nil; leaf = leaf.next {
		for _, p := range leaf.parts {
			if p.ID < from {
				continue
			}
			if to != "" && p.ID >= to {
				return parts
			}
			parts = append(parts, p)
		}
	}
	return parts
}

// Display writes one "ID: Description" line per part in key order.
func (t *Tree) Display(w io.Writer) error {
	for p := range t.All() {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	return nil
}
