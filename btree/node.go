package btree

import "strings"

// node is either a *leafNode or an *internalNode.
type node interface {
	keyCount() int
	// split moves the upper half into a new right sibling and returns the
	// key the parent should route on together with that sibling.
	split() (string, node)
}

type leafNode struct {
	keys  []string
	parts []Part    // parts[i] belongs to keys[i]
	next  *leafNode // next leaf in key order, nil for the last one
}

type internalNode struct {
	keys     []string
	children []node // len(children) == len(keys)+1
}

func (l *leafNode) keyCount() int     { return len(l.keys) }
func (n *internalNode) keyCount() int { return len(n.keys) }

/*
Index of the first key strictly greater than key.
Insert routes with it: a new key equal to a separator goes to the child on
the right of it, after the entries already stored under that key.
*/
func upperBound(keys []string, key string) int {
	low, high := 0, len(keys)
	for low < high {
		mid := (low + high) / 2
		if strings.Compare(key, keys[mid]) >= 0 {
			low = mid + 1
		} else {
			high = mid
		}
	}
	return low
}

// Index of the first key greater than or equal to key.
func lowerBound(keys []string, key string) int {
	low, high := 0, len(keys)
	for low < high {
		mid := (low + high) / 2
		if strings.Compare(key, keys[mid]) > 0 {
			low = mid + 1
		} else {
			high = mid
		}
	}
	return low
}

// helper method to insert a part at an arbitrary position of a leaf
func (l *leafNode) insertAt(pos int, p Part) {
	l.keys = append(l.keys, "")
	copy(l.keys[pos+1:], l.keys[pos:])
	l.keys[pos] = p.ID

	l.parts = append(l.parts, Part{})
	copy(l.parts[pos+1:], l.parts[pos:])
	l.parts[pos] = p
}

func (l *leafNode) removeAt(pos int) {
	last := len(l.keys) - 1
	copy(l.keys[pos:], l.keys[pos+1:])
	copy(l.parts[pos:], l.parts[pos+1:])
	l.parts[last] = Part{}
	l.keys = l.keys[:last]
	l.parts = l.parts[:last]
}

/*
Leaf split: the left node keeps [0, mid], the new sibling gets [mid+1, end)
and is linked in right after the left node. The sibling's first key is
copied up; it stays in the leaf as well.
*/
func (l *leafNode) split() (string, node) {
	mid := len(l.keys) / 2
	right := &leafNode{
		keys:  append([]string(nil), l.keys[mid+1:]...),
		parts: append([]Part(nil), l.parts[mid+1:]...),
		next:  l.next,
	}
	clear(l.parts[mid+1:])
	l.keys = l.keys[:mid+1]
	l.parts = l.parts[:mid+1]
	l.next = right
	return right.keys[0], right
}

/*
Internal split: the left node keeps keys [0, mid) and children [0, mid],
the sibling gets keys [mid+1, end) and children [mid+1, end).
keys[mid] moves up to the parent and is not kept in either half.
*/
func (n *internalNode) split() (string, node) {
	mid := len(n.keys) / 2
	promoted := n.keys[mid]
	right := &internalNode{
		keys:     append([]string(nil), n.keys[mid+1:]...),
		children: append([]node(nil), n.children[mid+1:]...),
	}
	clear(n.children[mid+1:])
	n.keys = n.keys[:mid]
	n.children = n.children[:mid+1]
	return promoted, right
}

// helper method to insert a routing key at pos and a child pointer at pos+1
func (n *internalNode) insertAt(pos int, key string, child node) {
	n.keys = append(n.keys, "")
	copy(n.keys[pos+1:], n.keys[pos:])
	n.keys[pos] = key

	n.children = append(n.children, nil)
	copy(n.children[pos+2:], n.children[pos+1:])
	n.children[pos+1] = child
}

/*
splitChild splits children[i] and links the new sibling into n.
A child with fewer than two keys cannot be split and is left as is;
the return value reports whether a split happened.
*/
func (n *internalNode) splitChild(i int) bool {
	child := n.children[i]
	if child.keyCount() < 2 {
		return false
	}
	key, sibling := child.split()
	n.insertAt(i, key, sibling)
	return true
}
