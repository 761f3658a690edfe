package btree

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	internalColor = color.New(color.FgCyan, color.Bold).SprintFunc()
	leafColor     = color.New(color.FgGreen).SprintFunc()
	levelColor    = color.New(color.FgHiBlack).SprintFunc()
)

/*
Visualizer renders the tree level by level, root first.
Internal nodes print their routing keys, leaves print their part IDs, and
nodes on the same level are separated by " | ".
*/
type Visualizer struct {
	Tree *Tree
}

func (v *Visualizer) Visualize() string {
	var sb strings.Builder
	level := []node{v.Tree.root}
	for depth := 0; len(level) > 0; depth++ {
		var next []node
		cells := make([]string, 0, len(level))
		for _, n := range level {
			switch n := n.(type) {
			case *internalNode:
				cells = append(cells, internalColor("["+strings.Join(n.keys, " ")+"]"))
				next = append(next, n.children...)
			case *leafNode:
				cells = append(cells, leafColor("("+strings.Join(n.keys, " ")+")"))
			}
		}
		fmt.Fprintf(&sb, "%s %s\n", levelColor(fmt.Sprintf("L%d", depth)), strings.Join(cells, " | "))
		level = next
	}
	return sb.String()
}
