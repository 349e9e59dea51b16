package layout

import "github.com/codeatlas/codeatlas/pkg/hierarchy"

// Orientation selects the main axis of a tree layout. The module view reads
// left to right, the class view top to bottom; either way sibling subtrees
// never overlap.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// Tree layout spacing constants.
const (
	DefaultLevelSpacing   = 140.0
	DefaultSiblingSpacing = 60.0
)

// TreeLayout maps a hierarchy tree to coordinates with two passes: leaves
// claim consecutive slots on the cross axis in depth-first order, then each
// internal node centers on the span of its children. Fixed per-level
// spacing on the main axis, O(n) overall.
type TreeLayout struct {
	LevelSpacing   float64
	SiblingSpacing float64
}

// NewTreeLayout creates a tree layout with default spacing.
func NewTreeLayout() *TreeLayout {
	return &TreeLayout{
		LevelSpacing:   DefaultLevelSpacing,
		SiblingSpacing: DefaultSiblingSpacing,
	}
}

// Compute lays out the tree. The result contains every tree node id,
// including synthesized module and virtual-root nodes.
func (tl *TreeLayout) Compute(tree *hierarchy.Tree, orient Orientation) map[string]Position {
	positions := make(map[string]Position)
	if tree == nil || tree.Root == nil {
		return positions
	}

	nextSlot := 0.0
	var place func(n *hierarchy.TreeNode, depth int) float64
	place = func(n *hierarchy.TreeNode, depth int) float64 {
		main := float64(depth) * tl.LevelSpacing

		var cross float64
		if len(n.Children) == 0 {
			cross = nextSlot
			nextSlot += tl.SiblingSpacing
		} else {
			first := place(n.Children[0], depth+1)
			last := first
			for _, c := range n.Children[1:] {
				last = place(c, depth+1)
			}
			cross = (first + last) / 2
		}

		if orient == Horizontal {
			positions[n.ID] = Position{X: main, Y: cross}
		} else {
			positions[n.ID] = Position{X: cross, Y: main}
		}
		return cross
	}
	place(tree.Root, 0)

	return positions
}
