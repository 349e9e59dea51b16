package hierarchy

import "github.com/codeatlas/codeatlas/pkg/model"

// TreeNode is one node of a derived hierarchy view. Leaves reference graph
// nodes by id; module and virtual nodes are synthesized during tree
// construction and exist only in the tree.
type TreeNode struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Kind     model.Kind  `json:"kind"`
	Path     string      `json:"path,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// Tree is a rooted hierarchy derived from a graph. Root is nil when the
// graph contains no nodes of the relevant kind. Trees are acyclic by
// construction: the module tree comes from path-prefix segmentation and the
// class tree rejects cycle-closing insertions.
type Tree struct {
	Root *TreeNode `json:"root"`
}

// VirtualRootID is the id of the synthetic root inserted when a derivation
// produces multiple disjoint roots.
const VirtualRootID = "virtual-root"

// wrap returns a single root for the given top-level nodes, inserting a
// virtual root only when there is more than one.
func wrap(tops []*TreeNode) *Tree {
	switch len(tops) {
	case 0:
		return &Tree{}
	case 1:
		return &Tree{Root: tops[0]}
	default:
		return &Tree{Root: &TreeNode{
			ID:       VirtualRootID,
			Name:     "root",
			Kind:     model.KindVirtual,
			Children: tops,
		}}
	}
}

// Walk visits every node depth-first, parents before children.
func (t *Tree) Walk(fn func(node *TreeNode, depth int)) {
	if t.Root == nil {
		return
	}
	var visit func(n *TreeNode, depth int)
	visit = func(n *TreeNode, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	visit(t.Root, 0)
}

// Size returns the total node count, including synthesized nodes.
func (t *Tree) Size() int {
	count := 0
	t.Walk(func(*TreeNode, int) { count++ })
	return count
}

// Depth returns the number of levels; an empty tree has depth 0.
func (t *Tree) Depth() int {
	max := 0
	t.Walk(func(_ *TreeNode, depth int) {
		if depth+1 > max {
			max = depth + 1
		}
	})
	return max
}
