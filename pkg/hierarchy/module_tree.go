package hierarchy

import (
	"strings"

	"github.com/codeatlas/codeatlas/pkg/model"
)

// RootModuleName is the synthetic module that collects files sitting at the
// top of the analyzed tree, outside any directory.
const RootModuleName = "root"

// BuildModuleTree derives the directory hierarchy view: one module node per
// unique path prefix, with file nodes as leaves of their immediate parent.
// Building twice from the same graph yields isomorphic trees, since file
// nodes are visited in their stable insertion order.
func BuildModuleTree(g *model.Graph) *Tree {
	modules := make(map[string]*TreeNode)
	var tops []*TreeNode

	ensure := func(prefix, name string, parent *TreeNode) *TreeNode {
		if m, ok := modules[prefix]; ok {
			return m
		}
		m := &TreeNode{
			ID:   "module:" + prefix,
			Name: name,
			Kind: model.KindModule,
			Path: prefix,
		}
		modules[prefix] = m
		if parent == nil {
			tops = append(tops, m)
		} else {
			parent.Children = append(parent.Children, m)
		}
		return m
	}

	for _, file := range g.NodesByKind(model.KindFile) {
		segments := splitPath(file.Path)
		var dirs []string
		if len(segments) > 0 {
			dirs = segments[:len(segments)-1]
		}

		var parent *TreeNode
		if len(dirs) == 0 {
			parent = ensure(RootModuleName, RootModuleName, nil)
		} else {
			prefix := ""
			for _, seg := range dirs {
				if prefix == "" {
					prefix = seg
				} else {
					prefix = prefix + "/" + seg
				}
				parent = ensure(prefix, seg, parent)
			}
		}

		parent.Children = append(parent.Children, &TreeNode{
			ID:   file.ID,
			Name: file.Name,
			Kind: model.KindFile,
			Path: file.Path,
		})
	}

	return wrap(tops)
}

// splitPath splits on both separators so records produced on Windows still
// form a sensible hierarchy.
func splitPath(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}
