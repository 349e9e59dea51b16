package hierarchy

import (
	"github.com/codeatlas/codeatlas/pkg/logging"
	"github.com/codeatlas/codeatlas/pkg/model"
)

// BuildClassTree derives the inheritance view. Each class attaches under the
// first of its bases that names a known class; a class whose bases all
// resolve to nothing (external or absent) becomes a root. An attachment that
// would close a cycle is dropped and logged, so traversal always terminates
// within the class count.
func BuildClassTree(g *model.Graph, log logging.Logger) *Tree {
	if log == nil {
		log = logging.NewNopLogger()
	}

	classes := g.NodesByKind(model.KindClass)
	byName := make(map[string][]*model.Node)
	for _, c := range classes {
		byName[c.Name] = append(byName[c.Name], c)
	}

	parentOf := make(map[string]string)
	wouldCycle := func(childID, parentID string) bool {
		for id := parentID; id != ""; id = parentOf[id] {
			if id == childID {
				return true
			}
		}
		return false
	}

	for _, c := range classes {
		for _, baseName := range c.Bases {
			matches := byName[baseName]
			if len(matches) == 0 {
				continue
			}
			// Same-name classes in several files: attach under the first
			// definition in creation order.
			base := matches[0]
			if base.ID == c.ID {
				continue
			}
			if wouldCycle(c.ID, base.ID) {
				log.Warn("inheritance cycle dropped",
					logging.Component("hierarchy"),
					logging.String("class", c.Name),
					logging.String("base", baseName),
				)
				continue
			}
			parentOf[c.ID] = base.ID
			break
		}
	}

	treeNodes := make(map[string]*TreeNode, len(classes))
	for _, c := range classes {
		treeNodes[c.ID] = &TreeNode{
			ID:   c.ID,
			Name: c.Name,
			Kind: model.KindClass,
			Path: c.Path,
		}
	}

	var tops []*TreeNode
	for _, c := range classes {
		if parentID, ok := parentOf[c.ID]; ok {
			parent := treeNodes[parentID]
			parent.Children = append(parent.Children, treeNodes[c.ID])
		} else {
			tops = append(tops, treeNodes[c.ID])
		}
	}

	return wrap(tops)
}
