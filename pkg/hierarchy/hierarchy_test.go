package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeatlas/codeatlas/pkg/model"
	"github.com/codeatlas/codeatlas/pkg/resolver"
)

func resolve(t *testing.T, structure resolver.Structure) *model.Graph {
	t.Helper()
	g, err := resolver.New(nil).Resolve(structure)
	require.NoError(t, err)
	return g
}

func childNames(n *TreeNode) []string {
	var names []string
	for _, c := range n.Children {
		names = append(names, c.Name)
	}
	return names
}

func findChild(n *TreeNode, name string) *TreeNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestModuleTreeNestedPaths(t *testing.T) {
	g := resolve(t, resolver.Structure{
		"src/app.py":        {},
		"src/utils/io.py":   {},
		"src/utils/text.py": {},
	})

	tree := BuildModuleTree(g)
	require.NotNil(t, tree.Root)
	assert.Equal(t, "src", tree.Root.Name)
	assert.Equal(t, model.KindModule, tree.Root.Kind)

	utils := findChild(tree.Root, "utils")
	require.NotNil(t, utils)
	assert.ElementsMatch(t, []string{"io.py", "text.py"}, childNames(utils))
	require.NotNil(t, findChild(tree.Root, "app.py"))
}

func TestModuleTreeRootLevelFilesUnderSyntheticRoot(t *testing.T) {
	g := resolve(t, resolver.Structure{
		"a.py": {},
		"b.py": {},
	})

	tree := BuildModuleTree(g)
	require.NotNil(t, tree.Root)
	assert.Equal(t, RootModuleName, tree.Root.Name)
	assert.ElementsMatch(t, []string{"a.py", "b.py"}, childNames(tree.Root))
}

func TestModuleTreeMultipleTopsWrappedUnderVirtualRoot(t *testing.T) {
	g := resolve(t, resolver.Structure{
		"src/app.py":    {},
		"tests/test.py": {},
	})

	tree := BuildModuleTree(g)
	require.NotNil(t, tree.Root)
	assert.Equal(t, model.KindVirtual, tree.Root.Kind)
	assert.ElementsMatch(t, []string{"src", "tests"}, childNames(tree.Root))
}

func TestModuleTreeIdempotent(t *testing.T) {
	structure := resolver.Structure{
		"src/a.py":     {},
		"src/sub/b.py": {},
		"c.py":         {},
	}
	first := BuildModuleTree(resolve(t, structure))
	second := BuildModuleTree(resolve(t, structure))

	var describe func(n *TreeNode) string
	describe = func(n *TreeNode) string {
		out := n.Name + "("
		for _, c := range n.Children {
			out += describe(c) + ","
		}
		return out + ")"
	}
	assert.Equal(t, describe(first.Root), describe(second.Root))
}

func TestModuleTreeEmptyGraph(t *testing.T) {
	tree := BuildModuleTree(model.NewGraph())
	assert.Nil(t, tree.Root)
	assert.Equal(t, 0, tree.Size())
}

func TestClassTreeBaseBecomesParent(t *testing.T) {
	g := resolve(t, resolver.Structure{
		"animals.py": {Classes: map[string]resolver.ClassInfo{
			"Animal": {},
		}},
		"pets.py": {Classes: map[string]resolver.ClassInfo{
			"Dog": {Bases: []string{"Animal"}},
		}},
	})

	tree := BuildClassTree(g, nil)
	require.NotNil(t, tree.Root)
	assert.Equal(t, "Animal", tree.Root.Name)
	assert.Equal(t, []string{"Dog"}, childNames(tree.Root))
}

func TestClassTreeUnresolvedBaseMakesRoot(t *testing.T) {
	g := resolve(t, resolver.Structure{
		"pets.py": {Classes: map[string]resolver.ClassInfo{
			"Dog": {Bases: []string{"Animal"}},
		}},
	})

	tree := BuildClassTree(g, nil)
	require.NotNil(t, tree.Root)
	assert.Equal(t, "Dog", tree.Root.Name)
	assert.Empty(t, tree.Root.Children)
}

func TestClassTreeMultipleRootsWrapped(t *testing.T) {
	g := resolve(t, resolver.Structure{
		"a.py": {Classes: map[string]resolver.ClassInfo{
			"Alpha": {},
			"Beta":  {},
		}},
	})

	tree := BuildClassTree(g, nil)
	require.NotNil(t, tree.Root)
	assert.Equal(t, model.KindVirtual, tree.Root.Kind)
	assert.ElementsMatch(t, []string{"Alpha", "Beta"}, childNames(tree.Root))
}

func TestClassTreeCycleDropped(t *testing.T) {
	g := resolve(t, resolver.Structure{
		"a.py": {Classes: map[string]resolver.ClassInfo{
			"A": {Bases: []string{"B"}},
			"B": {Bases: []string{"A"}},
		}},
	})

	tree := BuildClassTree(g, nil)
	require.NotNil(t, tree.Root)

	// One attachment survives, the cycle-closing one is dropped; traversal
	// must terminate within the class count.
	visited := 0
	tree.Walk(func(n *TreeNode, depth int) {
		visited++
		require.LessOrEqual(t, visited, 3)
	})
	assert.Equal(t, 2, tree.Size())
	assert.LessOrEqual(t, tree.Depth(), 2)
}

func TestClassTreeSelfInheritanceIgnored(t *testing.T) {
	g := resolve(t, resolver.Structure{
		"a.py": {Classes: map[string]resolver.ClassInfo{
			"Ouroboros": {Bases: []string{"Ouroboros"}},
		}},
	})

	tree := BuildClassTree(g, nil)
	require.NotNil(t, tree.Root)
	assert.Equal(t, "Ouroboros", tree.Root.Name)
	assert.Empty(t, tree.Root.Children)
}
