package layout

import (
	"context"
	"math"
	"testing"

	"github.com/codeatlas/codeatlas/pkg/hierarchy"
	"github.com/codeatlas/codeatlas/pkg/model"
	"github.com/codeatlas/codeatlas/pkg/resolver"
)

func buildGraph(t *testing.T, structure resolver.Structure) *model.Graph {
	t.Helper()
	g, err := resolver.New(nil).Resolve(structure)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	return g
}

func distance(a, b Position) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func findID(g *model.Graph, name string) string {
	for _, n := range g.Nodes() {
		if n.Name == name {
			return n.ID
		}
	}
	return ""
}

func TestForceLayoutPositionsWithinBounds(t *testing.T) {
	g := buildGraph(t, resolver.Structure{
		"a.py": {Functions: map[string]resolver.FunctionInfo{
			"foo": {Calls: []string{"bar"}},
			"baz": {},
		}},
		"b.py": {Functions: map[string]resolver.FunctionInfo{
			"bar": {},
		}},
	})

	cfg := Config{Width: 800, Height: 600, Seed: 42}
	sim := NewForceSimulation(g, cfg, nil)
	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	positions := sim.NormalizedPositions()
	if len(positions) != g.NodeCount() {
		t.Errorf("expected %d positions, got %d", g.NodeCount(), len(positions))
	}
	for id, pos := range positions {
		if pos.X < 0 || pos.X > 800 {
			t.Errorf("node %s X position %f out of bounds", id, pos.X)
		}
		if pos.Y < 0 || pos.Y > 600 {
			t.Errorf("node %s Y position %f out of bounds", id, pos.Y)
		}
	}
}

func TestForceLayoutSeparatesUnconnectedNodes(t *testing.T) {
	// foo calls bar; baz is only connected through its file.
	g := model.NewGraph()
	for _, id := range []string{"a", "b", "c"} {
		if err := g.AddNode(&model.Node{ID: id, Kind: model.KindFunction, Name: id}); err != nil {
			t.Fatalf("add node: %v", err)
		}
	}
	if err := g.AddEdge(model.Edge{Source: "a", Target: "b", Relation: model.RelationCalls}); err != nil {
		t.Fatalf("add edge: %v", err)
	}
	if err := g.AddEdge(model.Edge{Source: "b", Target: "c", Relation: model.RelationCalls}); err != nil {
		t.Fatalf("add edge: %v", err)
	}

	sim := NewForceSimulation(g, Config{Width: 800, Height: 600, Seed: 7}, nil)
	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	positions := sim.Positions()
	distAB := distance(positions["a"], positions["b"])
	distBC := distance(positions["b"], positions["c"])
	distAC := distance(positions["a"], positions["c"])
	if distAC < distAB || distAC < distBC {
		t.Error("unconnected endpoints ended up closer than connected ones")
	}
}

func TestForceLayoutDeterministicWithSeed(t *testing.T) {
	structure := resolver.Structure{
		"a.py": {Functions: map[string]resolver.FunctionInfo{
			"foo": {Calls: []string{"bar", "baz"}},
			"bar": {},
			"baz": {},
		}},
	}
	cfg := Config{Width: 640, Height: 480, Seed: 1234}

	first := NewForceSimulation(buildGraph(t, structure), cfg, nil)
	second := NewForceSimulation(buildGraph(t, structure), cfg, nil)
	if err := first.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if err := second.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	p1 := first.Positions()
	p2 := second.Positions()
	for id, pos := range p1 {
		other := p2[id]
		if pos.X != other.X || pos.Y != other.Y {
			t.Errorf("node %s diverged: (%f,%f) vs (%f,%f)", id, pos.X, pos.Y, other.X, other.Y)
		}
	}
}

func TestForceLayoutTruncatesAtStepCap(t *testing.T) {
	g := buildGraph(t, resolver.Structure{
		"a.py": {Functions: map[string]resolver.FunctionInfo{"f1": {}, "f2": {}, "f3": {}}},
	})

	sim := NewForceSimulation(g, Config{Width: 400, Height: 400, MaxSteps: 3, Seed: 9}, nil)
	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if sim.Steps() > 3 {
		t.Errorf("expected at most 3 steps, ran %d", sim.Steps())
	}
	// Truncation is not an error; positions must still be produced.
	if len(sim.Positions()) != g.NodeCount() {
		t.Error("truncated simulation lost positions")
	}
}

func TestForceLayoutCancellation(t *testing.T) {
	g := buildGraph(t, resolver.Structure{
		"a.py": {Functions: map[string]resolver.FunctionInfo{"f1": {}, "f2": {}}},
	})
	sim := NewForceSimulation(g, Config{Seed: 3}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sim.Run(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPinnedNodeHoldsPosition(t *testing.T) {
	g := buildGraph(t, resolver.Structure{
		"a.py": {Functions: map[string]resolver.FunctionInfo{
			"foo": {Calls: []string{"bar"}},
			"bar": {},
		}},
	})
	id := findID(g, "foo")
	if id == "" {
		t.Fatal("foo not found")
	}

	sim := NewForceSimulation(g, Config{Seed: 5}, nil)
	sim.Pin(id, 321, 123)
	for i := 0; i < 10; i++ {
		sim.Step()
	}

	pos := sim.Positions()[id]
	if pos.X != 321 || pos.Y != 123 {
		t.Errorf("pinned node moved to (%f,%f)", pos.X, pos.Y)
	}

	// After release the neighborhood resettles and the node moves again.
	sim.Release(id)
	if sim.Converged() {
		t.Error("release must reheat the simulation")
	}
	for i := 0; i < 20; i++ {
		sim.Step()
	}
	released := sim.Positions()[id]
	if released.X == 321 && released.Y == 123 {
		t.Error("released node never rejoined the simulation")
	}
}

func TestForceLayoutSingleAndEmptyGraphs(t *testing.T) {
	empty := NewForceSimulation(model.NewGraph(), Config{}, nil)
	if err := empty.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(empty.Positions()) != 0 {
		t.Error("empty graph produced positions")
	}

	g := model.NewGraph()
	if err := g.AddNode(&model.Node{ID: "solo", Kind: model.KindFile, Name: "solo.py"}); err != nil {
		t.Fatalf("add node: %v", err)
	}
	single := NewForceSimulation(g, Config{Width: 100, Height: 100}, nil)
	if err := single.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(single.Positions()) != 1 {
		t.Error("single node graph must produce one position")
	}
}

func TestTreeLayoutSiblingsDoNotOverlap(t *testing.T) {
	g := buildGraph(t, resolver.Structure{
		"src/a.py":     {},
		"src/b.py":     {},
		"src/sub/c.py": {},
		"src/sub/d.py": {},
	})
	tree := hierarchy.BuildModuleTree(g)

	positions := NewTreeLayout().Compute(tree, Horizontal)
	if len(positions) != tree.Size() {
		t.Fatalf("expected %d positions, got %d", tree.Size(), len(positions))
	}

	// No two nodes may share coordinates.
	type point struct{ x, y float64 }
	seen := make(map[point]string)
	for id, pos := range positions {
		p := point{pos.X, pos.Y}
		if other, dup := seen[p]; dup {
			t.Errorf("nodes %s and %s overlap at (%f,%f)", id, other, pos.X, pos.Y)
		}
		seen[p] = id
	}
}

func TestTreeLayoutOrientation(t *testing.T) {
	g := buildGraph(t, resolver.Structure{
		"pkg/a.py": {},
		"pkg/b.py": {},
	})
	tree := hierarchy.BuildModuleTree(g)
	tl := NewTreeLayout()

	horizontal := tl.Compute(tree, Horizontal)
	vertical := tl.Compute(tree, Vertical)

	rootH := horizontal[tree.Root.ID]
	rootV := vertical[tree.Root.ID]
	if rootH.X != 0 {
		t.Errorf("horizontal root main axis should be 0, got %f", rootH.X)
	}
	if rootV.Y != 0 {
		t.Errorf("vertical root main axis should be 0, got %f", rootV.Y)
	}

	for _, child := range tree.Root.Children {
		if horizontal[child.ID].X != tl.LevelSpacing {
			t.Errorf("child depth spacing wrong: %f", horizontal[child.ID].X)
		}
	}
}

func TestTreeLayoutLevelSpacingFixed(t *testing.T) {
	g := buildGraph(t, resolver.Structure{
		"a/b/c/deep.py": {},
	})
	tree := hierarchy.BuildModuleTree(g)
	tl := NewTreeLayout()
	positions := tl.Compute(tree, Vertical)

	depths := make(map[string]int)
	tree.Walk(func(n *hierarchy.TreeNode, depth int) { depths[n.ID] = depth })
	for id, depth := range depths {
		want := float64(depth) * tl.LevelSpacing
		if positions[id].Y != want {
			t.Errorf("node %s at depth %d: Y=%f, want %f", id, depth, positions[id].Y, want)
		}
	}
}

func TestTreeLayoutEmptyTree(t *testing.T) {
	positions := NewTreeLayout().Compute(&hierarchy.Tree{}, Horizontal)
	if len(positions) != 0 {
		t.Error("empty tree produced positions")
	}
}
