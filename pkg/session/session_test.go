package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeatlas/codeatlas/pkg/interaction"
	"github.com/codeatlas/codeatlas/pkg/layout"
	"github.com/codeatlas/codeatlas/pkg/resolver"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	structure := resolver.Structure{
		"src/a.py": {
			Functions: map[string]resolver.FunctionInfo{
				"foo": {Calls: []string{"bar"}},
			},
			Classes: map[string]resolver.ClassInfo{
				"Animal": {},
			},
		},
		"src/b.py": {
			Functions: map[string]resolver.FunctionInfo{
				"bar": {},
			},
			Classes: map[string]resolver.ClassInfo{
				"Dog": {Bases: []string{"Animal"}},
			},
		},
	}
	g, err := resolver.New(nil).Resolve(structure)
	require.NoError(t, err)
	return New(g, layout.Config{Width: 400, Height: 300, Seed: 1}, nil)
}

func TestNewSessionStartsInFlowView(t *testing.T) {
	s := newTestSession(t)

	assert.Equal(t, ViewFlow, s.View())
	assert.Nil(t, s.Tree())
	require.NoError(t, s.Settle(context.Background()))
	assert.Len(t, s.Positions(), s.Graph().NodeCount())
}

func TestParseView(t *testing.T) {
	for _, name := range []string{"flow", "modules", "classes"} {
		v, err := ParseView(name)
		require.NoError(t, err)
		assert.Equal(t, View(name), v)
	}
	_, err := ParseView("atlas")
	assert.Error(t, err)
}

func TestSetViewResetsInteractionState(t *testing.T) {
	s := newTestSession(t)

	s.Click(s.Graph().Nodes()[0].ID)
	s.SetFocusMode(true)
	s.Pan(10, 10)
	require.Equal(t, interaction.StateSelected, s.Snapshot().State)

	require.NoError(t, s.SetView(ViewModules))

	snap := s.Snapshot()
	assert.Equal(t, interaction.StateIdle, snap.State)
	assert.False(t, snap.FocusMode)
	assert.Equal(t, interaction.IdentityTransform(), snap.Transform)
}

func TestTreeViewsHaveAnalyticLayout(t *testing.T) {
	s := newTestSession(t)

	require.NoError(t, s.SetView(ViewModules))
	tree := s.Tree()
	require.NotNil(t, tree)
	assert.Len(t, s.Positions(), tree.Size())

	require.NoError(t, s.SetView(ViewClasses))
	classes := s.Tree()
	require.NotNil(t, classes)
	// Animal parents Dog.
	require.NotNil(t, classes.Root)
	assert.Equal(t, "Animal", classes.Root.Name)
	require.Len(t, classes.Root.Children, 1)
	assert.Equal(t, "Dog", classes.Root.Children[0].Name)
}

func TestSetViewRejectsUnknownView(t *testing.T) {
	s := newTestSession(t)
	assert.Error(t, s.SetView(View("bogus")))
	assert.Equal(t, ViewFlow, s.View())
}

func TestDragPinsAndReleaseResettles(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Settle(context.Background()))
	id := s.Graph().Nodes()[0].ID

	s.StartInteractive(context.Background(), time.Millisecond)
	defer s.Stop()

	s.Drag(id, 50, 60)
	time.Sleep(20 * time.Millisecond)
	s.EndDrag(id)
	time.Sleep(20 * time.Millisecond)

	// The session must survive concurrent stepping and drag traffic; the
	// positions map always covers every node.
	assert.Len(t, s.Positions(), s.Graph().NodeCount())
}

func TestDragIgnoredInTreeViews(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.SetView(ViewModules))

	before := s.Positions()
	s.Drag(s.Graph().Nodes()[0].ID, 999, 999)
	assert.Equal(t, before, s.Positions())
}

func TestViewSwitchKeepsInteractiveLoopAlive(t *testing.T) {
	s := newTestSession(t)
	s.StartInteractive(context.Background(), time.Millisecond)
	defer s.Stop()

	require.NoError(t, s.SetView(ViewClasses))
	require.NoError(t, s.SetView(ViewFlow))

	// The replacement loop keeps stepping the fresh flow simulation.
	deadline := time.Now().Add(time.Second)
	for s.LayoutStats().Steps == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Greater(t, s.LayoutStats().Steps, 0)
}

func TestViewSwitchWithoutLoopStaysIdle(t *testing.T) {
	s := newTestSession(t)

	require.NoError(t, s.SetView(ViewClasses))

	// No loop was ever started; Stop on an idle session is a no-op.
	s.Stop()
	assert.Equal(t, ViewClasses, s.View())
	assert.Equal(t, LayoutStats{Converged: true}, s.LayoutStats())
}

func TestLayoutStatsReflectSettledSimulation(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Settle(context.Background()))

	stats := s.LayoutStats()
	assert.Greater(t, stats.Steps, 0)
	// Settle runs until convergence or the cap, never past it.
	if !stats.Converged {
		assert.Equal(t, layout.DefaultMaxSteps, stats.Steps)
	}
}

func TestStartInteractiveReplacesPreviousLoop(t *testing.T) {
	s := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.StartInteractive(ctx, time.Millisecond)
	s.StartInteractive(ctx, time.Millisecond)
	s.Stop()
}
