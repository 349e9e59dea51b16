// Package session ties one resolved graph to its derived views, layouts,
// and interaction state. A session owns exactly one simulation loop at a
// time: switching views stops the in-flight loop before the next one may
// start, and all mutation goes through the session mutex so drag updates
// are applied between simulation steps, never during one.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/codeatlas/codeatlas/pkg/hierarchy"
	"github.com/codeatlas/codeatlas/pkg/interaction"
	"github.com/codeatlas/codeatlas/pkg/layout"
	"github.com/codeatlas/codeatlas/pkg/logging"
	"github.com/codeatlas/codeatlas/pkg/model"
)

// View names one of the derived graph views.
type View string

const (
	ViewFlow    View = "flow"
	ViewModules View = "modules"
	ViewClasses View = "classes"
)

// ParseView validates a view name from an external caller.
func ParseView(s string) (View, error) {
	switch View(s) {
	case ViewFlow, ViewModules, ViewClasses:
		return View(s), nil
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// DefaultTick is the simulation step interval used by interactive hosts.
const DefaultTick = 33 * time.Millisecond

// Session is the per-graph exploration state. All methods are safe for
// concurrent use.
type Session struct {
	mu  sync.Mutex
	log logging.Logger
	cfg layout.Config

	graph      *model.Graph
	moduleTree *hierarchy.Tree
	classTree  *hierarchy.Tree

	view       View
	sim        *layout.ForceSimulation
	treeLayout map[string]layout.Position
	controller *interaction.Controller

	loopCancel context.CancelFunc
	loopDone   chan struct{}
	loopCtx    context.Context
	loopTick   time.Duration
}

// LayoutStats describes the active layout's progress. Tree views are
// analytic, so they report zero steps and converged.
type LayoutStats struct {
	Steps     int
	Converged bool
}

// New creates a session over the resolved graph, starting in the flow view.
// Hierarchy trees are derived once; they depend only on the graph.
func New(g *model.Graph, cfg layout.Config, log logging.Logger) *Session {
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.With(logging.Component("session"))
	s := &Session{
		log:        log,
		cfg:        cfg,
		graph:      g,
		moduleTree: hierarchy.BuildModuleTree(g),
		classTree:  hierarchy.BuildClassTree(g, log),
		controller: interaction.NewController(g, log),
	}
	s.activateLocked(ViewFlow)
	return s
}

// Graph returns the underlying resolved graph.
func (s *Session) Graph() *model.Graph {
	return s.graph
}

// View returns the active view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetView switches the active view. Any running simulation loop is stopped
// first, interaction state and the transform reset to their initial values,
// and the new view's layout is prepared. Switching to the already-active
// view is a no-op.
func (s *Session) SetView(v View) error {
	if _, err := ParseView(string(v)); err != nil {
		return err
	}

	s.mu.Lock()
	if v == s.view {
		s.mu.Unlock()
		return nil
	}
	rearm := s.loopCancel != nil
	ctx, tick := s.loopCtx, s.loopTick
	s.mu.Unlock()

	s.stopLoop()

	s.mu.Lock()
	s.activateLocked(v)
	s.mu.Unlock()
	s.log.Info("view switched", logging.View(string(v)))

	// An interactive host keeps its stepping loop across view switches; the
	// replacement loop starts only after the old one has fully exited.
	if rearm {
		s.StartInteractive(ctx, tick)
	}
	return nil
}

func (s *Session) activateLocked(v View) {
	s.view = v
	s.controller.Reset()
	s.sim = nil
	s.treeLayout = nil

	switch v {
	case ViewFlow:
		s.sim = layout.NewForceSimulation(s.graph, s.cfg, s.log)
	case ViewModules:
		s.treeLayout = layout.NewTreeLayout().Compute(s.moduleTree, layout.Horizontal)
	case ViewClasses:
		s.treeLayout = layout.NewTreeLayout().Compute(s.classTree, layout.Vertical)
	}
}

// Tree returns the hierarchy backing the active view, or nil for the flow
// view.
func (s *Session) Tree() *hierarchy.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.view {
	case ViewModules:
		return s.moduleTree
	case ViewClasses:
		return s.classTree
	}
	return nil
}

// Settle runs the flow simulation to convergence synchronously. Hosts call
// it for the first paint before handing stepping over to StartInteractive.
// In tree views layout is analytic and Settle returns immediately. The
// session mutex is held throughout, so a running interactive loop simply
// pauses instead of racing the run.
func (s *Session) Settle(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim == nil {
		return nil
	}

	start := time.Now()
	if err := s.sim.Run(ctx); err != nil {
		return err
	}
	s.log.Info("layout settled",
		logging.Int("steps", s.sim.Steps()),
		logging.Latency(time.Since(start)))
	return nil
}

// LayoutStats reports the step count and convergence of the active view's
// layout, for instrumentation.
func (s *Session) LayoutStats() LayoutStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim == nil {
		return LayoutStats{Converged: true}
	}
	return LayoutStats{Steps: s.sim.Steps(), Converged: s.sim.Converged()}
}

// StartInteractive runs the cooperative stepping loop: one simulation step
// per tick, yielding between steps so the host stays responsive. The loop
// exits when ctx is cancelled or the session stops it on a view switch.
// Converged simulations idle until a drag reheats them. Starting a second
// loop stops the first.
func (s *Session) StartInteractive(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = DefaultTick
	}
	s.stopLoop()

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.mu.Lock()
	s.loopCancel = cancel
	s.loopDone = done
	s.loopCtx = parent
	s.loopTick = tick
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.stepOnce()
			}
		}
	}()
}

func (s *Session) stepOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim == nil || s.sim.Converged() {
		return
	}
	s.sim.Step()
}

// Stop halts the interactive loop, if one is running, and waits for it.
func (s *Session) Stop() {
	s.stopLoop()
}

func (s *Session) stopLoop() {
	s.mu.Lock()
	cancel := s.loopCancel
	done := s.loopDone
	s.loopCancel = nil
	s.loopDone = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Positions returns render coordinates for the active view, normalized to
// the configured canvas in the flow view.
func (s *Session) Positions() map[string]layout.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim != nil {
		return s.sim.NormalizedPositions()
	}
	out := make(map[string]layout.Position, len(s.treeLayout))
	for id, p := range s.treeLayout {
		out[id] = p
	}
	return out
}

// Drag pins node id at the given position. Pins apply between steps, so a
// concurrent loop never observes a half-written position. Drags are ignored
// outside the flow view.
func (s *Session) Drag(id string, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim != nil {
		s.sim.Pin(id, x, y)
	}
}

// EndDrag releases a pinned node and lets the simulation resettle.
func (s *Session) EndDrag(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim != nil {
		s.sim.Release(id)
	}
}

// PointerEnter forwards a hover to the interaction controller.
func (s *Session) PointerEnter(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.PointerEnter(id)
}

// PointerLeave forwards a hover end to the interaction controller.
func (s *Session) PointerLeave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.PointerLeave()
}

// Click forwards a click to the interaction controller. An empty id is a
// background click.
func (s *Session) Click(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.Click(id)
}

// SetFocusMode toggles focus-mode dimming.
func (s *Session) SetFocusMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.SetFocusMode(on)
}

// Pan translates the view transform.
func (s *Session) Pan(dx, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.Pan(dx, dy)
}

// Zoom rescales the view transform about the screen point (cx, cy).
func (s *Session) Zoom(factor, cx, cy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.Zoom(factor, cx, cy)
}

// Snapshot returns the current render-ready interaction state.
func (s *Session) Snapshot() interaction.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.Snapshot()
}
