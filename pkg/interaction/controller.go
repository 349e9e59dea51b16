// Package interaction owns the canonical exploration state for one active
// view: hover and selection, highlight-set computation, focus-mode dimming,
// and the pan/zoom transform. Renderers are expected to be a pure function
// of the graph, the layout positions, and the Snapshot this package emits,
// which keeps the whole pipeline testable without a display.
package interaction

import (
	"github.com/codeatlas/codeatlas/pkg/logging"
	"github.com/codeatlas/codeatlas/pkg/model"
)

// State names the interaction state machine's states.
type State string

const (
	StateIdle     State = "idle"
	StateHovering State = "hovering"
	StateSelected State = "selected"
)

// Dim opacities applied in focus mode to everything outside the highlight
// set. Outside focus mode highlight is signalled by stroke changes only and
// opacity stays at 1.
const (
	FocusNodeOpacity = 0.2
	FocusEdgeOpacity = 0.1
)

// Snapshot is the render-ready interaction state, recomputed after every
// transition. Sets are materialized as maps so renderers get O(1) membership
// checks.
type Snapshot struct {
	State               State               `json:"state"`
	SelectedID          string              `json:"selectedId,omitempty"`
	HoveredID           string              `json:"hoveredId,omitempty"`
	HighlightedNodeIDs  map[string]struct{} `json:"highlightedNodeIds"`
	HighlightedEdgeKeys map[string]struct{} `json:"highlightedEdgeKeys"`
	FocusMode           bool                `json:"focusMode"`
	Transform           Transform           `json:"transform"`
}

// Controller is the interaction state machine for a single view. It is not
// safe for concurrent use; callers serialize access (the session layer does
// this under its own lock).
type Controller struct {
	graph *model.Graph
	log   logging.Logger

	state     State
	selected  string
	hovered   string
	focusMode bool
	transform Transform

	highlightNodes map[string]struct{}
	highlightEdges map[string]struct{}
}

// NewController creates an idle controller over the given graph with an
// identity transform. A nil logger disables logging.
func NewController(g *model.Graph, log logging.Logger) *Controller {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &Controller{
		graph: g,
		log:   log.With(logging.Component("interaction")),
	}
	c.reset()
	return c
}

// Reset returns the controller to idle with an identity transform. Called
// when the active view changes or the graph is reloaded.
func (c *Controller) Reset() {
	c.reset()
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.selected = ""
	c.hovered = ""
	c.focusMode = false
	c.transform = IdentityTransform()
	c.recompute()
}

// PointerEnter records a hover over node id. While a selection is active the
// hover is tracked but the highlight set stays anchored on the selected
// node. Unknown ids are ignored.
func (c *Controller) PointerEnter(id string) {
	if _, ok := c.graph.Node(id); !ok {
		c.log.Debug("hover on unknown node ignored", logging.NodeID(id))
		return
	}
	c.hovered = id
	if c.state == StateIdle || c.state == StateHovering {
		c.state = StateHovering
	}
	c.recompute()
}

// PointerLeave clears the hover. The selection, if any, is unaffected.
func (c *Controller) PointerLeave() {
	c.hovered = ""
	if c.state == StateHovering {
		c.state = StateIdle
	}
	c.recompute()
}

// Click selects node id. Clicking the background (empty id) or the node
// that is already selected clears the selection back to idle.
func (c *Controller) Click(id string) {
	if id == "" || id == c.selected {
		c.selected = ""
		c.state = StateIdle
		if c.hovered != "" {
			c.state = StateHovering
		}
		c.recompute()
		return
	}
	if _, ok := c.graph.Node(id); !ok {
		c.log.Debug("click on unknown node ignored", logging.NodeID(id))
		return
	}
	c.selected = id
	c.state = StateSelected
	c.recompute()
}

// SetFocusMode toggles focus-mode dimming. Focus mode is orthogonal to the
// state machine and survives hover and selection changes.
func (c *Controller) SetFocusMode(on bool) {
	c.focusMode = on
}

// FocusMode reports whether focus-mode dimming is active.
func (c *Controller) FocusMode() bool {
	return c.focusMode
}

// Pan translates the view transform.
func (c *Controller) Pan(dx, dy float64) {
	c.transform = c.transform.Pan(dx, dy)
}

// Zoom rescales the view transform about the screen point (cx, cy).
func (c *Controller) Zoom(factor, cx, cy float64) {
	c.transform = c.transform.Zoom(factor, cx, cy)
}

// Transform returns the current pan/zoom transform.
func (c *Controller) Transform() Transform {
	return c.transform
}

// State returns the current state machine state.
func (c *Controller) State() State {
	return c.state
}

// anchor is the node the highlight set is computed from: the selection when
// one is active, otherwise the hovered node.
func (c *Controller) anchor() string {
	if c.selected != "" {
		return c.selected
	}
	return c.hovered
}

// recompute rebuilds the highlight sets from the current anchor. The
// highlight is the one-hop neighborhood, not full reachability.
func (c *Controller) recompute() {
	c.highlightNodes = make(map[string]struct{})
	c.highlightEdges = make(map[string]struct{})

	id := c.anchor()
	if id == "" {
		return
	}
	c.highlightNodes[id] = struct{}{}
	for _, n := range c.graph.Neighbors(id, model.DirectionBoth) {
		c.highlightNodes[n] = struct{}{}
	}
	for _, e := range c.graph.IncidentEdges(id) {
		c.highlightEdges[e.Key()] = struct{}{}
	}
}

// NodeOpacity returns the opacity a renderer should draw node id with.
func (c *Controller) NodeOpacity(id string) float64 {
	if !c.focusMode || len(c.highlightNodes) == 0 {
		return 1
	}
	if _, ok := c.highlightNodes[id]; ok {
		return 1
	}
	return FocusNodeOpacity
}

// EdgeOpacity returns the opacity a renderer should draw the given edge with.
func (c *Controller) EdgeOpacity(e model.Edge) float64 {
	if !c.focusMode || len(c.highlightNodes) == 0 {
		return 1
	}
	if _, ok := c.highlightEdges[e.Key()]; ok {
		return 1
	}
	return FocusEdgeOpacity
}

// Highlighted reports whether node id is in the current highlight set.
func (c *Controller) Highlighted(id string) bool {
	_, ok := c.highlightNodes[id]
	return ok
}

// Snapshot returns a copy of the render-ready state. The returned sets are
// copies; mutating them does not affect the controller.
func (c *Controller) Snapshot() Snapshot {
	nodes := make(map[string]struct{}, len(c.highlightNodes))
	for id := range c.highlightNodes {
		nodes[id] = struct{}{}
	}
	edges := make(map[string]struct{}, len(c.highlightEdges))
	for k := range c.highlightEdges {
		edges[k] = struct{}{}
	}
	return Snapshot{
		State:               c.state,
		SelectedID:          c.selected,
		HoveredID:           c.hovered,
		HighlightedNodeIDs:  nodes,
		HighlightedEdgeKeys: edges,
		FocusMode:           c.focusMode,
		Transform:           c.transform,
	}
}
