// Package export renders sessions into the JSON shapes the UI consumes:
// a node/link list with coordinates for the flow view, a nested tree for
// the hierarchy views, and the interaction snapshot.
package export

import (
	"encoding/json"

	"github.com/codeatlas/codeatlas/pkg/hierarchy"
	"github.com/codeatlas/codeatlas/pkg/interaction"
	"github.com/codeatlas/codeatlas/pkg/layout"
	"github.com/codeatlas/codeatlas/pkg/model"
	"github.com/codeatlas/codeatlas/pkg/session"
)

// NodeView is one positioned node in the flow view payload.
type NodeView struct {
	ID     string     `json:"id"`
	Kind   model.Kind `json:"kind"`
	Name   string     `json:"name"`
	Path   string     `json:"path,omitempty"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Radius float64    `json:"radius"`
}

// LinkView is one edge in the flow view payload.
type LinkView struct {
	Source   string         `json:"source"`
	Target   string         `json:"target"`
	Relation model.Relation `json:"relation"`
}

// FlowView is the flow view render contract.
type FlowView struct {
	Nodes []NodeView `json:"nodes"`
	Links []LinkView `json:"links"`
}

// TreeView is the module and class view render contract.
type TreeView struct {
	Root *hierarchy.TreeNode `json:"root"`
}

// Flow assembles the flow view from a graph and its layout positions.
// Nodes keep graph insertion order so output is deterministic.
func Flow(g *model.Graph, positions map[string]layout.Position) FlowView {
	view := FlowView{
		Nodes: make([]NodeView, 0, g.NodeCount()),
		Links: make([]LinkView, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		pos := positions[n.ID]
		view.Nodes = append(view.Nodes, NodeView{
			ID:     n.ID,
			Kind:   n.Kind,
			Name:   n.Name,
			Path:   n.Path,
			X:      pos.X,
			Y:      pos.Y,
			Radius: layout.Radius(n.Kind),
		})
	}
	for _, e := range g.Edges() {
		view.Links = append(view.Links, LinkView{
			Source:   e.Source,
			Target:   e.Target,
			Relation: e.Relation,
		})
	}
	return view
}

// Tree wraps a hierarchy for the render contract. An empty hierarchy
// serializes as {"root": null}.
func Tree(t *hierarchy.Tree) TreeView {
	if t == nil {
		return TreeView{}
	}
	return TreeView{Root: t.Root}
}

// SessionState is the complete render payload for a session's active view.
// Exactly one of Flow and Tree is populated.
type SessionState struct {
	View        session.View               `json:"view"`
	Flow        *FlowView                  `json:"flow,omitempty"`
	Tree        *TreeView                  `json:"tree,omitempty"`
	Interaction interaction.Snapshot       `json:"interaction"`
	Positions   map[string]layout.Position `json:"positions,omitempty"`
}

// Session captures the active view of a session. Tree views carry their
// analytic positions alongside the tree so renderers need no second pass.
func Session(s *session.Session) SessionState {
	state := SessionState{
		View:        s.View(),
		Interaction: s.Snapshot(),
	}
	switch state.View {
	case session.ViewFlow:
		flow := Flow(s.Graph(), s.Positions())
		state.Flow = &flow
	default:
		tree := Tree(s.Tree())
		state.Tree = &tree
		state.Positions = s.Positions()
	}
	return state
}

// MarshalSession renders the session state as JSON.
func MarshalSession(s *session.Session) ([]byte, error) {
	return json.Marshal(Session(s))
}
