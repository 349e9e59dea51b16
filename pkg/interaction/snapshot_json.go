package interaction

import (
	"encoding/json"
	"sort"
)

// snapshotJSON is the wire shape of a Snapshot: the membership sets become
// sorted arrays so payloads are deterministic and renderer-friendly.
type snapshotJSON struct {
	State               State     `json:"state"`
	SelectedID          string    `json:"selectedId,omitempty"`
	HoveredID           string    `json:"hoveredId,omitempty"`
	HighlightedNodeIDs  []string  `json:"highlightedNodeIds"`
	HighlightedEdgeKeys []string  `json:"highlightedEdgeKeys"`
	FocusMode           bool      `json:"focusMode"`
	Transform           Transform `json:"transform"`
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON implements json.Marshaler.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{
		State:               s.State,
		SelectedID:          s.SelectedID,
		HoveredID:           s.HoveredID,
		HighlightedNodeIDs:  sortedKeys(s.HighlightedNodeIDs),
		HighlightedEdgeKeys: sortedKeys(s.HighlightedEdgeKeys),
		FocusMode:           s.FocusMode,
		Transform:           s.Transform,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var wire snapshotJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	s.State = wire.State
	s.SelectedID = wire.SelectedID
	s.HoveredID = wire.HoveredID
	s.HighlightedNodeIDs = make(map[string]struct{}, len(wire.HighlightedNodeIDs))
	for _, id := range wire.HighlightedNodeIDs {
		s.HighlightedNodeIDs[id] = struct{}{}
	}
	s.HighlightedEdgeKeys = make(map[string]struct{}, len(wire.HighlightedEdgeKeys))
	for _, k := range wire.HighlightedEdgeKeys {
		s.HighlightedEdgeKeys[k] = struct{}{}
	}
	s.FocusMode = wire.FocusMode
	s.Transform = wire.Transform
	return nil
}
