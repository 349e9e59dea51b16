package model

import "fmt"

// Relation classifies a directed edge between two nodes.
type Relation string

const (
	RelationContains Relation = "contains"
	RelationCalls    Relation = "calls"
	RelationInherits Relation = "inherits"
	RelationImports  Relation = "imports"
)

// Valid reports whether r is one of the known edge relations.
func (r Relation) Valid() bool {
	switch r {
	case RelationContains, RelationCalls, RelationInherits, RelationImports:
		return true
	}
	return false
}

// Edge is a directed, typed connection between two nodes. Multiple edges
// between the same ordered pair are permitted as long as their relations
// differ; an exact (source, target, relation) duplicate is idempotent.
type Edge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Relation Relation `json:"relation"`
}

// Key returns the canonical identity of the edge, used for deduplication
// and for addressing edges in highlight sets.
func (e Edge) Key() string {
	return fmt.Sprintf("%s->%s:%s", e.Source, e.Target, e.Relation)
}
