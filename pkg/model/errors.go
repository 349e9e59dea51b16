package model

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNodeNotFound      = errors.New("node not found")
	ErrDuplicateNode     = errors.New("duplicate node id")
	ErrInvalidKind       = errors.New("invalid node kind")
	ErrInvalidRelation   = errors.New("invalid edge relation")
	ErrDanglingReference = errors.New("dangling edge reference")
)

// GraphError provides structured error information for graph construction.
type GraphError struct {
	Op       string   // Operation that failed (e.g. "AddNode", "AddEdge")
	NodeID   string   // Node id involved (if applicable)
	Source   string   // Edge source (for edge operations)
	Target   string   // Edge target (for edge operations)
	Relation Relation // Edge relation (for edge operations)
	Cause    error    // Underlying error
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.Source != "" || e.Target != "" {
		return fmt.Sprintf("%s %s->%s (%s): %v", e.Op, e.Source, e.Target, e.Relation, e.Cause)
	}
	if e.NodeID != "" {
		return fmt.Sprintf("%s node %q: %v", e.Op, e.NodeID, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *GraphError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *GraphError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// DanglingReferenceError creates the error returned when an edge references
// a node absent from the model. The resolver creates every node before it
// links edges, so seeing this error means a resolver bug.
func DanglingReferenceError(op string, e Edge) error {
	return &GraphError{
		Op:       op,
		Source:   e.Source,
		Target:   e.Target,
		Relation: e.Relation,
		Cause:    ErrDanglingReference,
	}
}

// IsDangling returns true if the error is a dangling reference error.
func IsDangling(err error) bool {
	return errors.Is(err, ErrDanglingReference)
}
