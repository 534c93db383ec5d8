package depsgraph

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNodeName is returned by [Builder.Build] when a node was
	// registered with an empty name.
	ErrInvalidNodeName = errors.New("node name must not be empty")

	// ErrDuplicateNode is returned by [Builder.Build] when two nodes share a name.
	ErrDuplicateNode = errors.New("duplicate node name")

	// ErrUnknownNode is returned when a NodeID does not belong to the graph,
	// either while declaring edges or when calling graph operations.
	ErrUnknownNode = errors.New("unknown node")

	// ErrSelfLoop is returned by [Builder.Build] for an edge from a node to itself.
	ErrSelfLoop = errors.New("node cannot depend on itself")

	// ErrDuplicateEdge is returned by [Builder.Build] when the same dependency
	// is declared twice for a node.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrConflictingTracking is returned by [Builder.Build] when a node declares
	// both a ready flag and an exists predicate.
	ErrConflictingTracking = errors.New("node declares both a ready flag and an exists predicate")

	// ErrNilResource is returned by [Builder.Build] when [Builder.Resource] was
	// called with a nil resource.
	ErrNilResource = errors.New("resource must not be nil")

	// ErrGraphHasCycle is returned by [Builder.Build] when the dependency
	// relation contains a cycle. Cycles are detected using depth-first search
	// with white/gray/black coloring; the error message names the cycle.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Op names the lifecycle operation that failed.
type Op string

const (
	OpCreate  Op = "create"
	OpDestroy Op = "destroy"
)

// LifecycleError reports a failed create or destroy callback.
//
// The graph is left partially updated when this error is returned: see the
// package documentation.
type LifecycleError struct {
	Op   Op     // Operation that failed
	Node string // Name of the node whose callback failed
	Err  error  // Error returned by the callback
}

// Error implements the error interface.
func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Node, e.Err)
}

// Unwrap returns the callback's error for errors.Is/As compatibility.
func (e *LifecycleError) Unwrap() error { return e.Err }
