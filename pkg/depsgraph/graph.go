package depsgraph

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// NodeID identifies a node by its position in the graph's node arena.
// IDs are issued by a [Builder] and are only meaningful for the graph that
// builder produces.
type NodeID int

// Edge is the relation "Dependee requires Dependency to exist first".
type Edge struct {
	Dependee   NodeID
	Dependency NodeID
}

// slot is one entry of the node arena. Adjacency lists hold indices into the
// same arena, so nodes can be copied freely.
type slot[C any] struct {
	name         string
	res          Resource[C]
	bind         binding[C]
	dependencies []NodeID // declaration order
	dependees    []NodeID // declaration order
}

// Graph is an immutable dependency graph over resources owned by C.
//
// The zero value is not usable: build graphs with [NewBuilder].
type Graph[C any] struct {
	slots  []slot[C]
	byName map[string]NodeID
	edges  []Edge
	logger *log.Logger
}

// Len returns the number of nodes.
func (g *Graph[C]) Len() int { return len(g.slots) }

// Nodes returns all node IDs in registration order.
func (g *Graph[C]) Nodes() []NodeID {
	ids := make([]NodeID, len(g.slots))
	for i := range g.slots {
		ids[i] = NodeID(i)
	}
	return ids
}

// Edges returns a copy of the edges in declaration order.
func (g *Graph[C]) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Lookup returns the ID of the node with the given name.
func (g *Graph[C]) Lookup(name string) (NodeID, bool) {
	id, ok := g.byName[name]
	return id, ok
}

// Name returns the node's name, or an empty string for an unknown ID.
func (g *Graph[C]) Name(id NodeID) string {
	if !g.has(id) {
		return ""
	}
	return g.slots[id].name
}

// Tracking reports how the node tracks existence.
func (g *Graph[C]) Tracking(id NodeID) Tracking {
	if !g.has(id) {
		return TrackNone
	}
	return g.slots[id].bind.tracking
}

// Dependencies returns the direct dependencies of id in declaration order.
func (g *Graph[C]) Dependencies(id NodeID) []NodeID {
	if !g.has(id) {
		return nil
	}
	return append([]NodeID(nil), g.slots[id].dependencies...)
}

// Dependees returns the nodes that directly depend on id, in declaration order.
func (g *Graph[C]) Dependees(id NodeID) []NodeID {
	if !g.has(id) {
		return nil
	}
	return append([]NodeID(nil), g.slots[id].dependees...)
}

// Names maps IDs to node names.
func (g *Graph[C]) Names(ids []NodeID) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = g.Name(id)
	}
	return names
}

func (g *Graph[C]) has(id NodeID) bool { return valid(id, len(g.slots)) }

func (g *Graph[C]) check(id NodeID) error {
	if !g.has(id) {
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	return nil
}
