package graph

import (
	"slices"

	"github.com/matzehuels/lazydeps/pkg/depsgraph"
	apperr "github.com/matzehuels/lazydeps/pkg/errors"
	"github.com/matzehuels/lazydeps/pkg/manifest"
)

// =============================================================================
// Graph - Node-Link View
// =============================================================================

// Graph is the JSON view of a dependency graph.
//
// Nodes keep registration order and edges keep declaration order, so a graph
// written and read back visits dependencies in the same order.
type Graph struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Nodes       []Node `json:"nodes"`
	Edges       []Edge `json:"edges"`
}

// Node is one node of the view.
type Node struct {
	ID          string `json:"id"`
	Tracking    string `json:"tracking"`
	Description string `json:"description,omitempty"`
	Exists      *bool  `json:"exists,omitempty"` // set by DescribeState only
	FailCreate  string `json:"fail_create,omitempty"`
	FailDestroy string `json:"fail_destroy,omitempty"`
}

// Edge points from a dependee to the dependency it needs.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Node returns the node with the given ID.
func (g Graph) Node(id string) (Node, bool) {
	i := slices.IndexFunc(g.Nodes, func(n Node) bool { return n.ID == id })
	if i < 0 {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Describe returns the view of g without any state.
func Describe[C any](g *depsgraph.Graph[C]) Graph {
	out := Graph{
		Nodes: make([]Node, 0, g.Len()),
		Edges: make([]Edge, 0, len(g.Edges())),
	}
	for _, id := range g.Nodes() {
		out.Nodes = append(out.Nodes, Node{
			ID:       g.Name(id),
			Tracking: g.Tracking(id).String(),
		})
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{From: g.Name(e.Dependee), To: g.Name(e.Dependency)})
	}
	return out
}

// DescribeState returns the view of g with the existence of every tracked
// node as seen by owner. Untracked nodes carry no state.
func DescribeState[C any](g *depsgraph.Graph[C], owner C) Graph {
	out := Describe(g)
	for i, id := range g.Nodes() {
		if g.Tracking(id) == depsgraph.TrackNone {
			continue
		}
		exists := g.Exists(owner, id)
		out.Nodes[i].Exists = &exists
	}
	return out
}

// Annotate copies the manifest's name, description and per-node details into
// the view.
func (g *Graph) Annotate(m *manifest.Manifest) {
	g.Name = m.Name
	g.Description = m.Description
	for i := range g.Nodes {
		n, ok := m.Node(g.Nodes[i].ID)
		if !ok {
			continue
		}
		g.Nodes[i].Description = n.Description
		g.Nodes[i].FailCreate = n.FailCreate
		g.Nodes[i].FailDestroy = n.FailDestroy
	}
}

// ToManifest converts a view back into a validated manifest. Edge order
// becomes depends_on order.
func ToManifest(g Graph) (*manifest.Manifest, error) {
	m := &manifest.Manifest{Name: g.Name, Description: g.Description}
	index := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		tracking := n.Tracking
		if tracking == depsgraph.TrackReadyFlag.String() {
			tracking = ""
		}
		index[n.ID] = len(m.Nodes)
		m.Nodes = append(m.Nodes, manifest.Node{
			Name:        n.ID,
			Description: n.Description,
			Tracking:    tracking,
			FailCreate:  n.FailCreate,
			FailDestroy: n.FailDestroy,
		})
	}
	for _, e := range g.Edges {
		i, ok := index[e.From]
		if !ok {
			return nil, apperr.New(apperr.ErrCodeInvalidGraph, "edge from unknown node: %s", e.From)
		}
		m.Nodes[i].DependsOn = append(m.Nodes[i].DependsOn, e.To)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// =============================================================================
// Closure - Transitive Relations of One Node
// =============================================================================

// Closure lists the direct and transitive relations of one node.
type Closure struct {
	Node            string   `json:"node"`
	Tracking        string   `json:"tracking"`
	Dependencies    []string `json:"dependencies"`     // direct, declaration order
	Dependees       []string `json:"dependees"`        // direct, declaration order
	AllDependencies []string `json:"all_dependencies"` // creation order
	AllDependees    []string `json:"all_dependees"`    // rebuild creation order
}

// DescribeNode returns the closure of id.
func DescribeNode[C any](g *depsgraph.Graph[C], id depsgraph.NodeID) Closure {
	return Closure{
		Node:            g.Name(id),
		Tracking:        g.Tracking(id).String(),
		Dependencies:    names(g, g.Dependencies(id)),
		Dependees:       names(g, g.Dependees(id)),
		AllDependencies: names(g, g.AllDependencies(id)),
		AllDependees:    names(g, g.AllDependees(id)),
	}
}

// names is g.Names with an empty, non-nil result so JSON shows [] not null.
func names[C any](g *depsgraph.Graph[C], ids []depsgraph.NodeID) []string {
	if len(ids) == 0 {
		return []string{}
	}
	return g.Names(ids)
}
