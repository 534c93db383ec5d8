// Package manifest loads dependency graphs declared in TOML files.
//
// A manifest lists nodes and the nodes they depend on. It describes the shape
// of a graph without real resources: [Manifest.Build] binds every node to a
// [session.Session], which records each create and destroy call and keeps the
// node's existence state. This makes manifests useful for exploring how
// EnsureExists and Rebuild behave on a given graph.
//
// # Format
//
//	name = "texture"
//	description = "Texture loading demo"
//
//	[[node]]
//	name = "path"
//
//	[[node]]
//	name = "data"
//	depends_on = ["path"]
//	tracking = "exists"     # flag (default), exists or none
//
//	[[node]]
//	name = "fake"
//	depends_on = ["data"]
//	fail_create = "should never be created"
//
// The order of depends_on entries is the order EnsureExists visits them.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/lazydeps/pkg/depsgraph"
	apperr "github.com/matzehuels/lazydeps/pkg/errors"
	"github.com/matzehuels/lazydeps/pkg/session"
)

// Graph is a dependency graph built from a manifest.
type Graph = depsgraph.Graph[*session.Session]

// Tracking modes accepted in manifests.
const (
	TrackingFlag   = "flag"
	TrackingExists = "exists"
	TrackingNone   = "none"
)

// Manifest is the decoded form of a manifest file.
type Manifest struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Nodes       []Node `toml:"node"`
}

// Node is one [[node]] table.
type Node struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Tracking    string   `toml:"tracking"`
	DependsOn   []string `toml:"depends_on"`

	// FailCreate and FailDestroy, when set, make the node's create or destroy
	// operation fail with that message.
	FailCreate  string `toml:"fail_create"`
	FailDestroy string `toml:"fail_destroy"`
}

// TrackingMode maps the node's tracking string to the engine's mode.
// An empty string means flag tracking.
func (n Node) TrackingMode() depsgraph.Tracking {
	switch n.Tracking {
	case TrackingExists:
		return depsgraph.TrackExists
	case TrackingNone:
		return depsgraph.TrackNone
	default:
		return depsgraph.TrackReadyFlag
	}
}

// ParseFile reads and parses a manifest file.
func ParseFile(path string) (*Manifest, error) {
	if err := apperr.ValidateManifestFilename(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "manifest not found: %s", path)
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse parses manifest content from bytes and validates it.
// Unknown keys are rejected so that typos like "depends-on" do not silently
// drop edges.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "parsing TOML")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, apperr.New(apperr.ErrCodeInvalidManifest, "unknown key %q", undecoded[0].String())
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks node names, tracking modes and depends_on references.
// Cycles are left to [Manifest.Build], which reports the cycle path.
func (m *Manifest) Validate() error {
	if len(m.Nodes) == 0 {
		return apperr.New(apperr.ErrCodeInvalidManifest, "manifest declares no nodes")
	}

	seen := make(map[string]bool, len(m.Nodes))
	for i, n := range m.Nodes {
		if err := apperr.ValidateNodeName(n.Name); err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidManifest, err, "node #%d", i+1)
		}
		if seen[n.Name] {
			return apperr.New(apperr.ErrCodeInvalidManifest, "duplicate node: %s", n.Name)
		}
		seen[n.Name] = true
		if err := apperr.ValidateTracking(n.Tracking); err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidManifest, err, "node %s", n.Name)
		}
	}

	for _, n := range m.Nodes {
		deps := make(map[string]bool, len(n.DependsOn))
		for _, dep := range n.DependsOn {
			switch {
			case !seen[dep]:
				return apperr.New(apperr.ErrCodeInvalidManifest, "node %s depends_on unknown node: %s", n.Name, dep)
			case dep == n.Name:
				return apperr.New(apperr.ErrCodeInvalidManifest, "node %s depends on itself", n.Name)
			case deps[dep]:
				return apperr.New(apperr.ErrCodeInvalidManifest, "node %s lists %s twice in depends_on", n.Name, dep)
			}
			deps[dep] = true
		}
	}
	return nil
}

// Node returns the node declaration with the given name.
func (m *Manifest) Node(name string) (Node, bool) {
	for _, n := range m.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return Node{}, false
}

// Build turns the manifest into a graph whose resources act on a session.
// Nodes are registered in manifest order and edges in depends_on order.
func (m *Manifest) Build(opts ...depsgraph.Option) (*Graph, error) {
	b := depsgraph.NewBuilder[*session.Session]()
	ids := make(map[string]depsgraph.NodeID, len(m.Nodes))
	for _, n := range m.Nodes {
		ids[n.Name] = b.Node(n.Name, nodeOptions(n)...)
	}
	for _, n := range m.Nodes {
		for _, dep := range n.DependsOn {
			b.DependsOn(ids[n.Name], ids[dep])
		}
	}
	g, err := b.Build(opts...)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidGraph, err, "manifest %s", m.Name)
	}
	return g, nil
}

func nodeOptions(n Node) []depsgraph.NodeOption[*session.Session] {
	name := n.Name
	mode := n.TrackingMode()

	opts := []depsgraph.NodeOption[*session.Session]{
		depsgraph.OnCreate(func(s *session.Session) error {
			err := failure(n.FailCreate)
			s.Record(session.OpCreate, name, err)
			if err == nil && mode == depsgraph.TrackExists {
				s.SetPresent(name, true)
			}
			return err
		}),
		depsgraph.OnDestroy(func(s *session.Session) error {
			err := failure(n.FailDestroy)
			s.Record(session.OpDestroy, name, err)
			if err == nil && mode == depsgraph.TrackExists {
				s.SetPresent(name, false)
			}
			return err
		}),
	}

	switch mode {
	case depsgraph.TrackReadyFlag:
		opts = append(opts, depsgraph.WithReadyFlag(func(s *session.Session) *bool { return s.Flag(name) }))
	case depsgraph.TrackExists:
		opts = append(opts, depsgraph.WithExists(func(s *session.Session) bool { return s.Present(name) }))
	}
	return opts
}

func failure(msg string) error {
	if msg == "" {
		return nil
	}
	return errors.New(msg)
}
