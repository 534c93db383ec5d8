// Package pkg provides the libraries behind lazydeps.
//
// # Overview
//
// lazydeps models resources as nodes of a dependency graph. A resource is
// created on demand together with everything it needs, and when one resource
// changes, everything built on top of it is torn down and rebuilt in order.
// The pkg directory is organized into these areas:
//
//  1. [depsgraph] - The engine (graph, ensure, rebuild, traversals)
//  2. [manifest] and [session] - Declarative graphs and their simulated state
//  3. [graph] - JSON views of graphs, closures and rebuild plans
//  4. [render/nodelink] - Graphviz diagrams
//  5. [server] - HTTP introspection over one graph and session
//  6. [cache], [errors], [observability], [buildinfo] - Infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	TOML manifest
//	     ↓
//	[manifest] package (parse, validate, build)
//	     ↓
//	[depsgraph] Graph[*session.Session]
//	     ↓
//	EnsureExists / Rebuild → [session] trace
//	     ↓
//	[graph] view → CLI, HTTP, DOT/SVG
//
// # Quick Start
//
// Bind real resources to a graph with a typed owner:
//
//	b := depsgraph.NewBuilder[*App]()
//	path := b.Node("path", depsgraph.OnCreate(loadPath), depsgraph.WithReadyFlag(pathReady))
//	data := b.Node("data", depsgraph.OnCreate(readData), depsgraph.OnDestroy(dropData),
//	    depsgraph.WithReadyFlag(dataReady))
//	b.DependsOn(data, path)
//	g, err := b.Build()
//
//	err = g.EnsureExists(app, data) // creates path, then data
//	err = g.Rebuild(app, path)      // destroys data and path, recreates both
//
// Or simulate a declared graph:
//
//	m, err := manifest.ParseFile("examples/texture.toml")
//	g, err := m.Build()
//	events, err := manifest.Ensure(g, session.New(), "textureview")
//
// # Concurrency
//
// A graph and its owner are used by one goroutine at a time. The engine has
// no internal synchronization; the HTTP server serializes requests with a
// mutex.
package pkg
