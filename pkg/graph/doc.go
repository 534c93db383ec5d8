// Package graph provides the JSON view of dependency graphs.
//
// The CLI and the HTTP server describe graphs, their live state and rebuild
// plans with the types of this package, so both surfaces produce the same
// output.
//
// # Core Types
//
//   - [Graph]: Node-link view of a depsgraph.Graph
//   - [Node], [Edge]: Structural types
//   - [Closure]: Transitive dependencies and dependees of one node
//   - [Plan]: What a rebuild of one node would touch
//
// # Graph Serialization
//
// Graphs use a simple node-link JSON format. Edges point from a dependee to
// the dependency it needs:
//
//	{
//	  "nodes": [{"id": "path", "tracking": "flag"}, {"id": "data", "tracking": "flag"}],
//	  "edges": [{"from": "data", "to": "path"}]
//	}
//
// Common operations:
//
//	view := graph.Describe(g)                    // depsgraph → view
//	view := graph.DescribeState(g, sess)         // with "exists" per node
//	graph.WriteGraphFile(view, "graph.json")     // view → file
//	m, _ := graph.ReadGraphFile("graph.json")    // file → manifest
//
// A JSON graph read back is converted to a [manifest.Manifest], so it can be
// built and simulated exactly like a TOML manifest.
//
// # Concurrency
//
// Describing a graph only reads it. DescribeState and DescribePlan also read
// the owner's state and must not run concurrently with operations that
// change it.
package graph
