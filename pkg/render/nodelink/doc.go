// Package nodelink renders dependency graphs as node-link diagrams.
//
// # Overview
//
// Nodes appear as rounded boxes and every edge points from a dependee to the
// dependency it needs, so resources that must be created first sit at the
// bottom of the diagram.
//
// # Usage
//
// Convert a graph view to DOT format, then render to SVG:
//
//	view := graph.DescribeState(g, sess)
//	dot := nodelink.ToDOT(view, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Repeated renders of the same DOT source can be served from a cache:
//
//	svg, cached, err := nodelink.RenderCached(ctx, c, keyer, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels include the tracking mode and description
//   - Highlight: nodes drawn with a thick outline, e.g. the set a rebuild
//     would touch
//
// Nodes whose view carries state are filled green when they exist.
// Untracked nodes have a dashed outline; nodes configured to fail are drawn
// with a red outline.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is required.
package nodelink
