package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lazydeps/pkg/cache"
	"github.com/matzehuels/lazydeps/pkg/graph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the tracking mode and description in node labels.
	// When false, only the node name is shown.
	Detailed bool

	// Highlight lists nodes to draw with a thick orange outline.
	Highlight []string
}

// Colors used in diagrams.
const (
	colorExisting  = "#c8e6c9"
	colorHighlight = "#ef6c00"
	colorFailing   = "#c62828"
)

// ToDOT converts a graph view to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(g graph.Graph, opts Options) string {
	highlight := make(map[string]bool, len(opts.Highlight))
	for _, id := range opts.Highlight {
		highlight[id] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=20, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowsize=0.8];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if g.Name != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", g.Name)
	}
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), highlight[n.ID])
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}
	label := n.ID + "\ntracking: " + n.Tracking
	if n.Description != "" {
		label += "\n" + n.Description
	}
	return label
}

func fmtAttrs(n graph.Node, label string, highlighted bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Tracking == "none" {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	if n.Exists != nil && *n.Exists {
		attrs = append(attrs, "fillcolor=\""+colorExisting+"\"")
	}
	switch {
	case highlighted:
		attrs = append(attrs, "color=\""+colorHighlight+"\"", "penwidth=3")
	case n.FailCreate != "" || n.FailDestroy != "":
		attrs = append(attrs, "color=\""+colorFailing+"\"", "penwidth=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderCached renders dot like [RenderSVG], serving and storing the result
// in c under a key derived from the DOT source. cached reports whether the
// SVG came from c.
func RenderCached(ctx context.Context, c cache.Cache, k cache.Keyer, dot string) (svg []byte, cached bool, err error) {
	key := k.RenderKey(dot, cache.RenderKeyOpts{Format: "svg"})
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}
	svg, err = RenderSVG(ctx, dot)
	if err != nil {
		return nil, false, err
	}
	// A failed write only costs a re-render next time.
	_ = c.Set(ctx, key, svg, cache.RenderTTL)
	return svg, false, nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// viewBox starts at the origin, so the SVG scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
