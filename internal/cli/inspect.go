package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lazydeps/pkg/graph"
	"github.com/matzehuels/lazydeps/pkg/manifest"
)

// inspectCommand creates the inspect command for showing a graph or one node.
func (c *CLI) inspectCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect [manifest] [node]",
		Short: "Show the nodes of a graph or the relations of one node",
		Long: `Show the nodes of a graph or the relations of one node.

Without a node, inspect lists every node with its tracking mode and direct
dependencies. With a node, it shows the node's transitive dependencies in
creation order, its transitive dependees in rebuild order, and the
dependency tree as the engine walks it.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, g, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(args) == 1 {
				return inspectGraph(w, m, g, asJSON)
			}
			return inspectNode(w, g, args[1], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

func inspectGraph(w io.Writer, m *manifest.Manifest, g *manifest.Graph, asJSON bool) error {
	view := graph.Describe(g)
	view.Annotate(m)
	if asJSON {
		return graph.WriteGraph(view, w)
	}

	title := m.Name
	if title == "" {
		title = "graph"
	}
	fmt.Fprintln(w, StyleTitle.Render(title))
	if m.Description != "" {
		printDetail(w, "%s", m.Description)
	}
	fmt.Fprintln(w, nodeTable(view))

	for _, e := range g.RedundantEdges() {
		printWarning(w, "%s -> %s is redundant: %s reaches %s through another dependency",
			g.Name(e.Dependee), g.Name(e.Dependency), g.Name(e.Dependee), g.Name(e.Dependency))
	}
	return nil
}

func inspectNode(w io.Writer, g *manifest.Graph, name string, asJSON bool) error {
	id, err := manifest.Lookup(g, name)
	if err != nil {
		return err
	}
	closure := graph.DescribeNode(g, id)
	if asJSON {
		return writeJSON(w, closure)
	}

	fmt.Fprintln(w, StyleTitle.Render(closure.Node))
	printKeyValue(w, "tracking", closure.Tracking)
	printKeyValue(w, "dependencies", listOrDash(closure.Dependencies))
	printKeyValue(w, "dependees", listOrDash(closure.Dependees))
	printKeyValue(w, "creation order", listOrDash(closure.AllDependencies))
	printKeyValue(w, "rebuild order", listOrDash(closure.AllDependees))

	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleDim.Render("dependency tree"))
	return g.PrintDependencies(w, id)
}

func listOrDash(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
