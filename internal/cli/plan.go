package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lazydeps/pkg/graph"
	"github.com/matzehuels/lazydeps/pkg/manifest"
	"github.com/matzehuels/lazydeps/pkg/session"
)

// planCommand creates the plan command for previewing a rebuild.
func (c *CLI) planCommand() *cobra.Command {
	var (
		ensure string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "plan [manifest] [node]",
		Short: "Preview what rebuilding a node would destroy and recreate",
		Long: `Preview what rebuilding a node would destroy and recreate.

A rebuild only recreates dependees that existed beforehand, so the plan
depends on state. Use --ensure to create nodes first; without it the plan
is computed against an empty session.`,
		Example: `  lazydeps plan examples/texture.toml path --ensure textureview`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, g, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}
			sess := session.New()
			if err := c.ensureAll(g, sess, splitList(ensure)); err != nil {
				return err
			}
			id, err := manifest.Lookup(g, args[1])
			if err != nil {
				return err
			}
			plan, err := graph.DescribePlan(g, sess, id)
			if err != nil {
				return manifest.Classify(err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), plan)
			}
			printPlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}

	cmd.Flags().StringVar(&ensure, "ensure", "", "nodes to create before planning (comma-separated)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

// ensureAll creates the named nodes in order, stopping at the first failure.
func (c *CLI) ensureAll(g *manifest.Graph, sess *session.Session, names []string) error {
	for _, name := range names {
		events, err := manifest.Ensure(g, sess, name)
		if err != nil {
			return err
		}
		c.Logger.Debug("Ensured", "node", name, "created", len(events))
	}
	return nil
}

func printPlan(w io.Writer, p graph.Plan) {
	fmt.Fprintln(w, StyleTitle.Render("rebuild "+p.Node))
	for _, d := range p.Dependees {
		if d.WasReady {
			printDetail(w, "%s existed, will be recreated", d.Node)
		} else {
			printDetail(w, "%s absent, stays absent", d.Node)
		}
	}
	if !p.Exists {
		printDetail(w, "%s absent, will only be created", p.Node)
	}
	fmt.Fprintln(w)
	for _, name := range p.Destroy {
		fmt.Fprintln(w, "  "+styleDestroy.Render(iconDestroy+" destroy")+" "+StyleValue.Render(name))
	}
	for _, name := range p.Create {
		fmt.Fprintln(w, "  "+styleCreate.Render(iconCreate+" create ")+" "+StyleValue.Render(name))
	}
}
