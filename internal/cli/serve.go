package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lazydeps/pkg/server"
)

// serveCommand creates the serve command for the HTTP introspection server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve [manifest]",
		Short: "Serve a graph and its session over HTTP",
		Long: `Serve a graph and its session over HTTP.

The server keeps one session for its lifetime. Clients inspect nodes and
rebuild plans, trigger ensure and rebuild runs, and read the trace:

  GET  /graph, /graph.dot, /graph.svg
  GET  /nodes/{name}, /nodes/{name}/plan
  POST /nodes/{name}/ensure, /nodes/{name}/rebuild
  GET  /trace
  POST /reset`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, g, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}
			cc, err := c.newCache(noCache)
			if err != nil {
				return err
			}
			defer cc.Close()

			srv := server.New(m, g,
				server.WithCache(cc, newKeyer()),
				server.WithLogger(c.Logger),
			)
			printInfo(cmd.OutOrStdout(), "Listening on http://%s", addr)
			printNextStep(cmd.OutOrStdout(), "Try", "curl -X POST http://"+addr+"/nodes/"+g.Name(g.Nodes()[len(g.Nodes())-1])+"/ensure")

			err = srv.ListenAndServe(cmd.Context(), addr)
			if errors.Is(err, context.Canceled) {
				c.Logger.Info("Server stopped")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the SVG cache")

	return cmd
}
