package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/lazydeps/pkg/errors"
	"github.com/matzehuels/lazydeps/pkg/graph"
	"github.com/matzehuels/lazydeps/pkg/manifest"
	"github.com/matzehuels/lazydeps/pkg/render/nodelink"
	"github.com/matzehuels/lazydeps/pkg/session"
)

// Output formats of the render command.
const (
	formatSVG  = "svg"
	formatDOT  = "dot"
	formatJSON = "json"
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatSVG: true, formatDOT: true, formatJSON: true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string   // output file path (or base path for multiple outputs)
	formats   []string // output formats: "svg", "dot", "json"
	detailed  bool     // show tracking and description in node labels
	highlight string   // node whose rebuild impact set is highlighted
	ensure    []string // nodes created before rendering
	noCache   bool     // skip the render cache
}

// renderCommand creates the render command for generating diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr, ensureStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [manifest]",
		Short: "Render a dependency graph to SVG, DOT or JSON",
		Long: `Render a dependency graph to SVG, DOT or JSON.

Nodes that exist are filled. Use --ensure to create nodes before rendering
and --highlight to mark every node a rebuild of the given node would
recreate. Rendered SVGs are cached locally.`,
		Example: `  lazydeps render examples/texture.toml --ensure textureview --highlight data
  lazydeps render examples/diamond.toml -f svg,json -o out/diamond`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			opts.ensure = splitList(ensureStr)
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show tracking mode and description in labels")
	cmd.Flags().StringVar(&opts.highlight, "highlight", "", "highlight the nodes a rebuild of this node recreates")
	cmd.Flags().StringVar(&ensureStr, "ensure", "", "nodes to create before rendering (comma-separated)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if formats := splitList(s); len(formats) > 0 {
		return formats
	}
	return []string{formatSVG}
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return apperr.New(apperr.ErrCodeInvalidInput, "invalid format: %s (must be 'svg', 'dot', or 'json')", f)
		}
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .dot, .json), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns where one format is written. A single format honors an
// explicit output path as given.
func outputPath(opts *renderOpts, input, format string) string {
	if len(opts.formats) == 1 && opts.output != "" {
		return opts.output
	}
	return basePath(opts.output, input) + "." + format
}

// runRender loads the graph, applies --ensure, and writes each format.
func (c *CLI) runRender(ctx context.Context, w io.Writer, input string, opts *renderOpts) error {
	prog := newProgress(c.Logger)
	m, g, err := c.loadGraph(input)
	if err != nil {
		return err
	}
	sess := session.New()
	if err := c.ensureAll(g, sess, opts.ensure); err != nil {
		return err
	}

	view := graph.DescribeState(g, sess)
	view.Annotate(m)

	dotOpts := nodelink.Options{Detailed: opts.detailed}
	if opts.highlight != "" {
		id, err := manifest.Lookup(g, opts.highlight)
		if err != nil {
			return err
		}
		plan, err := graph.DescribePlan(g, sess, id)
		if err != nil {
			return manifest.Classify(err)
		}
		dotOpts.Highlight = plan.Create
		c.Logger.Debug("Highlighting rebuild impact", "node", opts.highlight, "nodes", len(plan.Create))
	}
	dot := nodelink.ToDOT(view, dotOpts)

	cached := true
	for _, format := range opts.formats {
		data, hit, err := c.renderFormat(ctx, format, view, dot, opts.noCache)
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		cached = cached && hit
		path := outputPath(opts, input, format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidPath, err, "write %s", path)
		}
		printFile(w, path)
	}
	printStats(w, len(view.Nodes), len(view.Edges), cached)
	prog.done(fmt.Sprintf("Rendered %s", input))
	return nil
}

// renderFormat produces the bytes of one output format. cached reports
// whether they came from the render cache; only SVG output is cached.
func (c *CLI) renderFormat(ctx context.Context, format string, view graph.Graph, dot string, noCache bool) (data []byte, cached bool, err error) {
	switch format {
	case formatDOT:
		return []byte(dot), false, nil
	case formatJSON:
		data, err = graph.MarshalGraph(view)
		return data, false, err
	case formatSVG:
		cc, err := c.newCache(noCache)
		if err != nil {
			return nil, false, err
		}
		defer cc.Close()
		return nodelink.RenderCached(ctx, cc, newKeyer(), dot)
	default:
		return nil, false, apperr.New(apperr.ErrCodeUnsupported, "unknown format: %s", format)
	}
}
