package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/lazydeps/pkg/errors"
	"github.com/matzehuels/lazydeps/pkg/manifest"
	"github.com/matzehuels/lazydeps/pkg/session"
)

// Simulation step operations.
const (
	stepEnsure  = "ensure"
	stepRebuild = "rebuild"
)

// step is one parsed "op:node" argument of the simulate command.
type step struct {
	op   string
	node string
}

func (s step) String() string { return s.op + " " + s.node }

// parseStep parses "ensure:texture" or "rebuild:path".
func parseStep(arg string) (step, error) {
	op, node, ok := strings.Cut(arg, ":")
	if !ok || node == "" {
		return step{}, apperr.New(apperr.ErrCodeInvalidInput, "invalid step %q (want ensure:<node> or rebuild:<node>)", arg)
	}
	if op != stepEnsure && op != stepRebuild {
		return step{}, apperr.New(apperr.ErrCodeInvalidInput, "unknown step operation %q", op)
	}
	return step{op: op, node: node}, nil
}

// simulateCommand creates the simulate command for running a scripted
// sequence of ensure and rebuild operations.
func (c *CLI) simulateCommand() *cobra.Command {
	var (
		output string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "simulate [manifest] [step...]",
		Short: "Run ensure and rebuild steps and print the lifecycle trace",
		Long: `Run ensure and rebuild steps and print the lifecycle trace.

Each step is ensure:<node> or rebuild:<node>. Steps share one session, so
later steps see the resources earlier steps created. The run stops at the
first failing create or destroy; nothing is rolled back.`,
		Example: `  lazydeps simulate examples/texture.toml ensure:textureview rebuild:path
  lazydeps simulate examples/texture.toml ensure:fake --json`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := make([]step, 0, len(args)-1)
			for _, arg := range args[1:] {
				s, err := parseStep(arg)
				if err != nil {
					return err
				}
				steps = append(steps, s)
			}

			_, g, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}

			sess := session.New()
			w := cmd.OutOrStdout()
			if asJSON {
				w = io.Discard
			}
			runErr := c.runSteps(w, g, sess, steps)

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), sess.Events()); err != nil {
					return err
				}
			}
			if output != "" {
				if err := writeTrace(output, sess.Events()); err != nil {
					return err
				}
				printFile(w, output)
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the trace as JSON to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the trace as JSON")

	return cmd
}

// runSteps executes steps against sess and prints each step's events.
func (c *CLI) runSteps(w io.Writer, g *manifest.Graph, sess *session.Session, steps []step) error {
	for _, s := range steps {
		prog := newProgress(c.Logger)
		fmt.Fprintln(w, StyleTitle.Render(s.String()))

		var (
			events []session.Event
			err    error
		)
		switch s.op {
		case stepEnsure:
			events, err = manifest.Ensure(g, sess, s.node)
		case stepRebuild:
			events, err = manifest.Rebuild(g, sess, s.node)
		}
		printEvents(w, events)
		if err != nil {
			printError(w, "%s", apperr.UserMessage(err))
			return err
		}
		prog.done(fmt.Sprintf("Finished %s (%d calls)", s, len(events)))
	}

	existing := sess.Existing()
	if len(existing) == 0 {
		printSuccess(w, "done, nothing exists")
	} else {
		printSuccess(w, "done, existing: %s", strings.Join(existing, ", "))
	}
	return nil
}

func writeTrace(path string, events []session.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()
	if err := writeJSON(f, events); err != nil {
		return err
	}
	return f.Close()
}
