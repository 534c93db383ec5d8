// Package cli implements the lazydeps command-line interface.
package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lazydeps/pkg/buildinfo"
	"github.com/matzehuels/lazydeps/pkg/cache"
	"github.com/matzehuels/lazydeps/pkg/depsgraph"
	apperr "github.com/matzehuels/lazydeps/pkg/errors"
	"github.com/matzehuels/lazydeps/pkg/graph"
	"github.com/matzehuels/lazydeps/pkg/manifest"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "lazydeps"

	// defaultAddr is the listen address of the serve command.
	defaultAddr = "localhost:8080"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "lazydeps creates and rebuilds resources along a dependency graph",
		Long: `lazydeps loads a dependency graph of resources from a TOML manifest and
simulates how they are created on demand and rebuilt when one of them changes.

Every create and destroy call is recorded in a trace, so you can see exactly
which resources a change invalidates and in which order they come back.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.simulateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Loading
// =============================================================================

// loadGraph reads a manifest (.toml) or a graph view (.json) and builds it.
func (c *CLI) loadGraph(path string) (*manifest.Manifest, *manifest.Graph, error) {
	var (
		m   *manifest.Manifest
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		m, err = graph.ReadGraphFile(path)
	default:
		m, err = manifest.ParseFile(path)
	}
	if err != nil {
		return nil, nil, err
	}

	g, err := m.Build(depsgraph.WithLogger(c.Logger))
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Debug("Loaded graph", "path", path, "nodes", g.Len(), "edges", len(g.Edges()))
	return m, g, nil
}

// =============================================================================
// Cache
// =============================================================================

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidPath, err, "open cache %s", dir)
	}
	return cache.WithHooks(fc), nil
}

// newKeyer scopes cache keys to the running build.
func newKeyer() cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.CacheScope())
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/lazydeps/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// splitList parses a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
