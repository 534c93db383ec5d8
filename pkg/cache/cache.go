// Package cache provides a small byte cache for rendered artifacts.
//
// Rendering a graph with Graphviz is by far the slowest thing lazydeps does,
// and the same DOT source always produces the same SVG. The CLI and the HTTP
// server therefore look up renders by a hash of their DOT source before
// calling Graphviz.
//
// Two implementations are provided:
//   - [FileCache]: JSON entries under a directory, with optional expiry
//   - [NullCache]: never stores anything (--no-cache)
//
// Wrap a cache with [WithHooks] to report hits and misses to the
// observability hooks.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store keyed by string.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// RenderTTL is how long rendered artifacts are kept.
const RenderTTL = 7 * 24 * time.Hour

// prefixRender starts every render key. The prefix doubles as the key type
// reported to cache hooks.
const prefixRender = "render"

// Keyer generates cache keys.
type Keyer interface {
	// RenderKey returns the key for a rendered DOT document.
	RenderKey(dot string, opts RenderKeyOpts) string
}

// RenderKeyOpts holds the render settings that change the output.
type RenderKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer hashes its inputs into fixed-size keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RenderKey implements Keyer.
func (DefaultKeyer) RenderKey(dot string, opts RenderKeyOpts) string {
	return hashKey(prefixRender, Hash([]byte(dot)), opts)
}
