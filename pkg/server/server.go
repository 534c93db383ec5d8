// Package server exposes one manifest graph and its session over HTTP.
//
// The server is an introspection and simulation surface: clients read the
// graph, node closures and rebuild plans, and trigger ensure and rebuild runs
// whose create and destroy calls land in the session trace.
//
// # Routes
//
//	GET  /healthz                  liveness probe
//	GET  /graph                    graph view with existence state
//	GET  /graph.dot                Graphviz source (?highlight=node)
//	GET  /graph.svg                rendered diagram (?highlight=node)
//	GET  /nodes/{name}             direct and transitive relations
//	GET  /nodes/{name}/plan        what a rebuild of the node would do
//	POST /nodes/{name}/ensure      run EnsureExists
//	POST /nodes/{name}/rebuild     run Rebuild
//	GET  /trace                    session events (?since=seq)
//	POST /reset                    forget all state and the trace
//
// The graph engine has no internal synchronization, so every request that
// touches the graph or the session holds the server's lock.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/lazydeps/pkg/cache"
	"github.com/matzehuels/lazydeps/pkg/manifest"
	"github.com/matzehuels/lazydeps/pkg/session"
)

// shutdownTimeout bounds graceful shutdown once the serve context is done.
const shutdownTimeout = 5 * time.Second

// Server serves one manifest graph.
type Server struct {
	mu       sync.Mutex
	manifest *manifest.Manifest
	graph    *manifest.Graph
	sess     *session.Session

	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithCache caches rendered SVG diagrams in c under keys from k.
func WithCache(c cache.Cache, k cache.Keyer) Option {
	return func(s *Server) {
		s.cache = c
		s.keyer = k
	}
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithSession serves an existing session instead of a fresh one.
func WithSession(sess *session.Session) Option {
	return func(s *Server) { s.sess = sess }
}

// New creates a server for the graph built from m.
func New(m *manifest.Manifest, g *manifest.Graph, opts ...Option) *Server {
	s := &Server{
		manifest: m,
		graph:    g,
		cache:    cache.NewNullCache(),
		keyer:    cache.NewDefaultKeyer(),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sess == nil {
		s.sess = session.New()
	}
	return s
}

// Session returns the served session. Callers must not use it while the
// server is handling requests.
func (s *Server) Session() *session.Session { return s.sess }

// Handler returns the router serving all routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/graph", s.handleGraph)
	r.Get("/graph.dot", s.handleDOT)
	r.Get("/graph.svg", s.handleSVG)
	r.Get("/trace", s.handleTrace)
	r.Post("/reset", s.handleReset)

	r.Route("/nodes/{name}", func(r chi.Router) {
		r.Get("/", s.handleNode)
		r.Get("/plan", s.handlePlan)
		r.Post("/ensure", s.handleEnsure)
		r.Post("/rebuild", s.handleRebuild)
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Serving graph", "addr", addr, "nodes", s.graph.Len())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()
	}
}
