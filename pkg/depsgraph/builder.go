package depsgraph

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// Builder declares the nodes and edges of a graph. It is used once during
// setup; [Builder.Build] validates the declaration and returns an immutable
// [Graph].
//
// Registration methods never fail immediately. Problems are collected and
// reported together by Build so that graph declarations can be written as a
// flat list of statements.
type Builder[C any] struct {
	slots  []slot[C]
	byName map[string]NodeID
	edges  []Edge
	errs   []error
}

// NewBuilder creates an empty builder for graphs owned by C.
func NewBuilder[C any]() *Builder[C] {
	return &Builder[C]{byName: make(map[string]NodeID)}
}

// Node registers a resource assembled from options and returns its ID.
// Without options the node is an abstract placeholder: create and destroy are
// no-ops and it has no tracking.
func (b *Builder[C]) Node(name string, opts ...NodeOption[C]) NodeID {
	r := &funcResource[C]{}
	for _, opt := range opts {
		opt(r)
	}
	bind, err := bindFunc(r)
	return b.add(name, r, bind, err)
}

// Resource registers a concrete resource and returns its ID. Tracking is
// derived from the optional [FlagTracked] and [ExistsTracked] interfaces.
func (b *Builder[C]) Resource(name string, r Resource[C]) NodeID {
	if r == nil {
		return b.add(name, nil, binding[C]{}, ErrNilResource)
	}
	bind, err := bindResource(r)
	return b.add(name, r, bind, err)
}

func (b *Builder[C]) add(name string, r Resource[C], bind binding[C], err error) NodeID {
	id := NodeID(len(b.slots))
	switch {
	case name == "":
		b.errs = append(b.errs, fmt.Errorf("node #%d: %w", id, ErrInvalidNodeName))
	case err != nil:
		b.errs = append(b.errs, fmt.Errorf("node %q: %w", name, err))
	}
	if _, dup := b.byName[name]; dup && name != "" {
		b.errs = append(b.errs, fmt.Errorf("%w: %q", ErrDuplicateNode, name))
	} else if name != "" {
		b.byName[name] = id
	}
	b.slots = append(b.slots, slot[C]{name: name, res: r, bind: bind})
	return id
}

// DependsOn declares that dependee requires dependency to exist first.
// Edges are kept in declaration order, which is the order EnsureExists visits
// a node's dependencies.
func (b *Builder[C]) DependsOn(dependee, dependency NodeID) *Builder[C] {
	b.edges = append(b.edges, Edge{Dependee: dependee, Dependency: dependency})
	return b
}

// Option configures [Builder.Build].
type Option func(*options)

type options struct {
	logger     *log.Logger
	checkCycle bool
}

// WithLogger sets the logger used for debug output of create and destroy
// calls. By default the graph logs nothing.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithoutCycleCheck skips cycle detection in Build. A cyclic graph then
// recurses without bound in EnsureExists, so only use this when acyclicity is
// guaranteed by construction.
func WithoutCycleCheck() Option {
	return func(o *options) { o.checkCycle = false }
}

// Build validates the declared nodes and edges and returns the graph.
//
// All problems found are joined into a single error; individual causes can be
// matched with errors.Is against the package's sentinel errors.
func (b *Builder[C]) Build(opts ...Option) (*Graph[C], error) {
	o := options{checkCycle: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}

	errs := append([]error(nil), b.errs...)

	slots := make([]slot[C], len(b.slots))
	copy(slots, b.slots)

	type pair struct{ from, to NodeID }
	seen := make(map[pair]bool, len(b.edges))
	edges := make([]Edge, 0, len(b.edges))
	for _, e := range b.edges {
		if !valid(e.Dependee, len(slots)) || !valid(e.Dependency, len(slots)) {
			errs = append(errs, fmt.Errorf("edge %d -> %d: %w", e.Dependee, e.Dependency, ErrUnknownNode))
			continue
		}
		from, to := slots[e.Dependee].name, slots[e.Dependency].name
		if e.Dependee == e.Dependency {
			errs = append(errs, fmt.Errorf("%w: %q", ErrSelfLoop, from))
			continue
		}
		p := pair{e.Dependee, e.Dependency}
		if seen[p] {
			errs = append(errs, fmt.Errorf("%w: %q -> %q", ErrDuplicateEdge, from, to))
			continue
		}
		seen[p] = true
		edges = append(edges, e)
		slots[e.Dependee].dependencies = append(slots[e.Dependee].dependencies, e.Dependency)
		slots[e.Dependency].dependees = append(slots[e.Dependency].dependees, e.Dependee)
	}

	g := &Graph[C]{
		slots:  slots,
		byName: make(map[string]NodeID, len(b.byName)),
		edges:  edges,
		logger: o.logger,
	}
	for name, id := range b.byName {
		g.byName[name] = id
	}

	if o.checkCycle {
		if cycle := g.findCycle(); cycle != nil {
			errs = append(errs, cycleError(g, cycle))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return g, nil
}

func valid(id NodeID, n int) bool { return id >= 0 && int(id) < n }
