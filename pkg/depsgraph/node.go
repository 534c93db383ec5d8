package depsgraph

// NoOwner is the owner type for graphs whose nodes are bound to free functions
// rather than to the fields of an application object.
//
//	b := depsgraph.NewBuilder[depsgraph.NoOwner]()
//	g.EnsureExists(depsgraph.NoOwner{}, node)
type NoOwner struct{}

// Resource is the capability set every node provides: a way to create the
// resource it stands for and a way to release it, both given the owner.
type Resource[C any] interface {
	Create(owner C) error
	Destroy(owner C) error
}

// FlagTracked is implemented by resources whose existence is recorded in a
// boolean owned by the engine. ReadyFlag returns the location of that boolean
// inside owner; the engine sets it after Create and clears it after Destroy.
// Outside code must never write it.
type FlagTracked[C any] interface {
	ReadyFlag(owner C) *bool
}

// ExistsTracked is implemented by resources that report their own existence.
type ExistsTracked[C any] interface {
	Exists(owner C) bool
}

// Tracking describes how a node reports whether its resource exists.
type Tracking int

const (
	// TrackNone means the node has no tracking: it is assumed absent before
	// creation and is recreated by every EnsureExists.
	TrackNone Tracking = iota
	// TrackReadyFlag means the engine maintains a boolean in the owner.
	TrackReadyFlag
	// TrackExists means an owner-supplied predicate reports existence.
	TrackExists
)

// String returns "none", "flag" or "exists".
func (t Tracking) String() string {
	switch t {
	case TrackReadyFlag:
		return "flag"
	case TrackExists:
		return "exists"
	default:
		return "none"
	}
}

// NodeOption configures a node registered with [Builder.Node].
type NodeOption[C any] func(*funcResource[C])

// OnCreate sets the operation that allocates the node's resource.
// A node without one has a no-op create.
func OnCreate[C any](fn func(owner C) error) NodeOption[C] {
	return func(r *funcResource[C]) { r.create = fn }
}

// OnDestroy sets the operation that releases the node's resource.
// A node without one has a no-op destroy.
func OnDestroy[C any](fn func(owner C) error) NodeOption[C] {
	return func(r *funcResource[C]) { r.destroy = fn }
}

// WithReadyFlag tracks the node with a boolean stored in the owner.
// It cannot be combined with [WithExists].
func WithReadyFlag[C any](fn func(owner C) *bool) NodeOption[C] {
	return func(r *funcResource[C]) { r.ready = fn }
}

// WithExists tracks the node with an owner-supplied predicate.
// It cannot be combined with [WithReadyFlag].
func WithExists[C any](fn func(owner C) bool) NodeOption[C] {
	return func(r *funcResource[C]) { r.exists = fn }
}

// funcResource is a Resource assembled from closures.
type funcResource[C any] struct {
	create  func(C) error
	destroy func(C) error
	ready   func(C) *bool
	exists  func(C) bool
}

func (r *funcResource[C]) Create(owner C) error {
	if r.create == nil {
		return nil
	}
	return r.create(owner)
}

func (r *funcResource[C]) Destroy(owner C) error {
	if r.destroy == nil {
		return nil
	}
	return r.destroy(owner)
}

// binding is the per-node readiness access resolved once at registration, so
// the algorithms never branch on the concrete resource type.
type binding[C any] struct {
	tracking Tracking
	ready    func(C) *bool
	exists   func(C) bool
}

func bindFunc[C any](r *funcResource[C]) (binding[C], error) {
	switch {
	case r.ready != nil && r.exists != nil:
		return binding[C]{}, ErrConflictingTracking
	case r.ready != nil:
		return binding[C]{tracking: TrackReadyFlag, ready: r.ready}, nil
	case r.exists != nil:
		return binding[C]{tracking: TrackExists, exists: r.exists}, nil
	}
	return binding[C]{}, nil
}

func bindResource[C any](r Resource[C]) (binding[C], error) {
	flagged, isFlagged := r.(FlagTracked[C])
	reporter, isReporter := r.(ExistsTracked[C])
	switch {
	case isFlagged && isReporter:
		return binding[C]{}, ErrConflictingTracking
	case isFlagged:
		return binding[C]{tracking: TrackReadyFlag, ready: flagged.ReadyFlag}, nil
	case isReporter:
		return binding[C]{tracking: TrackExists, exists: reporter.Exists}, nil
	}
	return binding[C]{}, nil
}
