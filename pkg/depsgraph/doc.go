// Package depsgraph manages the lifecycle of interdependent, lazily created
// resources declared as a directed acyclic dependency graph.
//
// # Overview
//
// A resource is anything with a create and a destroy step: a file loaded into
// memory, a buffer derived from it, a GPU texture, a view over that texture.
// Resources depend on each other, and when an upstream input changes every
// resource built from it must be torn down and rebuilt in the right order.
//
// This package provides the engine for that. Given a target it guarantees that
// all of the target's transitive dependencies exist before the target is
// created ([Graph.EnsureExists]). Given a changed node it destroys and
// regenerates exactly the subgraph of resources that depend on it, recreating
// only those dependees that were materialized before ([Graph.Rebuild]).
//
// # Basic Usage
//
// Declare nodes and edges once with a [Builder], then freeze them into an
// immutable [Graph]. The owner type parameter C is the context that holds the
// actual resources, typically an application struct:
//
//	b := depsgraph.NewBuilder[*App]()
//	path := b.Node("path")
//	data := b.Node("data",
//	    depsgraph.OnCreate(func(a *App) error { return a.loadData() }),
//	    depsgraph.OnDestroy(func(a *App) error { a.data = nil; return nil }),
//	    depsgraph.WithReadyFlag(func(a *App) *bool { return &a.dataReady }),
//	)
//	b.DependsOn(data, path)
//	g, err := b.Build()
//
//	err = g.EnsureExists(app, data) // creates path, then data
//	err = g.Rebuild(app, path)      // destroys data, recreates path, recreates data
//
// # Existence Tracking
//
// Each node reports whether its resource currently exists in exactly one of
// three ways, see [Tracking]:
//
//   - [TrackReadyFlag]: a boolean stored in the owner, mutated only by the engine
//   - [TrackExists]: a predicate evaluated against the owner
//   - [TrackNone]: no tracking; the node is recreated on every EnsureExists
//
// Untracked nodes are useful for one-shot computations without persistent
// identity. Callers that need memoization must supply a flag or a predicate.
//
// Nodes can also be concrete types: anything implementing [Resource], plus
// optionally [FlagTracked] or [ExistsTracked], can be registered with
// [Builder.Resource].
//
// # Ordering Guarantees
//
// For every edge "A depends on B":
//   - EnsureExists creates B before A
//   - Rebuild destroys A before B and recreates A after B
//
// Rebuild visits each transitive dependee exactly once, even when it is
// reachable through several paths (diamond-shaped graphs).
//
// # Errors
//
// [Builder.Build] rejects misconfigured graphs: empty or duplicate names,
// edges to unknown nodes, self-loops, duplicate edges, nodes declaring both a
// ready flag and an exists predicate, and cycles. Cycle detection can be
// disabled with [WithoutCycleCheck] for callers that validate elsewhere.
//
// Create and destroy failures are returned as a [*LifecycleError] wrapping the
// callback's error. Processing stops immediately: nodes already handled keep
// their new state and nodes not yet reached are left untouched. There is no
// rollback.
//
// # Concurrency
//
// Graph structure is immutable after Build and safe for concurrent reads.
// EnsureExists and Rebuild mutate the owner's resources and readiness flags
// without synchronization; callers must not run them concurrently against the
// same owner.
package depsgraph
