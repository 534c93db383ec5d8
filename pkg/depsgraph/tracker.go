package depsgraph

import (
	"time"

	"github.com/matzehuels/lazydeps/pkg/observability"
)

// Exists reports whether the node's resource currently exists for owner.
// Untracked nodes report false.
func (g *Graph[C]) Exists(owner C, id NodeID) bool {
	if !g.has(id) {
		return false
	}
	return g.exists(owner, id, false)
}

// exists is the uniform readiness query. It returns the ready flag if the node
// has one, else the exists predicate, else unknown.
func (g *Graph[C]) exists(owner C, id NodeID, unknown bool) bool {
	b := &g.slots[id].bind
	switch b.tracking {
	case TrackReadyFlag:
		if p := b.ready(owner); p != nil {
			return *p
		}
	case TrackExists:
		return b.exists(owner)
	}
	return unknown
}

// markCreated invokes the node's create operation and then sets its ready
// flag, if it has one. The flag is left untouched when create fails.
func (g *Graph[C]) markCreated(owner C, id NodeID) error {
	s := &g.slots[id]
	start := time.Now()
	err := s.res.Create(owner)
	observability.Lifecycle().OnCreate(s.name, time.Since(start), err)
	if err != nil {
		g.logger.Debug("create failed", "node", s.name, "err", err)
		return &LifecycleError{Op: OpCreate, Node: s.name, Err: err}
	}
	g.setFlag(owner, id, true)
	g.logger.Debug("created", "node", s.name, "tracking", s.bind.tracking)
	return nil
}

// markDestroyed invokes the node's destroy operation and then clears its ready
// flag, if it has one.
func (g *Graph[C]) markDestroyed(owner C, id NodeID) error {
	s := &g.slots[id]
	start := time.Now()
	err := s.res.Destroy(owner)
	observability.Lifecycle().OnDestroy(s.name, time.Since(start), err)
	if err != nil {
		g.logger.Debug("destroy failed", "node", s.name, "err", err)
		return &LifecycleError{Op: OpDestroy, Node: s.name, Err: err}
	}
	g.setFlag(owner, id, false)
	g.logger.Debug("destroyed", "node", s.name, "tracking", s.bind.tracking)
	return nil
}

func (g *Graph[C]) setFlag(owner C, id NodeID, v bool) {
	b := &g.slots[id].bind
	if b.tracking != TrackReadyFlag {
		return
	}
	if p := b.ready(owner); p != nil {
		*p = v
	}
}
