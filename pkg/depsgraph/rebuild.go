package depsgraph

import (
	"time"

	"github.com/matzehuels/lazydeps/pkg/observability"
)

// PlannedNode is one dependee affected by a rebuild.
type PlannedNode struct {
	ID       NodeID
	Name     string
	WasReady bool // existed before the rebuild and will be recreated
}

// RebuildPlan describes what [Graph.Rebuild] would do for the current state
// of an owner, without touching any resource.
type RebuildPlan struct {
	Changed       NodeID
	Name          string
	ChangedExists bool          // the changed node is destroyed first
	Dependees     []PlannedNode // creation order, nearest dependee first
}

// Recreated returns the dependees that will be destroyed and recreated, in
// creation order.
func (p RebuildPlan) Recreated() []NodeID {
	var ids []NodeID
	for _, d := range p.Dependees {
		if d.WasReady {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// PlanRebuild reports, for the current state of owner, which dependees of
// changed exist and would be destroyed and recreated by Rebuild. Untracked
// dependees are assumed to exist.
func (g *Graph[C]) PlanRebuild(owner C, changed NodeID) (RebuildPlan, error) {
	if err := g.check(changed); err != nil {
		return RebuildPlan{}, err
	}
	order := g.AllDependees(changed)
	plan := RebuildPlan{
		Changed:       changed,
		Name:          g.slots[changed].name,
		ChangedExists: g.exists(owner, changed, true),
		Dependees:     make([]PlannedNode, len(order)),
	}
	for i, id := range order {
		plan.Dependees[i] = PlannedNode{ID: id, Name: g.slots[id].name, WasReady: g.exists(owner, id, true)}
	}
	return plan, nil
}

// Rebuild treats changed's input as modified: it destroys changed and every
// transitive dependee that currently exists, recreates changed, then
// recreates exactly the dependees that existed before.
//
// Destruction runs from the farthest dependee toward changed, so nothing is
// destroyed while something depending on it still exists. Creation runs from
// changed outward, so nothing is created before its dependencies. Each node is
// destroyed and created at most once, even in diamond-shaped graphs. Dependees
// that did not exist are neither destroyed nor created. The changed node is
// always created, and destroyed first only if it exists (untracked counts as
// existing).
//
// On a callback failure Rebuild returns a [*LifecycleError] immediately;
// there is no rollback.
func (g *Graph[C]) Rebuild(owner C, changed NodeID) error {
	if err := g.check(changed); err != nil {
		return err
	}
	start := time.Now()
	order := g.AllDependees(changed)
	name := g.slots[changed].name
	observability.Lifecycle().OnRebuildStart(name, len(order))
	g.logger.Debug("rebuild", "node", name, "dependees", len(order))

	recreated, err := g.rebuild(owner, changed, order)
	observability.Lifecycle().OnRebuildComplete(name, recreated, time.Since(start), err)
	return err
}

func (g *Graph[C]) rebuild(owner C, changed NodeID, order []NodeID) (int, error) {
	wasReady := make([]bool, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		if wasReady[i] = g.exists(owner, id, true); !wasReady[i] {
			continue
		}
		if err := g.markDestroyed(owner, id); err != nil {
			return 0, err
		}
	}

	if g.exists(owner, changed, true) {
		if err := g.markDestroyed(owner, changed); err != nil {
			return 0, err
		}
	}
	if err := g.markCreated(owner, changed); err != nil {
		return 0, err
	}

	recreated := 0
	for i, id := range order {
		if !wasReady[i] {
			continue
		}
		if err := g.markCreated(owner, id); err != nil {
			return recreated, err
		}
		recreated++
	}
	return recreated, nil
}
