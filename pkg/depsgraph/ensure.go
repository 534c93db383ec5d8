package depsgraph

// EnsureExists guarantees that target's resource exists for owner, creating
// any missing dependency first.
//
// Dependencies are visited in edge declaration order and always materialized
// strictly before the nodes that need them. A node already reported as
// existing is left alone, which makes a second call with no intervening
// change a no-op for tracked nodes. Untracked nodes are created once per call.
//
// On a create failure EnsureExists returns a [*LifecycleError] immediately;
// nodes created so far stay created.
func (g *Graph[C]) EnsureExists(owner C, target NodeID) error {
	if err := g.check(target); err != nil {
		return err
	}
	visited := make([]bool, len(g.slots))
	return g.ensureExists(owner, target, visited)
}

func (g *Graph[C]) ensureExists(owner C, id NodeID, visited []bool) error {
	visited[id] = true
	for _, d := range g.slots[id].dependencies {
		if visited[d] {
			continue
		}
		if err := g.ensureExists(owner, d, visited); err != nil {
			return err
		}
	}
	if g.exists(owner, id, false) {
		return nil
	}
	return g.markCreated(owner, id)
}
