package depsgraph

// RedundantEdges returns the edges whose dependency the dependee already
// reaches through another of its dependencies. For edges A→B, B→C and A→C,
// A→C is redundant. Removing redundant edges does not change which nodes
// AllDependencies or AllDependees return, only possibly their order.
//
// The result keeps edge declaration order. Time is O(V·E) for the
// reachability pass; space is O(V²).
func (g *Graph[C]) RedundantEdges() []Edge {
	if len(g.edges) == 0 {
		return nil
	}
	reach := g.reachability()

	var out []Edge
	for _, e := range g.edges {
		for _, mid := range g.slots[e.Dependee].dependencies {
			if mid != e.Dependency && reach[mid][e.Dependency] {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// reachability reports for every pair (u, v) whether v is a transitive
// dependency of u.
func (g *Graph[C]) reachability() [][]bool {
	reach := make([][]bool, len(g.slots))
	for i := range reach {
		reach[i] = make([]bool, len(g.slots))
	}

	var dfs func(src, cur NodeID)
	dfs = func(src, cur NodeID) {
		for _, d := range g.slots[cur].dependencies {
			if !reach[src][d] {
				reach[src][d] = true
				dfs(src, d)
			}
		}
	}
	for i := range g.slots {
		dfs(NodeID(i), NodeID(i))
	}
	return reach
}
