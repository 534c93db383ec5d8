package depsgraph

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// AllDependencies returns every node reachable from id by following
// dependency edges, excluding id itself. A node's own dependencies always
// precede it, so creating the result front to back is safe. Nodes reachable
// through several paths appear once.
func (g *Graph[C]) AllDependencies(id NodeID) []NodeID {
	if !g.has(id) {
		return nil
	}
	visited := make([]bool, len(g.slots))
	visited[id] = true

	var order []NodeID
	var visit func(n NodeID)
	visit = func(n NodeID) {
		for _, d := range g.slots[n].dependencies {
			if visited[d] {
				continue
			}
			visited[d] = true
			visit(d)
			order = append(order, d)
		}
	}
	visit(id)
	return order
}

// AllDependees returns every node reachable from id by following dependee
// edges, excluding id itself. The order is topological starting from id:
// direct dependees come before their own dependees, and every node comes after
// all of its dependencies that are part of the result. Siblings keep edge
// declaration order. Nodes reachable through several paths appear once.
func (g *Graph[C]) AllDependees(id NodeID) []NodeID {
	if !g.has(id) {
		return nil
	}
	visited := make([]bool, len(g.slots))
	visited[id] = true

	// Reverse postorder of a DFS is a topological order. Children are visited
	// last-declared first so the final reversal restores declaration order.
	var post []NodeID
	var visit func(n NodeID)
	visit = func(n NodeID) {
		deps := g.slots[n].dependees
		for i := len(deps) - 1; i >= 0; i-- {
			d := deps[i]
			if visited[d] {
				continue
			}
			visited[d] = true
			visit(d)
			post = append(post, d)
		}
	}
	visit(id)
	slices.Reverse(post)
	return post
}

// WalkDependencies walks the dependency tree below id depth-first, in
// declaration order, calling fn for id (depth 0) and each dependency reached.
// A node reachable through several paths is visited once per path. If fn
// returns false the walk does not descend below that node.
func (g *Graph[C]) WalkDependencies(id NodeID, fn func(id NodeID, depth int) bool) {
	if !g.has(id) {
		return
	}
	var walk func(n NodeID, depth int)
	walk = func(n NodeID, depth int) {
		if !fn(n, depth) {
			return
		}
		for _, d := range g.slots[n].dependencies {
			walk(d, depth+1)
		}
	}
	walk(id, 0)
}

// PrintDependencies writes the dependency tree of id to w, one node per line,
// indented by depth. Subtrees already printed are marked with "(*)" and not
// expanded again.
func (g *Graph[C]) PrintDependencies(w io.Writer, id NodeID) error {
	if err := g.check(id); err != nil {
		return err
	}
	printed := make([]bool, len(g.slots))
	var werr error
	g.WalkDependencies(id, func(n NodeID, depth int) bool {
		if werr != nil {
			return false
		}
		indent := strings.Repeat("  ", depth)
		if printed[n] && len(g.slots[n].dependencies) > 0 {
			_, werr = fmt.Fprintf(w, "%s%s (*)\n", indent, g.slots[n].name)
			return false
		}
		printed[n] = true
		_, werr = fmt.Fprintf(w, "%s%s\n", indent, g.slots[n].name)
		return werr == nil
	})
	return werr
}
