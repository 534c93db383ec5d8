package depsgraph

import (
	"fmt"
	"strings"
)

// findCycle returns the node IDs of one dependency cycle, with the first node
// repeated at the end, or nil if the graph is acyclic.
func (g *Graph[C]) findCycle() []NodeID {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, len(g.slots))
	var stack []NodeID
	var cycle []NodeID

	var dfs func(n NodeID) bool
	dfs = func(n NodeID) bool {
		color[n] = gray
		stack = append(stack, n)
		for _, d := range g.slots[n].dependencies {
			switch color[d] {
			case white:
				if dfs(d) {
					return true
				}
			case gray:
				for i, s := range stack {
					if s == d {
						cycle = append(append(cycle, stack[i:]...), d)
						return true
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
		return false
	}

	for i := range g.slots {
		if color[i] == white && dfs(NodeID(i)) {
			return cycle
		}
	}
	return nil
}

func cycleError[C any](g *Graph[C], cycle []NodeID) error {
	return fmt.Errorf("%w: %s", ErrGraphHasCycle, strings.Join(g.Names(cycle), " -> "))
}
