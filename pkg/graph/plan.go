package graph

import "github.com/matzehuels/lazydeps/pkg/depsgraph"

// Plan is the view of a depsgraph.RebuildPlan.
type Plan struct {
	Node      string      `json:"node"`
	Exists    bool        `json:"exists"`
	Dependees []PlanEntry `json:"dependees"`
	Destroy   []string    `json:"destroy"`
	Create    []string    `json:"create"`
}

// PlanEntry is one transitive dependee and whether it will be recreated.
type PlanEntry struct {
	Node     string `json:"node"`
	WasReady bool   `json:"was_ready"`
}

// DescribePlan computes the rebuild plan of id for owner and returns its view.
// Destroy and Create list the calls Rebuild would make, in order.
func DescribePlan[C any](g *depsgraph.Graph[C], owner C, id depsgraph.NodeID) (Plan, error) {
	p, err := g.PlanRebuild(owner, id)
	if err != nil {
		return Plan{}, err
	}
	return FromPlan(p), nil
}

// FromPlan converts a rebuild plan into its view.
func FromPlan(p depsgraph.RebuildPlan) Plan {
	out := Plan{
		Node:      p.Name,
		Exists:    p.ChangedExists,
		Dependees: make([]PlanEntry, 0, len(p.Dependees)),
		Destroy:   []string{},
		Create:    []string{p.Name},
	}
	for _, d := range p.Dependees {
		out.Dependees = append(out.Dependees, PlanEntry{Node: d.Name, WasReady: d.WasReady})
		if d.WasReady {
			out.Create = append(out.Create, d.Name)
		}
	}
	for i := len(p.Dependees) - 1; i >= 0; i-- {
		if d := p.Dependees[i]; d.WasReady {
			out.Destroy = append(out.Destroy, d.Name)
		}
	}
	if p.ChangedExists {
		out.Destroy = append(out.Destroy, p.Name)
	}
	return out
}
