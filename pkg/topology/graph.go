package topology

import "github.com/aretw0/pipeview/pkg/domain"

// graph is the resolved subscription graph of one build.
type graph struct {
	stages []domain.Stage
	index  map[string]int

	// upstream holds the resolvable upstream stage indices of each stage,
	// in declaration order, without self references or duplicates.
	upstream [][]int

	warehouses []domain.Warehouse
	whIndex    map[string]int

	order    []int
	rank     []int
	lane     []string
	fallback []bool
}

func newGraph(stages []domain.Stage, warehouses []domain.Warehouse) *graph {
	g := &graph{
		index:   make(map[string]int, len(stages)),
		whIndex: make(map[string]int, len(warehouses)),
	}
	for _, s := range stages {
		if _, dup := g.index[s.Name]; dup {
			continue
		}
		g.index[s.Name] = len(g.stages)
		g.stages = append(g.stages, s)
	}
	for _, w := range warehouses {
		if _, dup := g.whIndex[w.Name]; dup {
			continue
		}
		g.whIndex[w.Name] = len(g.warehouses)
		g.warehouses = append(g.warehouses, w)
	}

	g.upstream = make([][]int, len(g.stages))
	for i, s := range g.stages {
		seen := make(map[int]bool)
		for _, name := range s.UpstreamNames() {
			u, ok := g.index[name]
			if !ok || u == i || seen[u] {
				continue
			}
			seen[u] = true
			g.upstream[i] = append(g.upstream[i], u)
		}
	}
	return g
}

// sort computes a topological order with a stable tie-break on input order.
// When only cycles remain, the earliest remaining stage is taken as if ready.
func (g *graph) sort() {
	n := len(g.stages)
	indeg := make([]int, n)
	downstream := make([][]int, n)
	for i, ups := range g.upstream {
		indeg[i] = len(ups)
		for _, u := range ups {
			downstream[u] = append(downstream[u], i)
		}
	}

	placed := make([]bool, n)
	g.order = make([]int, 0, n)
	for len(g.order) < n {
		next := -1
		for i := 0; i < n; i++ {
			if !placed[i] && indeg[i] <= 0 {
				next = i
				break
			}
		}
		if next < 0 {
			for i := 0; i < n; i++ {
				if !placed[i] {
					next = i
					break
				}
			}
		}
		placed[next] = true
		g.order = append(g.order, next)
		for _, d := range downstream[next] {
			indeg[d]--
		}
	}
}

// rankAndAttribute assigns a column rank and a lane to every stage, walking
// the topological order so that upstream stages are always resolved first.
func (g *graph) rankAndAttribute() {
	n := len(g.stages)
	g.rank = make([]int, n)
	g.lane = make([]string, n)
	g.fallback = make([]bool, n)

	done := make([]bool, n)
	for _, i := range g.order {
		s := g.stages[i]
		first := -1
		for _, u := range g.upstream[i] {
			if !done[u] {
				// back edge of a broken cycle
				continue
			}
			if first < 0 {
				first = u
			}
			g.rank[i] = max(g.rank[i], g.rank[u]+1)
		}

		switch {
		case first >= 0:
			g.lane[i], g.fallback[i] = g.lane[first], g.fallback[first]
		case len(s.UpstreamNames()) > 0:
			g.fallback[i] = true
		case s.Spec.Subscriptions.Warehouse != "":
			g.lane[i] = s.Spec.Subscriptions.Warehouse
		default:
			g.fallback[i] = true
		}
		done[i] = true
	}
}

// lanes groups stages by lane: known warehouses in input order, then
// warehouses referenced by stages but unknown, then the fallback lane.
func (g *graph) lanes() []Lane {
	lanes := make([]Lane, 0, len(g.warehouses)+1)
	pos := make(map[string]int)
	for _, w := range g.warehouses {
		pos[w.Name] = len(lanes)
		lanes = append(lanes, Lane{Warehouse: w.Name, Stages: []string{}})
	}

	var fallback []string
	for _, i := range g.order {
		name := g.stages[i].Name
		if g.fallback[i] {
			fallback = append(fallback, name)
			continue
		}
		p, ok := pos[g.lane[i]]
		if !ok {
			p = len(lanes)
			pos[g.lane[i]] = p
			lanes = append(lanes, Lane{Warehouse: g.lane[i], Stages: []string{}})
		}
		lanes[p].Stages = append(lanes[p].Stages, name)
	}
	if len(fallback) > 0 {
		lanes = append(lanes, Lane{Fallback: true, Stages: fallback})
	}
	return lanes
}

func (g *graph) sortedStages() []domain.Stage {
	out := make([]domain.Stage, len(g.order))
	for k, i := range g.order {
		out[k] = g.stages[i]
	}
	return out
}

func (g *graph) sortedNames() []string {
	out := make([]string, len(g.order))
	for k, i := range g.order {
		out[k] = g.stages[i].Name
	}
	return out
}
