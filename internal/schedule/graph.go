package schedule

import (
	"sort"

	"github.com/jonathanvila/windup/internal/provider"
)

// bucketGraph is the must-precede graph over one phase's units. Edges are
// de-duplicated; ids stay sorted so every traversal is deterministic.
type bucketGraph struct {
	ids   []string
	succ  map[string]map[string]struct{}
	indeg map[string]int
}

func newBucketGraph(units []*provider.Metadata) *bucketGraph {
	g := &bucketGraph{
		ids:   make([]string, 0, len(units)),
		succ:  make(map[string]map[string]struct{}, len(units)),
		indeg: make(map[string]int, len(units)),
	}
	for _, u := range units {
		g.ids = append(g.ids, u.ID())
		g.indeg[u.ID()] = 0
	}
	return g
}

// addEdge records "from must precede to".
func (g *bucketGraph) addEdge(from, to string) {
	set, ok := g.succ[from]
	if !ok {
		set = map[string]struct{}{}
		g.succ[from] = set
	}
	if _, dup := set[to]; dup {
		return
	}
	set[to] = struct{}{}
	g.indeg[to]++
}

// linearize produces the bucket's total order: repeatedly take the lexically
// smallest id with zero remaining in-degree. Returns the sorted residual ids
// when a cycle prevents completion.
func (g *bucketGraph) linearize() ([]string, []string) {
	indeg := make(map[string]int, len(g.ids))
	for id, d := range g.indeg {
		indeg[id] = d
	}
	ready := make([]string, 0, len(g.ids))
	for _, id := range g.ids {
		if indeg[id] == 0 {
			ready = append(ready, id)
		}
	}
	out := make([]string, 0, len(g.ids))
	placed := make(map[string]struct{}, len(g.ids))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		out = append(out, id)
		placed[id] = struct{}{}
		for succ := range g.succ[id] {
			indeg[succ]--
			if indeg[succ] == 0 {
				ready = insertSorted(ready, succ)
			}
		}
	}
	if len(out) == len(g.ids) {
		return out, nil
	}
	residual := make([]string, 0, len(g.ids)-len(out))
	for _, id := range g.ids {
		if _, ok := placed[id]; !ok {
			residual = append(residual, id)
		}
	}
	return nil, residual
}

// batches decomposes the bucket into successive sets of mutually
// unconstrained units, each sorted by id. Only valid once linearize has
// proven the graph acyclic.
func (g *bucketGraph) batches() [][]string {
	indeg := make(map[string]int, len(g.ids))
	for id, d := range g.indeg {
		indeg[id] = d
	}
	current := make([]string, 0, len(g.ids))
	for _, id := range g.ids {
		if indeg[id] == 0 {
			current = append(current, id)
		}
	}
	var out [][]string
	for len(current) > 0 {
		out = append(out, current)
		var next []string
		for _, id := range current {
			for succ := range g.succ[id] {
				indeg[succ]--
				if indeg[succ] == 0 {
					next = append(next, succ)
				}
			}
		}
		sort.Strings(next)
		current = next
	}
	return out
}

func insertSorted(sorted []string, value string) []string {
	pos := sort.SearchStrings(sorted, value)
	sorted = append(sorted, "")
	copy(sorted[pos+1:], sorted[pos:])
	sorted[pos] = value
	return sorted
}
