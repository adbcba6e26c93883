// Package algo implements stateless graph algorithms over adjacency maps:
// shortest and enumerated paths, PageRank, betweenness and closeness
// centrality, neighborhood similarity, clustering coefficients and
// connected components.
//
// Every function reads only its arguments. Map iteration is replaced by
// iteration over sorted keys so results are reproducible.
package algo

import (
	"slices"
	"sort"

	"github.com/soundprediction/kgraph/pkg/types"
)

// Graph maps a node id to its successor ids.
type Graph map[string][]string

// Arc is a weighted link to a successor.
type Arc struct {
	To     string
	Weight float64
}

// WeightedGraph maps a node id to its weighted successors.
type WeightedGraph map[string][]Arc

// FromEdges builds the directed adjacency of a set of edges. Bidirectional
// edges contribute both directions.
func FromEdges(edges []types.Edge) Graph {
	g := make(Graph)
	for _, e := range edges {
		g[e.From] = append(g[e.From], e.To)
		if e.Bidirectional {
			g[e.To] = append(g[e.To], e.From)
		}
	}
	return g
}

// WeightedFromEdges builds weighted adjacency restricted to allowed edge
// types. An empty allowed list admits every type.
func WeightedFromEdges(edges []types.Edge, allowed []types.EdgeType) WeightedGraph {
	g := make(WeightedGraph)
	for _, e := range edges {
		if len(allowed) > 0 && !slices.Contains(allowed, e.Type) {
			continue
		}
		g[e.From] = append(g[e.From], Arc{To: e.To, Weight: e.Weight})
		if e.Bidirectional {
			g[e.To] = append(g[e.To], Arc{To: e.From, Weight: e.Weight})
		}
	}
	return g
}

// Unweighted drops the weights of g.
func (g WeightedGraph) Unweighted() Graph {
	out := make(Graph, len(g))
	for from, arcs := range g {
		for _, a := range arcs {
			out[from] = append(out[from], a.To)
		}
	}
	return out
}

// Undirected returns the symmetric closure of g with duplicate neighbors and
// self loops removed.
func Undirected(g Graph) Graph {
	sets := make(map[string]map[string]struct{})
	add := func(a, b string) {
		if a == b {
			return
		}
		if sets[a] == nil {
			sets[a] = make(map[string]struct{})
		}
		sets[a][b] = struct{}{}
	}
	for from, nbrs := range g {
		if sets[from] == nil {
			sets[from] = make(map[string]struct{})
		}
		for _, to := range nbrs {
			add(from, to)
			add(to, from)
		}
	}
	out := make(Graph, len(sets))
	for id, set := range sets {
		nbrs := make([]string, 0, len(set))
		for n := range set {
			nbrs = append(nbrs, n)
		}
		sort.Strings(nbrs)
		out[id] = nbrs
	}
	return out
}

// Nodes returns every id appearing in g as a source or a target, sorted.
func (g Graph) Nodes() []string {
	seen := make(map[string]struct{}, len(g))
	for from, nbrs := range g {
		seen[from] = struct{}{}
		for _, to := range nbrs {
			seen[to] = struct{}{}
		}
	}
	return sortedSet(seen)
}

// Keys returns the source ids of g, sorted.
func (g Graph) Keys() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Nodes returns every id appearing in g as a source or a target, sorted.
func (g WeightedGraph) Nodes() []string {
	seen := make(map[string]struct{}, len(g))
	for from, arcs := range g {
		seen[from] = struct{}{}
		for _, a := range arcs {
			seen[a.To] = struct{}{}
		}
	}
	return sortedSet(seen)
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
