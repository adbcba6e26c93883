// Package community detects communities in the knowledge graph using a
// greedy single-level Louvain heuristic or asynchronous label propagation.
package community

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/soundprediction/kgraph/pkg/algo"
	"github.com/soundprediction/kgraph/pkg/types"
)

// Method selects the detection algorithm.
type Method string

const (
	MethodLouvain          Method = "louvain"
	MethodLabelPropagation Method = "label_propagation"
)

// Community is one detected cluster of node ids.
type Community struct {
	ID      int      `json:"id"`
	Members []string `json:"members"`
}

// Builder runs community detection over graph edges.
type Builder struct {
	logger *slog.Logger
	seed   int64
}

// NewBuilder creates a builder. The seed fixes the visiting order of label
// propagation so repeated runs agree.
func NewBuilder(logger *slog.Logger, seed int64) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger.With("component", "community"), seed: seed}
}

// BuildCommunities detects communities over the undirected projection of
// edges. Every id in nodeIDs takes part, so a node without edges forms its
// own community. Communities are returned largest first.
func (b *Builder) BuildCommunities(nodeIDs []string, edges []types.Edge, method Method) ([]Community, error) {
	var clusters [][]string
	switch method {
	case MethodLouvain, "":
		g := undirectedWeighted(edges)
		for _, id := range nodeIDs {
			if _, ok := g[id]; !ok {
				g[id] = nil
			}
		}
		clusters = Louvain(g)
	case MethodLabelPropagation:
		g := algo.FromEdges(edges)
		for _, id := range nodeIDs {
			if _, ok := g[id]; !ok {
				g[id] = nil
			}
		}
		clusters = LabelPropagation(algo.Undirected(g), rand.New(rand.NewSource(b.seed)))
	default:
		return nil, fmt.Errorf("unknown community method %q", method)
	}

	communities := toCommunities(clusters)
	b.logger.Debug("Detected communities", "method", method, "count", len(communities))
	return communities, nil
}

func undirectedWeighted(edges []types.Edge) algo.WeightedGraph {
	g := make(algo.WeightedGraph)
	for _, e := range edges {
		if e.From == e.To {
			continue
		}
		w := e.Weight
		if w == 0 {
			w = 1
		}
		g[e.From] = append(g[e.From], algo.Arc{To: e.To, Weight: w})
		g[e.To] = append(g[e.To], algo.Arc{To: e.From, Weight: w})
	}
	return g
}

func toCommunities(clusters [][]string) []Community {
	for _, c := range clusters {
		sort.Strings(c)
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		if len(clusters[i]) != len(clusters[j]) {
			return len(clusters[i]) > len(clusters[j])
		}
		return clusters[i][0] < clusters[j][0]
	})
	out := make([]Community, 0, len(clusters))
	for i, c := range clusters {
		out = append(out, Community{ID: i, Members: c})
	}
	return out
}

// groupByLabel turns a node to label assignment into clusters ordered by the
// smallest member id.
func groupByLabel[L comparable](assignment map[string]L) [][]string {
	groups := make(map[L][]string)
	for _, id := range sortedKeys(assignment) {
		groups[assignment[id]] = append(groups[assignment[id]], id)
	}
	clusters := make([][]string, 0, len(groups))
	for _, members := range groups {
		clusters = append(clusters, members)
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i][0] < clusters[j][0] })
	return clusters
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
