package store

import (
	"github.com/soundprediction/kgraph/pkg/algo"
	"github.com/soundprediction/kgraph/pkg/types"
)

// Stats summarizes the stored graph. InferredCount is left to callers that
// track inference output.
func (s *Store) Stats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := types.Stats{
		NodeCount:     len(s.nodes),
		EdgeCount:     len(s.edges),
		TripleCount:   len(s.edges),
		NodesByType:   make(map[types.NodeType]int, len(s.typeIndex)),
		EdgesByType:   make(map[types.EdgeType]int, len(s.edgeTypeIndex)),
		SnapshotCount: len(s.snapshots),
	}
	for t, set := range s.typeIndex {
		st.NodesByType[t] = len(set)
	}
	for t, set := range s.edgeTypeIndex {
		st.EdgesByType[t] = len(set)
	}
	if len(s.nodes) > 0 {
		st.AvgDegree = float64(len(s.edges)) / float64(len(s.nodes))
	}

	g := make(algo.Graph, len(s.nodes))
	for _, e := range s.edges {
		g[e.From] = append(g[e.From], e.To)
	}
	st.ClusteringCoefficient = algo.GlobalClusteringCoefficient(algo.Undirected(g))
	return st
}
