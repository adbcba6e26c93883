package store

import (
	"sort"
	"strings"

	"github.com/soundprediction/kgraph/pkg/types"
)

// Data returns a deep copy of the whole graph, ordered by id.
func (s *Store) Data() *types.GraphData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return graphData("", s.nodes, s.edges)
}

// Replace discards the current nodes and edges and loads data in their
// place. Stored timestamps are kept; missing ids are generated.
// Snapshots are not affected.
func (s *Store) Replace(data *types.GraphData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	if data == nil {
		return
	}
	for _, n := range data.Nodes {
		n = n.Clone()
		if n.ID == "" {
			n.ID = s.newID()
		}
		if n.Type == "" {
			n.Type = types.EntityNode
		}
		s.nodes[n.ID] = n
	}
	for _, e := range data.Edges {
		e = e.Clone()
		if e.ID == "" {
			e.ID = s.newID()
		}
		if e.Type == "" {
			e.Type = types.RelatedTo
		}
		s.edges[e.ID] = e
	}
	s.rebuildIndices()
}

// Merge copies the nodes and edges of other whose ids are not present in s.
// Existing entries are left untouched. It returns the number of nodes and
// edges added.
func (s *Store) Merge(other *Store) (nodesAdded, edgesAdded int) {
	if other == nil || other == s {
		return 0, 0
	}
	data := other.Data()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range data.Nodes {
		if _, exists := s.nodes[n.ID]; exists {
			continue
		}
		s.nodes[n.ID] = n
		s.indexNode(n)
		nodesAdded++
	}
	for _, e := range data.Edges {
		if _, exists := s.edges[e.ID]; exists {
			continue
		}
		s.edges[e.ID] = e
		s.indexEdge(e)
		edgesAdded++
	}
	s.logger.Debug("Merged graph", "nodes_added", nodesAdded, "edges_added", edgesAdded)
	return nodesAdded, edgesAdded
}

// InducedSubgraph returns the listed nodes that exist and every edge with
// both endpoints among them.
func (s *Store) InducedSubgraph(ids []string) types.Subgraph {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make(idSet, len(ids))
	var sub types.Subgraph
	for _, id := range ids {
		if _, dup := members[id]; dup {
			continue
		}
		if n, ok := s.nodes[id]; ok {
			members[id] = struct{}{}
			sub.Nodes = append(sub.Nodes, n.Clone())
		}
	}
	for _, id := range sortedKeys(members) {
		for _, eid := range sortedKeys(s.outIndex[id]) {
			e := s.edges[eid]
			if e.From != id {
				continue
			}
			if _, ok := members[e.To]; ok {
				sub.Edges = append(sub.Edges, e.Clone())
			}
		}
	}
	return sub
}

// SearchNodes scores labels case-insensitively against query: exact match
// 1.0, label containing query 0.8, query containing label 0.6. Results are
// ordered by descending score with ties in id order, truncated to limit
// when limit is positive.
func (s *Store) SearchNodes(query string, limit int) []types.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	type scored struct {
		node  types.Node
		score float64
	}
	var hits []scored
	for _, id := range sortedKeys(s.nodes) {
		n := s.nodes[id]
		label := strings.ToLower(n.Label)
		var score float64
		switch {
		case label == q:
			score = 1.0
		case strings.Contains(label, q):
			score = 0.8
		case label != "" && strings.Contains(q, label):
			score = 0.6
		}
		if score > 0 {
			hits = append(hits, scored{node: n, score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]types.Node, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.node.Clone())
	}
	return out
}
