package store

import (
	"github.com/soundprediction/kgraph/pkg/types"
)

// AddTriple links two labelled entities, creating ENTITY nodes for labels
// not yet present. The predicate is parsed with types.ParseEdgeType and a
// predicate that parses to CUSTOM is kept as the edge's custom label.
// It returns the id of the new edge.
func (s *Store) AddTriple(subject, predicate, object string) string {
	return s.AddTripleWithConfidence(subject, predicate, object, 1.0)
}

// AddTripleWithConfidence is AddTriple with an explicit edge confidence,
// applied under the same lock as the insert.
func (s *Store) AddTripleWithConfidence(subject, predicate, object string, confidence float64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.findOrCreateLocked(subject)
	to := s.findOrCreateLocked(object)

	edge := types.NewEdge(from, types.ParseEdgeType(predicate), to)
	if edge.Type == types.Custom && predicate != string(types.Custom) {
		edge.CustomLabel = predicate
	}
	edge.Confidence = confidence
	return s.addEdgeLocked(edge)
}

// findOrCreateLocked returns the first node (in id order) carrying label,
// creating an entity node when there is none.
func (s *Store) findOrCreateLocked(label string) string {
	if set, ok := s.labelIndex[label]; ok && len(set) > 0 {
		return sortedKeys(set)[0]
	}
	return s.addNodeLocked(types.NewNode(label, types.EntityNode))
}

// Triples projects edges to triples. Empty arguments match anything.
// Edges whose endpoints are not stored are skipped.
func (s *Store) Triples(subject, predicate, object string) []types.Triple {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.Triple
	for _, id := range sortedKeys(s.edges) {
		e := s.edges[id]
		from, okFrom := s.nodes[e.From]
		to, okTo := s.nodes[e.To]
		if !okFrom || !okTo {
			continue
		}
		t := types.TripleFromEdge(from, e, to)
		if subject != "" && t.Subject != subject {
			continue
		}
		if predicate != "" && t.Predicate != predicate && string(e.Type) != predicate {
			continue
		}
		if object != "" && t.Object != object {
			continue
		}
		out = append(out, t)
	}
	return out
}

// TripleCount returns the number of edges, each of which projects to one
// triple.
func (s *Store) TripleCount() int {
	return s.EdgeCount()
}
