package store

import (
	"github.com/soundprediction/kgraph/pkg/types"
)

func addTo[K comparable](index map[K]idSet, key K, id string) {
	set, ok := index[key]
	if !ok {
		set = make(idSet)
		index[key] = set
	}
	set[id] = struct{}{}
}

// removeFrom drops id from the bucket and deletes the bucket once empty, so
// that no index key outlives the entities it names.
func removeFrom[K comparable](index map[K]idSet, key K, id string) {
	set, ok := index[key]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(index, key)
	}
}

func (s *Store) indexNode(n types.Node) {
	addTo(s.labelIndex, n.Label, n.ID)
	addTo(s.typeIndex, n.Type, n.ID)
}

func (s *Store) unindexNode(n types.Node) {
	removeFrom(s.labelIndex, n.Label, n.ID)
	removeFrom(s.typeIndex, n.Type, n.ID)
}

// indexEdge records forward adjacency, plus the reverse direction for
// bidirectional edges.
func (s *Store) indexEdge(e types.Edge) {
	addTo(s.outIndex, e.From, e.ID)
	addTo(s.inIndex, e.To, e.ID)
	if e.Bidirectional {
		addTo(s.outIndex, e.To, e.ID)
		addTo(s.inIndex, e.From, e.ID)
	}
	addTo(s.edgeTypeIndex, e.Type, e.ID)
}

func (s *Store) unindexEdge(e types.Edge) {
	removeFrom(s.outIndex, e.From, e.ID)
	removeFrom(s.inIndex, e.To, e.ID)
	if e.Bidirectional {
		removeFrom(s.outIndex, e.To, e.ID)
		removeFrom(s.inIndex, e.From, e.ID)
	}
	removeFrom(s.edgeTypeIndex, e.Type, e.ID)
}

// rebuildIndices recomputes every index from the primary maps.
func (s *Store) rebuildIndices() {
	s.labelIndex = make(map[string]idSet)
	s.typeIndex = make(map[types.NodeType]idSet)
	s.outIndex = make(map[string]idSet)
	s.inIndex = make(map[string]idSet)
	s.edgeTypeIndex = make(map[types.EdgeType]idSet)
	for _, n := range s.nodes {
		s.indexNode(n)
	}
	for _, e := range s.edges {
		s.indexEdge(e)
	}
}

func (s *Store) nodesIn(set idSet) []types.Node {
	out := make([]types.Node, 0, len(set))
	for _, id := range sortedKeys(set) {
		if n, ok := s.nodes[id]; ok {
			out = append(out, n.Clone())
		}
	}
	return out
}

func (s *Store) edgesIn(set idSet) []types.Edge {
	out := make([]types.Edge, 0, len(set))
	for _, id := range sortedKeys(set) {
		if e, ok := s.edges[id]; ok {
			out = append(out, e.Clone())
		}
	}
	return out
}

// NodesByType returns the nodes of the given type.
func (s *Store) NodesByType(t types.NodeType) []types.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodesIn(s.typeIndex[t])
}

// NodesByLabel returns the nodes whose label equals label exactly.
func (s *Store) NodesByLabel(label string) []types.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodesIn(s.labelIndex[label])
}

// EdgesFrom returns the outgoing edges of a node, including bidirectional
// edges where the node is the target.
func (s *Store) EdgesFrom(id string) []types.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edgesIn(s.outIndex[id])
}

// EdgesTo returns the incoming edges of a node, including bidirectional
// edges where the node is the source.
func (s *Store) EdgesTo(id string) []types.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edgesIn(s.inIndex[id])
}

// EdgesBetween returns the edges stored from one node to another.
func (s *Store) EdgesBetween(from, to string) []types.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Edge
	for _, id := range sortedKeys(s.outIndex[from]) {
		e := s.edges[id]
		if e.From == from && e.To == to {
			out = append(out, e.Clone())
		}
	}
	return out
}

// EdgesByType returns the edges of the given type.
func (s *Store) EdgesByType(t types.EdgeType) []types.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edgesIn(s.edgeTypeIndex[t])
}
