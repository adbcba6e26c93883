package store

import (
	"github.com/soundprediction/kgraph/pkg/types"
)

// Tx is a read-only view of the store valid only inside Read. Values are
// returned without copying and must not be modified or retained.
type Tx interface {
	Node(id string) (types.Node, bool)
	Edge(id string) (types.Edge, bool)
	// EdgeIDs lists every edge id in ascending order.
	EdgeIDs() []string
	// NodeIDs lists every node id in ascending order.
	NodeIDs() []string
	// Out returns the outgoing edges of id, bidirectional edges included.
	Out(id string) []types.Edge
	// In returns the incoming edges of id, bidirectional edges included.
	In(id string) []types.Edge
	NodesByLabel(label string) []string
}

type readTx struct{ s *Store }

// Read runs fn under a single read lock so that a multi-step read such as a
// query or traversal sees one consistent state.
func (s *Store) Read(fn func(tx Tx)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(readTx{s: s})
}

func (t readTx) Node(id string) (types.Node, bool) {
	n, ok := t.s.nodes[id]
	return n, ok
}

func (t readTx) Edge(id string) (types.Edge, bool) {
	e, ok := t.s.edges[id]
	return e, ok
}

func (t readTx) EdgeIDs() []string { return sortedKeys(t.s.edges) }

func (t readTx) NodeIDs() []string { return sortedKeys(t.s.nodes) }

func (t readTx) Out(id string) []types.Edge { return t.edges(t.s.outIndex[id]) }

func (t readTx) In(id string) []types.Edge { return t.edges(t.s.inIndex[id]) }

func (t readTx) NodesByLabel(label string) []string { return sortedKeys(t.s.labelIndex[label]) }

func (t readTx) edges(set idSet) []types.Edge {
	out := make([]types.Edge, 0, len(set))
	for _, id := range sortedKeys(set) {
		out = append(out, t.s.edges[id])
	}
	return out
}
