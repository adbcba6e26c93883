package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/kgraph/pkg/types"
)

func newTestStore() *Store {
	return New(nil)
}

func node(id, label string, t types.NodeType) types.Node {
	n := types.NewNode(label, t)
	n.ID = id
	return n
}

func edge(id, from string, t types.EdgeType, to string) types.Edge {
	e := types.NewEdge(from, t, to)
	e.ID = id
	return e
}

// assertIndexConsistent checks every index entry against the primary maps
// and every stored entity against its index entries.
func assertIndexConsistent(t *testing.T, s *Store) {
	t.Helper()
	s.mu.RLock()
	defer s.mu.RUnlock()

	for label, set := range s.labelIndex {
		assert.NotEmpty(t, set, "empty label bucket %q", label)
		for id := range set {
			n, ok := s.nodes[id]
			if assert.True(t, ok, "label index names missing node %s", id) {
				assert.Equal(t, label, n.Label)
			}
		}
	}
	for nt, set := range s.typeIndex {
		assert.NotEmpty(t, set)
		for id := range set {
			n, ok := s.nodes[id]
			if assert.True(t, ok, "type index names missing node %s", id) {
				assert.Equal(t, nt, n.Type)
			}
		}
	}
	for nid, set := range s.outIndex {
		for id := range set {
			e, ok := s.edges[id]
			if assert.True(t, ok, "out index names missing edge %s", id) {
				assert.True(t, e.From == nid || (e.Bidirectional && e.To == nid))
			}
		}
	}
	for nid, set := range s.inIndex {
		for id := range set {
			e, ok := s.edges[id]
			if assert.True(t, ok, "in index names missing edge %s", id) {
				assert.True(t, e.To == nid || (e.Bidirectional && e.From == nid))
			}
		}
	}
	for id, n := range s.nodes {
		assert.Contains(t, s.labelIndex[n.Label], id)
		assert.Contains(t, s.typeIndex[n.Type], id)
	}
	for id, e := range s.edges {
		assert.Contains(t, s.outIndex[e.From], id)
		assert.Contains(t, s.inIndex[e.To], id)
		assert.Contains(t, s.edgeTypeIndex[e.Type], id)
	}
}

func TestNodeRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore()

	n := types.NewNode("Socrates", types.EntityNode)
	n.SetProperty("born", types.IntValue(-470))
	id := s.AddNode(n)
	require.NotEmpty(t, id)

	got, ok := s.GetNode(id)
	require.True(t, ok)
	assert.Equal(t, "Socrates", got.Label)
	assert.Equal(t, types.EntityNode, got.Type)
	assert.Equal(t, 1.0, got.Confidence)
	assert.True(t, got.Properties["born"].Equal(types.IntValue(-470)))
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, got.CreatedAt, got.ModifiedAt)

	got.Properties["born"] = types.IntValue(0)
	again, _ := s.GetNode(id)
	assert.True(t, again.Properties["born"].Equal(types.IntValue(-470)), "returned node must be a copy")

	_, ok = s.GetNode("missing")
	assert.False(t, ok)
}

func TestUpdateNode(t *testing.T) {
	t.Parallel()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(nil, WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))

	id := s.AddNode(node("n1", "Old", types.ConceptNode))
	before, _ := s.GetNode(id)

	updated := before
	updated.Label = "New"
	updated.Type = types.EventNode
	require.True(t, s.UpdateNode(updated))

	after, _ := s.GetNode(id)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.True(t, after.ModifiedAt.After(before.ModifiedAt))
	assert.Empty(t, s.NodesByLabel("Old"))
	assert.Len(t, s.NodesByLabel("New"), 1)
	assert.Empty(t, s.NodesByType(types.ConceptNode))
	assert.Len(t, s.NodesByType(types.EventNode), 1)

	assert.False(t, s.UpdateNode(node("ghost", "x", types.EntityNode)))
	assertIndexConsistent(t, s)
}

func TestRemoveNodeCascades(t *testing.T) {
	t.Parallel()
	s := newTestStore()
	s.AddNode(node("a", "A", types.EntityNode))
	s.AddNode(node("b", "B", types.EntityNode))
	s.AddNode(node("c", "C", types.EntityNode))
	s.AddEdge(edge("e1", "a", types.RelatedTo, "b"))
	s.AddEdge(edge("e2", "c", types.RelatedTo, "a"))
	s.AddEdge(edge("e3", "b", types.RelatedTo, "c"))

	require.True(t, s.RemoveNode("a"))
	assert.False(t, s.RemoveNode("a"))

	_, ok := s.GetEdge("e1")
	assert.False(t, ok)
	_, ok = s.GetEdge("e2")
	assert.False(t, ok)
	_, ok = s.GetEdge("e3")
	assert.True(t, ok)

	assert.Empty(t, s.EdgesFrom("a"))
	assert.Empty(t, s.EdgesTo("a"))
	assert.Empty(t, s.EdgesTo("b"))
	assert.Equal(t, 2, s.NodeCount())
	assert.Equal(t, 1, s.EdgeCount())
	assertIndexConsistent(t, s)
}

func TestRemoveNodeCascadesDanglingEdges(t *testing.T) {
	t.Parallel()
	s := newTestStore()
	s.AddNode(node("a", "A", types.EntityNode))
	s.AddEdge(edge("e1", "a", types.IsA, "nowhere"))

	require.True(t, s.RemoveNode("a"))
	assert.Equal(t, 0, s.EdgeCount())
	assertIndexConsistent(t, s)
}

func TestEdgeIndices(t *testing.T) {
	t.Parallel()
	s := newTestStore()
	s.AddNode(node("a", "A", types.EntityNode))
	s.AddNode(node("b", "B", types.EntityNode))
	s.AddEdge(edge("e1", "a", types.IsA, "b"))
	s.AddEdge(edge("e2", "a", types.PartOf, "b"))
	s.AddEdge(edge("e3", "b", types.IsA, "a"))

	assert.Len(t, s.EdgesFrom("a"), 2)
	assert.Len(t, s.EdgesTo("a"), 1)
	assert.Len(t, s.EdgesBetween("a", "b"), 2)
	assert.Len(t, s.EdgesBetween("b", "a"), 1)
	assert.Len(t, s.EdgesByType(types.IsA), 2)
	assert.Empty(t, s.EdgesByType(types.Causes))

	e, ok := s.GetEdge("e1")
	require.True(t, ok)
	assert.Equal(t, 1.0, e.Weight)
	assert.Equal(t, 1.0, e.Confidence)
	assert.False(t, e.CreatedAt.IsZero())
	assertIndexConsistent(t, s)
}

func TestBidirectionalEdgeAdjacency(t *testing.T) {
	t.Parallel()
	s := newTestStore()
	e := edge("e1", "a", types.Near, "b")
	e.Bidirectional = true
	s.AddEdge(e)

	assert.Len(t, s.EdgesFrom("a"), 1)
	assert.Len(t, s.EdgesFrom("b"), 1)
	assert.Len(t, s.EdgesTo("a"), 1)
	assert.Len(t, s.EdgesTo("b"), 1)
	assertIndexConsistent(t, s)

	require.True(t, s.RemoveEdge("e1"))
	assert.Empty(t, s.EdgesFrom("a"))
	assert.Empty(t, s.EdgesFrom("b"))
	assert.Empty(t, s.EdgesTo("a"))
	assert.Empty(t, s.EdgesTo("b"))
	assert.False(t, s.RemoveEdge("e1"))
	assertIndexConsistent(t, s)
}

func TestUpdateEdgeReindexes(t *testing.T) {
	t.Parallel()
	s := newTestStore()
	s.AddEdge(edge("e1", "a", types.IsA, "b"))

	moved := edge("e1", "c", types.PartOf, "d")
	require.True(t, s.UpdateEdge(moved))
	assert.Empty(t, s.EdgesFrom("a"))
	assert.Empty(t, s.EdgesByType(types.IsA))
	assert.Len(t, s.EdgesFrom("c"), 1)
	assert.Len(t, s.EdgesTo("d"), 1)
	assert.False(t, s.UpdateEdge(edge("ghost", "x", types.IsA, "y")))
	assertIndexConsistent(t, s)
}

func TestSearchNodes(t *testing.T) {
	t.Parallel()
	s := newTestStore()
	s.AddNode(node("1", "cat", types.EntityNode))
	s.AddNode(node("2", "Category", types.EntityNode))
	s.AddNode(node("3", "dog", types.EntityNode))
	s.AddNode(node("4", "ca", types.EntityNode))

	got := s.SearchNodes("Cat", 10)
	require.Len(t, got, 3)
	assert.Equal(t, "cat", got[0].Label)
	assert.Equal(t, "Category", got[1].Label)
	assert.Equal(t, "ca", got[2].Label)

	assert.Len(t, s.SearchNodes("cat", 1), 1)
	assert.Empty(t, s.SearchNodes("zebra", 5))
}

func TestTriples(t *testing.T) {
	t.Parallel()
	s := newTestStore()
	s.AddTriple("Socrates", "IS_A", "Human")
	s.AddTriple("Human", "is_a", "Mortal")
	s.AddTriple("Socrates", "admires", "Plato")

	assert.Equal(t, 4, s.NodeCount(), "labels are reused")
	assert.Len(t, s.Triples("", "", ""), 3)
	assert.Len(t, s.Triples("Socrates", "", ""), 2)
	assert.Len(t, s.Triples("", "IS_A", ""), 2)

	custom := s.Triples("", "admires", "")
	require.Len(t, custom, 1)
	assert.Equal(t, "Plato", custom[0].Object)
	assert.Len(t, s.Triples("", "CUSTOM", ""), 1)

	s.AddEdge(edge("dangling", "nope", types.IsA, "missing"))
	assert.Len(t, s.Triples("", "", ""), 3)
}

func TestAddTripleWithConfidence(t *testing.T) {
	t.Parallel()
	s := newTestStore()

	tests := []struct {
		name       string
		confidence float64
	}{
		{"partial", 0.7},
		{"zero", 0},
		{"full", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := s.AddTripleWithConfidence("Rain", "CAUSES", "Flood-"+tt.name, tt.confidence)
			e, ok := s.GetEdge(id)
			require.True(t, ok)
			assert.Equal(t, tt.confidence, e.Confidence)
			assert.Equal(t, 1.0, e.Weight)
		})
	}
	assert.Len(t, s.NodesByLabel("Rain"), 1)
}

func TestZeroConfidenceIsKept(t *testing.T) {
	t.Parallel()
	s := newTestStore()

	n := node("a", "A", types.EntityNode)
	n.Confidence = 0
	s.AddNode(n)
	got, ok := s.GetNode("a")
	require.True(t, ok)
	assert.Zero(t, got.Confidence)

	e := edge("e1", "a", types.IsA, "a")
	e.Confidence = 0
	e.Weight = 0
	s.AddEdge(e)
	stored, ok := s.GetEdge("e1")
	require.True(t, ok)
	assert.Zero(t, stored.Confidence)
	assert.Zero(t, stored.Weight)

	stored.Confidence = 0.5
	require.True(t, s.UpdateEdge(stored))
	stored.Confidence = 0
	require.True(t, s.UpdateEdge(stored))
	stored, _ = s.GetEdge("e1")
	assert.Zero(t, stored.Confidence, "add and update agree")
}

func TestInducedSubgraph(t *testing.T) {
	t.Parallel()
	s := newTestStore()
	for _, id := range []string{"a", "b", "c"} {
		s.AddNode(node(id, id, types.EntityNode))
	}
	s.AddEdge(edge("ab", "a", types.RelatedTo, "b"))
	s.AddEdge(edge("bc", "b", types.RelatedTo, "c"))

	sub := s.InducedSubgraph([]string{"a", "b", "missing"})
	assert.Len(t, sub.Nodes, 2)
	require.Len(t, sub.Edges, 1)
	assert.Equal(t, "ab", sub.Edges[0].ID)
}

func TestSnapshots(t *testing.T) {
	t.Parallel()
	s := newTestStore()
	s.AddNode(node("a", "A", types.EntityNode))
	s.AddNode(node("b", "B", types.EntityNode))
	bi := edge("e1", "a", types.Near, "b")
	bi.Bidirectional = true
	s.AddEdge(bi)

	id := s.CreateSnapshot("")
	list := s.ListSnapshots()
	require.Len(t, list, 1)
	assert.Equal(t, "snapshot_"+id, list[0].Name)
	assert.Equal(t, 2, list[0].NodeCount)

	s.RemoveNode("a")
	s.AddNode(node("c", "C", types.EntityNode))
	require.True(t, s.RestoreSnapshot(id))

	_, ok := s.GetNode("a")
	assert.True(t, ok)
	_, ok = s.GetNode("c")
	assert.False(t, ok)
	assert.Len(t, s.EdgesFrom("b"), 1, "bidirectional adjacency is rebuilt")
	assertIndexConsistent(t, s)

	assert.False(t, s.RestoreSnapshot("unknown"))
	data, ok := s.SnapshotData(id)
	require.True(t, ok)
	assert.Len(t, data.Nodes, 2)
	assert.True(t, s.DeleteSnapshot(id))
	assert.Empty(t, s.ListSnapshots())
}

func TestMerge(t *testing.T) {
	t.Parallel()
	a := newTestStore()
	a.AddNode(node("x", "X", types.EntityNode))

	b := newTestStore()
	b.AddNode(node("x", "Other X", types.EntityNode))
	b.AddNode(node("y", "Y", types.EntityNode))
	b.AddEdge(edge("xy", "x", types.RelatedTo, "y"))

	nodes, edges := a.Merge(b)
	assert.Equal(t, 1, nodes)
	assert.Equal(t, 1, edges)
	x, _ := a.GetNode("x")
	assert.Equal(t, "X", x.Label, "existing entries win")
	assert.Len(t, a.EdgesFrom("x"), 1)
	assertIndexConsistent(t, a)

	n, e := a.Merge(a)
	assert.Zero(t, n)
	assert.Zero(t, e)
}

func TestReplaceAndClear(t *testing.T) {
	t.Parallel()
	s := newTestStore()
	s.AddNode(node("old", "Old", types.EntityNode))
	s.CreateSnapshot("keep")

	s.Replace(&types.GraphData{
		Nodes: []types.Node{node("a", "A", types.ConceptNode), {Label: "no id"}},
		Edges: []types.Edge{edge("e", "a", types.IsA, "a")},
	})
	assert.Equal(t, 2, s.NodeCount())
	assert.Len(t, s.NodesByLabel("no id"), 1)
	assert.Len(t, s.ListSnapshots(), 1)
	assertIndexConsistent(t, s)

	s.Clear()
	assert.Zero(t, s.NodeCount())
	assert.Zero(t, s.EdgeCount())
	assert.Empty(t, s.ListSnapshots())
}

func TestStats(t *testing.T) {
	t.Parallel()
	s := newTestStore()
	s.AddNode(node("a", "A", types.EntityNode))
	s.AddNode(node("b", "B", types.EntityNode))
	s.AddNode(node("c", "C", types.ConceptNode))
	s.AddEdge(edge("ab", "a", types.IsA, "b"))
	s.AddEdge(edge("bc", "b", types.IsA, "c"))
	s.AddEdge(edge("ca", "c", types.PartOf, "a"))

	st := s.Stats()
	assert.Equal(t, 3, st.NodeCount)
	assert.Equal(t, 3, st.EdgeCount)
	assert.Equal(t, 3, st.TripleCount)
	assert.Equal(t, 2, st.NodesByType[types.EntityNode])
	assert.Equal(t, 2, st.EdgesByType[types.IsA])
	assert.InDelta(t, 1.0, st.AvgDegree, 1e-9)
	assert.InDelta(t, 1.0, st.ClusteringCoefficient, 1e-9)
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()
	s := newTestStore()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				a := s.AddNode(node(fmt.Sprintf("n-%d-%d", w, i), fmt.Sprintf("L%d", i), types.EntityNode))
				s.AddEdge(types.NewEdge(a, types.RelatedTo, fmt.Sprintf("n-%d-%d", w, (i+1)%50)))
				s.SearchNodes("L1", 5)
				s.Stats()
				if i%10 == 0 {
					s.RemoveNode(a)
				}
			}
		}(w)
	}
	wg.Wait()
	assertIndexConsistent(t, s)
}
