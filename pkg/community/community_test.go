package community

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/kgraph/pkg/algo"
	"github.com/soundprediction/kgraph/pkg/types"
)

func twoCliques() []types.Edge {
	mk := func(from, to string, w float64) types.Edge {
		e := types.NewEdge(from, types.RelatedTo, to)
		e.Weight = w
		return e
	}
	return []types.Edge{
		mk("a", "b", 1), mk("b", "c", 1), mk("a", "c", 1),
		mk("d", "e", 1), mk("e", "f", 1), mk("d", "f", 1),
		mk("c", "d", 0.1),
	}
}

func TestLouvainSeparatesCliques(t *testing.T) {
	t.Parallel()
	clusters := Louvain(undirectedWeighted(twoCliques()))
	require.Len(t, clusters, 2)
	assert.Equal(t, []string{"a", "b", "c"}, clusters[0])
	assert.Equal(t, []string{"d", "e", "f"}, clusters[1])
}

func TestLouvainEmptyAndIsolated(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Louvain(algo.WeightedGraph{}))

	clusters := Louvain(algo.WeightedGraph{"solo": nil})
	assert.Equal(t, [][]string{{"solo"}}, clusters)
}

func TestLabelPropagationCoversAllNodes(t *testing.T) {
	t.Parallel()
	g := algo.Undirected(algo.FromEdges(twoCliques()))
	clusters := LabelPropagation(g, rand.New(rand.NewSource(7)))

	total := 0
	for _, c := range clusters {
		total += len(c)
	}
	assert.Equal(t, 6, total)
	assert.LessOrEqual(t, len(clusters), 6)
}

func TestLabelPropagationDeterministicWithSeed(t *testing.T) {
	t.Parallel()
	g := algo.Undirected(algo.FromEdges(twoCliques()))
	first := LabelPropagation(g, rand.New(rand.NewSource(42)))
	second := LabelPropagation(g, rand.New(rand.NewSource(42)))
	assert.Equal(t, first, second)
}

func TestLabelPropagationDisconnectedPairs(t *testing.T) {
	t.Parallel()
	g := algo.Undirected(algo.Graph{"a": {"b"}, "x": {"y"}})
	clusters := LabelPropagation(g, nil)
	require.Len(t, clusters, 2)
	assert.Len(t, clusters[0], 2)
	assert.Len(t, clusters[1], 2)
}

func TestBuildCommunities(t *testing.T) {
	t.Parallel()
	b := NewBuilder(nil, 1)

	communities, err := b.BuildCommunities(nil, twoCliques(), MethodLouvain)
	require.NoError(t, err)
	require.Len(t, communities, 2)
	assert.Equal(t, 0, communities[0].ID)
	assert.Equal(t, []string{"a", "b", "c"}, communities[0].Members)

	_, err = b.BuildCommunities(nil, twoCliques(), MethodLabelPropagation)
	require.NoError(t, err)

	_, err = b.BuildCommunities(nil, twoCliques(), "spectral")
	assert.Error(t, err)
}

func TestBuildCommunitiesIncludesIsolatedNodes(t *testing.T) {
	t.Parallel()
	b := NewBuilder(nil, 1)
	edges := []types.Edge{types.NewEdge("a", types.RelatedTo, "b")}

	for _, method := range []Method{MethodLouvain, MethodLabelPropagation} {
		t.Run(string(method), func(t *testing.T) {
			communities, err := b.BuildCommunities([]string{"a", "b", "solo"}, edges, method)
			require.NoError(t, err)
			require.Len(t, communities, 2)
			assert.Equal(t, []string{"a", "b"}, communities[0].Members)
			assert.Equal(t, []string{"solo"}, communities[1].Members)
		})
	}
}
