package utils

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1}, []float32{1, 2}, 0},
		{"empty", nil, nil, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	v := Normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)
	assert.InDelta(t, 1, Magnitude(v), 1e-6)
	assert.Equal(t, []float32{0, 0}, Normalize([]float32{0, 0}))
}

func TestTopKByScore(t *testing.T) {
	t.Parallel()
	items := []ScoredItem[string]{
		NewScoredItem("a", 0.2),
		NewScoredItem("b", 0.9),
		NewScoredItem("c", 0.5),
		NewScoredItem("d", 0.9),
		NewScoredItem("e", 0.1),
	}

	names := func(in []ScoredItem[string]) []string {
		out := make([]string, len(in))
		for i, it := range in {
			out[i] = it.Item
		}
		return out
	}

	assert.Equal(t, []string{"b", "d"}, names(TopKByScore(items, 2)))
	assert.Equal(t, []string{"b", "d", "c"}, names(TopKByScore(items, 3)))
	assert.Equal(t, []string{"b", "d", "c", "a", "e"}, names(TopKByScore(items, 10)))
	assert.Nil(t, TopKByScore(items, 0))
}

func TestParallelMap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	out, err := ParallelMap(ctx, 2, []int{1, 2, 3, 4}, func(_ context.Context, n int) (int, error) {
		return n * n, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 9, 16}, out)

	boom := errors.New("boom")
	_, err = ParallelMap(ctx, 0, []int{1, 2}, func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})
	assert.ErrorIs(t, err, boom)

	_, err = ParallelMap(ctx, 1, []int{1}, func(_ context.Context, n int) (float64, error) {
		var m map[string]float64
		m["x"] = math.Pi
		return 0, nil
	})
	var pe *PanicError
	assert.ErrorAs(t, err, &pe)
}

func TestBatches(t *testing.T) {
	t.Parallel()
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Batches([]int{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, [][]int{{1, 2}}, Batches([]int{1, 2}, 0))
	assert.Nil(t, Batches([]int{}, 3))
}
