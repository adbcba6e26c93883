package utils

import (
	"container/heap"
	"math"
	"sort"
)

// CosineSimilarity calculates the cosine similarity between two float32 vectors.
// Returns 0 if vectors have different lengths, are empty, or either has zero magnitude.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Magnitude calculates the Euclidean magnitude (L2 norm) of a float32 vector.
func Magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize scales v to unit length in place and returns it. A zero vector
// is returned unchanged.
func Normalize(v []float32) []float32 {
	mag := Magnitude(v)
	if mag == 0 {
		return v
	}
	for i, x := range v {
		v[i] = float32(float64(x) / mag)
	}
	return v
}

// ScoredItem represents an item with a score for top-K selection.
type ScoredItem[T any] struct {
	Item  T
	Score float64
	seq   int
}

// NewScoredItem pairs an item with its score.
func NewScoredItem[T any](item T, score float64) ScoredItem[T] {
	return ScoredItem[T]{Item: item, Score: score}
}

// minHeap keeps the weakest of the current top K at the root. Among equal
// scores the later item is weaker.
type minHeap[T any] []ScoredItem[T]

func (h minHeap[T]) Len() int { return len(h) }
func (h minHeap[T]) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].seq > h[j].seq
}
func (h minHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *minHeap[T]) Push(x any) {
	*h = append(*h, x.(ScoredItem[T]))
}

func (h *minHeap[T]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// TopKByScore returns the K highest scoring items in descending score order.
// Ties keep their input order. It runs in O(n log k).
func TopKByScore[T any](items []ScoredItem[T], k int) []ScoredItem[T] {
	if k <= 0 || len(items) == 0 {
		return nil
	}

	if k >= len(items) {
		result := make([]ScoredItem[T], len(items))
		copy(result, items)
		sort.SliceStable(result, func(i, j int) bool { return result[i].Score > result[j].Score })
		return result
	}

	h := make(minHeap[T], 0, k)
	for i, item := range items {
		item.seq = i
		if h.Len() < k {
			heap.Push(&h, item)
		} else if item.Score > h[0].Score {
			heap.Pop(&h)
			heap.Push(&h, item)
		}
	}

	result := make([]ScoredItem[T], h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(&h).(ScoredItem[T])
	}
	return result
}
