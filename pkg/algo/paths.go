package algo

import (
	"container/heap"
	"math"
	"slices"
)

type distItem struct {
	id   string
	dist float64
}

type distHeap []distItem

func (h distHeap) Len() int { return len(h) }
func (h distHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].id < h[j].id
}
func (h distHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *distHeap) Push(x any)   { *h = append(*h, x.(distItem)) }
func (h *distHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// ShortestPath returns the minimum-weight path from one node to another
// using Dijkstra's algorithm. A path from a node to itself is [from]; an
// unreachable target yields nil. Weights are assumed non-negative.
func ShortestPath(from, to string, g WeightedGraph) []string {
	if from == to {
		return []string{from}
	}

	dist := map[string]float64{from: 0}
	prev := make(map[string]string)
	done := make(map[string]bool)
	pq := &distHeap{{id: from, dist: 0}}

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(distItem)
		if done[cur.id] {
			continue
		}
		done[cur.id] = true
		if cur.id == to {
			break
		}
		for _, arc := range g[cur.id] {
			nd := cur.dist + arc.Weight
			if d, ok := dist[arc.To]; !ok || nd < d {
				dist[arc.To] = nd
				prev[arc.To] = cur.id
				heap.Push(pq, distItem{id: arc.To, dist: nd})
			}
		}
	}

	if _, ok := dist[to]; !ok {
		return nil
	}
	path := []string{to}
	for cur := to; cur != from; {
		cur = prev[cur]
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path
}

// PathWeight sums the weights along path, taking the lightest arc between
// consecutive nodes. It returns +Inf when a hop is missing.
func PathWeight(path []string, g WeightedGraph) float64 {
	var total float64
	for i := 0; i+1 < len(path); i++ {
		best := math.Inf(1)
		for _, arc := range g[path[i]] {
			if arc.To == path[i+1] && arc.Weight < best {
				best = arc.Weight
			}
		}
		if math.IsInf(best, 1) {
			return best
		}
		total += best
	}
	return total
}

// AllPaths enumerates the simple paths from one node to another with at most
// maxDepth hops.
func AllPaths(from, to string, g Graph, maxDepth int) [][]string {
	var paths [][]string
	visited := map[string]bool{from: true}
	path := []string{from}

	var dfs func(cur string, depth int)
	dfs = func(cur string, depth int) {
		if depth > maxDepth {
			return
		}
		if cur == to {
			paths = append(paths, slices.Clone(path))
			return
		}
		for _, next := range g[cur] {
			if visited[next] {
				continue
			}
			visited[next] = true
			path = append(path, next)
			dfs(next, depth+1)
			path = path[:len(path)-1]
			delete(visited, next)
		}
	}
	dfs(from, 0)
	return paths
}

// IsConnected reports whether to is reachable from from along directed
// adjacency.
func IsConnected(from, to string, g Graph) bool {
	if from == to {
		return true
	}
	visited := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g[cur] {
			if next == to {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// ConnectedComponents groups nodes by breadth-first reachability, starting
// from each unvisited source in sorted order. Edges are followed in their
// stored direction.
func ConnectedComponents(g Graph) [][]string {
	visited := make(map[string]bool)
	var components [][]string
	for _, start := range g.Keys() {
		if visited[start] {
			continue
		}
		visited[start] = true
		component := []string{start}
		queue := []string{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range g[cur] {
				if !visited[next] {
					visited[next] = true
					component = append(component, next)
					queue = append(queue, next)
				}
			}
		}
		components = append(components, component)
	}
	return components
}
