package algo

const (
	DefaultDamping    = 0.85
	DefaultIterations = 100
)

// PageRank runs a fixed number of power iterations. Every node appearing in
// g starts at 1/N; the rank of nodes without successors is spread evenly
// over all nodes so the total stays 1. Non-positive arguments select the
// defaults.
func PageRank(g Graph, damping float64, iterations int) map[string]float64 {
	if damping <= 0 || damping >= 1 {
		damping = DefaultDamping
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	nodes := g.Nodes()
	n := len(nodes)
	rank := make(map[string]float64, n)
	if n == 0 {
		return rank
	}
	for _, id := range nodes {
		rank[id] = 1.0 / float64(n)
	}

	for it := 0; it < iterations; it++ {
		var sink float64
		incoming := make(map[string]float64, n)
		for _, id := range nodes {
			nbrs := g[id]
			if len(nbrs) == 0 {
				sink += rank[id]
				continue
			}
			share := rank[id] / float64(len(nbrs))
			for _, to := range nbrs {
				incoming[to] += share
			}
		}
		next := make(map[string]float64, n)
		for _, id := range nodes {
			next[id] = (1-damping)/float64(n) + damping*(incoming[id]+sink/float64(n))
		}
		rank = next
	}
	return rank
}

// Betweenness computes betweenness centrality with Brandes' algorithm over
// directed, unweighted adjacency. Scores are normalized by (n-1)(n-2) when
// there are more than two nodes.
func Betweenness(g Graph) map[string]float64 {
	nodes := g.Nodes()
	cb := make(map[string]float64, len(nodes))
	for _, v := range nodes {
		cb[v] = 0
	}

	for _, s := range nodes {
		var stack []string
		pred := make(map[string][]string)
		sigma := map[string]float64{s: 1}
		dist := map[string]int{s: 0}
		queue := []string{s}

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for _, w := range g[v] {
				if _, seen := dist[w]; !seen {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					pred[w] = append(pred[w], v)
				}
			}
		}

		delta := make(map[string]float64)
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range pred[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != s {
				cb[w] += delta[w]
			}
		}
	}

	if n := len(nodes); n > 2 {
		norm := float64((n - 1) * (n - 2))
		for v := range cb {
			cb[v] /= norm
		}
	}
	return cb
}

// Closeness computes (reachable-1) / sum of BFS distances for every node.
// Nodes that reach nothing score 0.
func Closeness(g Graph) map[string]float64 {
	out := make(map[string]float64)
	for _, s := range g.Nodes() {
		dist := map[string]int{s: 0}
		queue := []string{s}
		total := 0
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			for _, w := range g[v] {
				if _, seen := dist[w]; !seen {
					dist[w] = dist[v] + 1
					total += dist[w]
					queue = append(queue, w)
				}
			}
		}
		if total > 0 {
			out[s] = float64(len(dist)-1) / float64(total)
		} else {
			out[s] = 0
		}
	}
	return out
}
