package community

import (
	"github.com/soundprediction/kgraph/pkg/algo"
)

const maxLouvainPasses = 100 // Prevent oscillation on symmetric ties

// Louvain runs the greedy single-level approximation: every node starts in
// its own community and repeatedly moves to the neighboring community with
// the largest total link weight, until a pass moves nobody.
func Louvain(g algo.WeightedGraph) [][]string {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return nil
	}

	communityMap := make(map[string]int, len(nodes))
	for i, id := range nodes {
		communityMap[id] = i
	}

	for pass := 0; pass < maxLouvainPasses; pass++ {
		changed := false
		for _, id := range nodes {
			weights := make(map[int]float64)
			for _, arc := range g[id] {
				if arc.To == id {
					continue
				}
				weights[communityMap[arc.To]] += arc.Weight
			}

			current := communityMap[id]
			best, bestWeight := current, 0.0
			for cid, w := range weights {
				if w > bestWeight || (w == bestWeight && w > 0 && cid < best) {
					best, bestWeight = cid, w
				}
			}
			if best != current && bestWeight > 0 {
				communityMap[id] = best
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return groupByLabel(communityMap)
}
