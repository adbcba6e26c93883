package community

import (
	"math/rand"

	"github.com/soundprediction/kgraph/pkg/algo"
)

const maxLabelPropagationPasses = 10

// LabelPropagation assigns every node its own label, then repeatedly visits
// nodes in shuffled order and adopts the label most frequent among their
// neighbors. Ties go to the label seen first in adjacency order. It stops
// after a pass with no change or after ten passes. A nil rng visits nodes in
// sorted order.
func LabelPropagation(g algo.Graph, rng *rand.Rand) [][]string {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return nil
	}

	// Initialize each node to its own community
	labels := make(map[string]string, len(nodes))
	for _, id := range nodes {
		labels[id] = id
	}

	order := append([]string(nil), nodes...)
	for pass := 0; pass < maxLabelPropagationPasses; pass++ {
		if rng != nil {
			rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		changed := false
		for _, id := range order {
			neighbors := g[id]
			if len(neighbors) == 0 {
				continue
			}

			counts := make(map[string]int, len(neighbors))
			var seen []string
			for _, n := range neighbors {
				l := labels[n]
				if counts[l] == 0 {
					seen = append(seen, l)
				}
				counts[l]++
			}

			best := seen[0]
			for _, l := range seen[1:] {
				if counts[l] > counts[best] {
					best = l
				}
			}
			if best != labels[id] {
				labels[id] = best
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return groupByLabel(labels)
}
