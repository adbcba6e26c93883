package algo

import "math"

// Jaccard returns |a ∩ b| / |a ∪ b| over the distinct members of a and b,
// or 0 when both are empty.
func Jaccard(a, b []string) float64 {
	setA, setB := toSet(a), toSet(b)
	union := len(setA)
	inter := 0
	for x := range setB {
		if _, ok := setA[x]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// AdamicAdar sums 1/ln(degree) over the common neighbors of two nodes,
// skipping neighbors of degree one or less.
func AdamicAdar(a, b string, g Graph) float64 {
	nbrsB := toSet(g[b])
	var score float64
	for c := range toSet(g[a]) {
		if _, ok := nbrsB[c]; !ok {
			continue
		}
		if deg := len(toSet(g[c])); deg > 1 {
			score += 1 / math.Log(float64(deg))
		}
	}
	return score
}

// ClusteringCoefficient returns the fraction of neighbor pairs of node that
// are themselves linked. Nodes with fewer than two neighbors score 0.
func ClusteringCoefficient(node string, g Graph) float64 {
	nbrs := sortedSet(toSet(g[node]))
	k := len(nbrs)
	if k < 2 {
		return 0
	}
	links := 0
	for i := 0; i < k; i++ {
		adj := toSet(g[nbrs[i]])
		for j := i + 1; j < k; j++ {
			if _, ok := adj[nbrs[j]]; ok {
				links++
				continue
			}
			if _, ok := toSet(g[nbrs[j]])[nbrs[i]]; ok {
				links++
			}
		}
	}
	return float64(links) / float64(k*(k-1)/2)
}

// GlobalClusteringCoefficient averages the non-zero local coefficients.
func GlobalClusteringCoefficient(g Graph) float64 {
	var sum float64
	count := 0
	for _, id := range g.Keys() {
		if c := ClusteringCoefficient(id, g); c > 0 {
			sum += c
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
