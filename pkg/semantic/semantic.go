// Package semantic ranks nodes against free text, finds near-duplicate
// nodes and extracts simple relations from sentences.
//
// Two rankers are provided. LexicalRanker scores labels with case
// insensitive string similarity and needs nothing else. EmbeddingRanker
// scores cosine similarity between embeddings from an embedder.Client.
package semantic

import (
	"context"
	"sort"
	"strings"

	"github.com/soundprediction/kgraph/pkg/types"
)

// Scored is a node id with its relevance score.
type Scored struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// DuplicatePair names two nodes judged to describe the same thing.
type DuplicatePair struct {
	Left  string  `json:"left"`
	Right string  `json:"right"`
	Score float64 `json:"score"`
}

// Ranker is the ranking oracle used by semantic search and duplicate
// detection.
type Ranker interface {
	// Rank returns at most topK node ids ordered by descending score.
	Rank(ctx context.Context, query string, nodes []types.Node, topK int) ([]Scored, error)
	// FindDuplicates compares every left node with every right node. A node
	// is never paired with itself and each unordered pair appears once.
	FindDuplicates(ctx context.Context, left, right []types.Node, threshold float64) ([]DuplicatePair, error)
}

// MinScore is the score a ranked node must exceed to be returned.
const MinScore = 0.1

// nodeText joins the label and the string values of a node's properties in
// key order.
func nodeText(n types.Node) string {
	keys := make([]string, 0, len(n.Properties))
	for k := range n.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := []string{n.Label}
	for _, k := range keys {
		parts = append(parts, n.Properties[k].String())
	}
	return strings.Join(parts, " ")
}

// pairwise applies score to every left/right combination and keeps those
// reaching threshold.
func pairwise(left, right []types.Node, threshold float64, score func(i, j int) float64) []DuplicatePair {
	var out []DuplicatePair
	seen := make(map[[2]string]struct{})
	for i, l := range left {
		for j, r := range right {
			if l.ID == r.ID {
				continue
			}
			if _, dup := seen[[2]string{r.ID, l.ID}]; dup {
				continue
			}
			s := score(i, j)
			if s < threshold {
				continue
			}
			seen[[2]string{l.ID, r.ID}] = struct{}{}
			out = append(out, DuplicatePair{Left: l.ID, Right: r.ID, Score: s})
		}
	}
	return out
}
