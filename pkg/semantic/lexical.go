package semantic

import (
	"context"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/soundprediction/kgraph/pkg/types"
	"github.com/soundprediction/kgraph/pkg/utils"
)

// Thresholds used by the lexical helpers.
const (
	DefaultSimilarThreshold = 0.7
	ResolveThreshold        = 0.8
	propertyDiscount        = 0.8
)

// StringSimilarity compares two strings case-insensitively. Equal strings
// score 1, containment of one in the other scores 0.8, and anything else
// scores one minus the edit distance over the longer length. An empty
// input scores 0.
func StringSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return 1
	}
	if strings.Contains(la, lb) || strings.Contains(lb, la) {
		return 0.8
	}
	maxLen := max(len([]rune(la)), len([]rune(lb)))
	return 1 - float64(levenshtein.Distance(la, lb, nil))/float64(maxLen)
}

// LexicalRanker ranks nodes by string similarity of their labels and string
// properties.
type LexicalRanker struct{}

func NewLexicalRanker() *LexicalRanker { return &LexicalRanker{} }

// Score is the best of the label similarity and the discounted similarity
// of any string property.
func (LexicalRanker) Score(query string, n types.Node) float64 {
	score := StringSimilarity(query, n.Label)
	for _, v := range n.Properties {
		if v.Kind != types.StringProperty && v.Kind != "" {
			continue
		}
		score = max(score, StringSimilarity(query, v.Str)*propertyDiscount)
	}
	return score
}

func (r LexicalRanker) Rank(ctx context.Context, query string, nodes []types.Node, topK int) ([]Scored, error) {
	items := make([]utils.ScoredItem[string], 0, len(nodes))
	for _, n := range nodes {
		if s := r.Score(query, n); s > MinScore {
			items = append(items, utils.NewScoredItem(n.ID, s))
		}
	}
	return toScored(utils.TopKByScore(items, topK)), nil
}

func (LexicalRanker) FindDuplicates(ctx context.Context, left, right []types.Node, threshold float64) ([]DuplicatePair, error) {
	return pairwise(left, right, threshold, func(i, j int) float64 {
		return StringSimilarity(left[i].Label, right[j].Label)
	}), nil
}

// FindSimilar returns the ids of nodes whose label similarity to label
// reaches threshold. A non-positive threshold selects
// DefaultSimilarThreshold.
func (LexicalRanker) FindSimilar(label string, nodes []types.Node, threshold float64) []string {
	if threshold <= 0 {
		threshold = DefaultSimilarThreshold
	}
	var out []string
	for _, n := range nodes {
		if StringSimilarity(label, n.Label) >= threshold {
			out = append(out, n.ID)
		}
	}
	return out
}

// Resolve maps a mention to the id of the most similar node, provided its
// similarity exceeds ResolveThreshold. The first node wins ties.
func (LexicalRanker) Resolve(mention string, nodes []types.Node) (string, bool) {
	var bestID string
	var best float64
	for _, n := range nodes {
		if s := StringSimilarity(mention, n.Label); s > best {
			best, bestID = s, n.ID
		}
	}
	if best > ResolveThreshold {
		return bestID, true
	}
	return "", false
}

func toScored(items []utils.ScoredItem[string]) []Scored {
	out := make([]Scored, len(items))
	for i, it := range items {
		out[i] = Scored{ID: it.Item, Score: it.Score}
	}
	return out
}
