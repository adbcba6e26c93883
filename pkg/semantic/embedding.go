package semantic

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/soundprediction/kgraph/pkg/embedder"
	"github.com/soundprediction/kgraph/pkg/types"
	"github.com/soundprediction/kgraph/pkg/utils"
)

// DefaultCacheSize bounds the embedding cache when no size is given.
const DefaultCacheSize = 10000

// EmbeddingRanker ranks nodes by cosine similarity between the query
// embedding and node embeddings. Node embeddings come from Node.Embedding
// when it matches the client's dimensions, otherwise from the client, and
// are cached by node text.
type EmbeddingRanker struct {
	client embedder.Client
	cache  *lru.Cache[string, []float32]
	logger *slog.Logger
}

// NewEmbeddingRanker creates a ranker over client with an LRU cache of
// cacheSize entries.
func NewEmbeddingRanker(client embedder.Client, cacheSize int, logger *slog.Logger) (*EmbeddingRanker, error) {
	if client == nil {
		return nil, fmt.Errorf("embedder client is nil")
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New[string, []float32](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}
	return &EmbeddingRanker{client: client, cache: cache, logger: logger.With("component", "semantic")}, nil
}

// CacheLen reports how many embeddings are cached.
func (r *EmbeddingRanker) CacheLen() int { return r.cache.Len() }

func (r *EmbeddingRanker) Rank(ctx context.Context, query string, nodes []types.Node, topK int) ([]Scored, error) {
	if len(nodes) == 0 || topK <= 0 {
		return []Scored{}, nil
	}
	q, err := r.client.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to create query embedding: %w", err)
	}
	vectors, err := r.embedNodes(ctx, nodes)
	if err != nil {
		return nil, err
	}

	items := make([]utils.ScoredItem[string], 0, len(nodes))
	for i, n := range nodes {
		if s := utils.CosineSimilarity(q, vectors[i]); s > MinScore {
			items = append(items, utils.NewScoredItem(n.ID, s))
		}
	}
	return toScored(utils.TopKByScore(items, topK)), nil
}

func (r *EmbeddingRanker) FindDuplicates(ctx context.Context, left, right []types.Node, threshold float64) ([]DuplicatePair, error) {
	sides, err := utils.ParallelMap(ctx, 2, [][]types.Node{left, right}, r.embedNodes)
	if err != nil {
		return nil, err
	}
	lv, rv := sides[0], sides[1]
	return pairwise(left, right, threshold, func(i, j int) float64 {
		return utils.CosineSimilarity(lv[i], rv[j])
	}), nil
}

// embedNodes returns one vector per node, embedding only cache misses in a
// single client call.
func (r *EmbeddingRanker) embedNodes(ctx context.Context, nodes []types.Node) ([][]float32, error) {
	vectors := make([][]float32, len(nodes))
	var missTexts []string
	var missIdx []int
	dims := r.client.Dimensions()

	for i, n := range nodes {
		if len(n.Embedding) > 0 && len(n.Embedding) == dims {
			vectors[i] = n.Embedding
			continue
		}
		text := nodeText(n)
		if v, ok := r.cache.Get(text); ok {
			vectors[i] = v
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return vectors, nil
	}

	embedded, err := r.client.Embed(ctx, missTexts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed nodes: %w", err)
	}
	if len(embedded) != len(missTexts) {
		return nil, fmt.Errorf("%w: expected %d, got %d", embedder.ErrNoEmbeddings, len(missTexts), len(embedded))
	}
	for k, v := range embedded {
		vectors[missIdx[k]] = v
		r.cache.Add(missTexts[k], v)
	}
	r.logger.Debug("Embedded nodes", "count", len(missTexts), "cached", r.cache.Len())
	return vectors, nil
}
