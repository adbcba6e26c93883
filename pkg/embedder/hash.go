package embedder

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/soundprediction/kgraph/pkg/utils"
)

// DefaultHashDimensions is the vector size of a HashEmbedder built with no
// explicit size.
const DefaultHashDimensions = 128

// HashEmbedder embeds text by hashing lowercase tokens into a fixed number
// of buckets and L2-normalizing the counts. Texts sharing words get
// positive cosine similarity; it needs no model or network.
type HashEmbedder struct {
	dims int
}

func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = DefaultHashDimensions
	}
	return &HashEmbedder{dims: dims}
}

func (h *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.embed(text)
	}
	return out, nil
}

func (h *HashEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return embedSingle(ctx, h, text)
}

func (h *HashEmbedder) Dimensions() int { return h.dims }

func (h *HashEmbedder) Close() error { return nil }

func (h *HashEmbedder) embed(text string) []float32 {
	v := make([]float32, h.dims)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		f := fnv.New32a()
		_, _ = f.Write([]byte(tok))
		v[f.Sum32()%uint32(h.dims)]++
	}
	return utils.Normalize(v)
}
