package embedder

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/soundprediction/kgraph/pkg/utils"
)

const (
	defaultOpenAIModel      = string(openai.SmallEmbedding3)
	defaultOpenAIDimensions = 1536
	defaultOpenAIBatchSize  = 100
)

// OpenAIEmbedder implements Client for OpenAI and OpenAI-compatible
// embedding endpoints.
type OpenAIEmbedder struct {
	client *openai.Client
	config Config
}

// NewOpenAIEmbedder creates an OpenAI embedding client. A custom BaseURL
// selects an OpenAI-compatible service; "/v1" is appended when missing.
func NewOpenAIEmbedder(apiKey string, config Config) *OpenAIEmbedder {
	var client *openai.Client
	if config.BaseURL != "" {
		// Some compatible services accept any key.
		if apiKey == "" {
			apiKey = "dummy-key"
		}
		clientConfig := openai.DefaultConfig(apiKey)
		clientConfig.BaseURL = strings.TrimRight(config.BaseURL, "/")
		if !strings.HasSuffix(clientConfig.BaseURL, "/v1") {
			clientConfig.BaseURL += "/v1"
		}
		client = openai.NewClientWithConfig(clientConfig)
	} else {
		client = openai.NewClient(apiKey)
	}

	if config.Model == "" {
		config.Model = defaultOpenAIModel
	}
	if config.Dimensions <= 0 {
		config.Dimensions = defaultOpenAIDimensions
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaultOpenAIBatchSize
	}
	return &OpenAIEmbedder{client: client, config: config}
}

// Embed sends texts in batches of at most BatchSize.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, batch := range utils.Batches(texts, e.config.BatchSize) {
		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: batch,
			Model: openai.EmbeddingModel(e.config.Model),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create embeddings: %w", err)
		}
		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrNoEmbeddings, len(batch), len(resp.Data))
		}
		vectors := make([][]float32, len(batch))
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(vectors) {
				return nil, fmt.Errorf("embedding index %d out of range", d.Index)
			}
			vectors[d.Index] = d.Embedding
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (e *OpenAIEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return embedSingle(ctx, e, text)
}

func (e *OpenAIEmbedder) Dimensions() int { return e.config.Dimensions }

func (e *OpenAIEmbedder) Close() error { return nil }
