package embedder

import (
	"context"
	"fmt"

	embedeverything "github.com/soundprediction/go-embedeverything/pkg/embedder"
)

const defaultLocalModel = "sentence-transformers/all-MiniLM-L6-v2"

// EmbedEverythingClient implements Client with a local model loaded by
// go-embedeverything.
type EmbedEverythingClient struct {
	client *embedeverything.Embedder
	config *EmbedEverythingConfig
}

// EmbedEverythingConfig extends Config with EmbedEverything-specific settings.
type EmbedEverythingConfig struct {
	*Config
}

// NewEmbedEverythingClient loads the configured model.
func NewEmbedEverythingClient(config *EmbedEverythingConfig) (*EmbedEverythingClient, error) {
	if config == nil || config.Config == nil {
		config = &EmbedEverythingConfig{Config: &Config{}}
	}
	if config.Model == "" {
		config.Model = defaultLocalModel
	}
	if config.Dimensions <= 0 {
		config.Dimensions = 384
	}

	client, err := embedeverything.NewEmbedder(config.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return &EmbedEverythingClient{client: client, config: config}, nil
}

// Embed generates embeddings for the given texts. The underlying library
// takes no context, so cancellation is only checked before the call.
func (e *EmbedEverythingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	embeddings, err := e.client.Embed(texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	return embeddings, nil
}

func (e *EmbedEverythingClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return embedSingle(ctx, e, text)
}

func (e *EmbedEverythingClient) Dimensions() int {
	return e.config.Dimensions
}

func (e *EmbedEverythingClient) Close() error {
	e.client.Close()
	return nil
}
