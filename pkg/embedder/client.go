package embedder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soundprediction/kgraph/pkg/alert"
	"github.com/soundprediction/kgraph/pkg/config"
)

// Client produces vector embeddings for text.
type Client interface {
	// Embed returns one embedding per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Close() error
}

// Config holds the settings shared by embedding clients.
type Config struct {
	Model      string `json:"model"`
	BaseURL    string `json:"base_url,omitempty"`
	Dimensions int    `json:"dimensions,omitempty"`
	// BatchSize caps the texts sent per provider request.
	BatchSize int `json:"batch_size,omitempty"`
}

var (
	ErrNoEmbeddings    = errors.New("no embeddings returned")
	ErrUnknownProvider = errors.New("unknown embedding provider")
)

// New builds the client named by cfg.Provider and wraps it with a circuit
// breaker when cbCfg enables one.
func New(cfg config.EmbeddingConfig, cbCfg config.CircuitBreakerConfig, alerter alert.Alerter, logger *slog.Logger) (Client, error) {
	var (
		client Client
		err    error
	)
	switch cfg.Provider {
	case "", "hash":
		client = NewHashEmbedder(cfg.Dimensions)
	case "openai":
		client = NewOpenAIEmbedder(cfg.APIKey, Config{Model: cfg.Model, BaseURL: cfg.BaseURL, Dimensions: cfg.Dimensions})
	case "embedeverything":
		client, err = NewEmbedEverythingClient(&EmbedEverythingConfig{
			Config: &Config{Model: cfg.Model, Dimensions: cfg.Dimensions},
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cbCfg.Enabled && cfg.Provider != "" && cfg.Provider != "hash" {
		client = NewCircuitBreakerClient(client, cbCfg, alerter, "embedder-"+cfg.Provider, logger)
	}
	return client, nil
}

func embedSingle(ctx context.Context, c Client, text string) ([]float32, error) {
	embeddings, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, ErrNoEmbeddings
	}
	return embeddings[0], nil
}
