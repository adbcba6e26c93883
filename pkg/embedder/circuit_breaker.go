package embedder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/soundprediction/kgraph/pkg/alert"
	"github.com/soundprediction/kgraph/pkg/config"
)

// CircuitBreakerClient wraps a Client with circuit breaking logic
type CircuitBreakerClient struct {
	client  Client
	cb      *gobreaker.CircuitBreaker
	alerter alert.Alerter
	name    string
}

// NewCircuitBreakerClient creates a new circuit breaker client. The breaker
// opens once at least three requests were seen in the interval and the
// failure ratio reaches cfg.ReadyToTripRatio.
func NewCircuitBreakerClient(client Client, cfg config.CircuitBreakerConfig, alerter alert.Alerter, name string, logger *slog.Logger) *CircuitBreakerClient {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "circuit_breaker", "breaker", name)
	if alerter == nil {
		alerter = &alert.NoOpAlerter{}
	}

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "from", from.String(), "to", to.String())
			if to == gobreaker.StateOpen {
				msg := fmt.Sprintf("Circuit Breaker '%s' changed status from %s to %s. Too many failures detected.", name, from, to)
				if err := alerter.Alert(fmt.Sprintf("URGENT: Circuit Breaker Tripped - %s", name), msg); err != nil {
					logger.Error("Failed to send alert", "error", err)
				}
			}
		},
	}

	return &CircuitBreakerClient{
		client:  client,
		cb:      gobreaker.NewCircuitBreaker(st),
		alerter: alerter,
		name:    name,
	}
}

// Embed implements Client
func (c *CircuitBreakerClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.Embed(ctx, texts)
	})
	if err != nil {
		return nil, err
	}
	return resp.([][]float32), nil
}

// EmbedSingle implements Client
func (c *CircuitBreakerClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return embedSingle(ctx, c, text)
}

// State reports the breaker state: closed, half-open or open.
func (c *CircuitBreakerClient) State() string {
	return c.cb.State().String()
}

func (c *CircuitBreakerClient) Dimensions() int { return c.client.Dimensions() }

// Close implements Client
func (c *CircuitBreakerClient) Close() error {
	return c.client.Close()
}
