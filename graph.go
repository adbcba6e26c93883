package kgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/soundprediction/kgraph/pkg/alert"
	"github.com/soundprediction/kgraph/pkg/community"
	"github.com/soundprediction/kgraph/pkg/config"
	"github.com/soundprediction/kgraph/pkg/embedder"
	"github.com/soundprediction/kgraph/pkg/inference"
	"github.com/soundprediction/kgraph/pkg/ontology"
	"github.com/soundprediction/kgraph/pkg/persist"
	"github.com/soundprediction/kgraph/pkg/query"
	"github.com/soundprediction/kgraph/pkg/semantic"
	"github.com/soundprediction/kgraph/pkg/store"
	"github.com/soundprediction/kgraph/pkg/types"
)

var (
	// ErrVersioningDisabled is returned by snapshot creation when
	// Config.EnableVersioning is false.
	ErrVersioningDisabled = errors.New("versioning is disabled")
	// ErrSnapshotNotFound is returned when no snapshot has the given id.
	ErrSnapshotNotFound = persist.ErrSnapshotNotFound
)

// Config holds the behaviour flags of a KnowledgeGraph.
type Config struct {
	Name             string
	EnableInference  bool
	EnableVersioning bool
	// EnableProvenance keeps the producing rule id on inferred triples and
	// materialized edges.
	EnableProvenance bool
	// CacheSize bounds the embedding cache of an EmbeddingRanker.
	CacheSize int
	// InferenceDepth is the forward chaining iteration cap.
	InferenceDepth int
	// StoragePath is used by Save and Load when no path is given.
	StoragePath string
	// Namespace prefixes exported resources.
	Namespace string
}

// DefaultConfig returns the defaults: everything enabled, a cache of 10000
// embeddings and three rounds of forward chaining.
func DefaultConfig() *Config {
	return &Config{
		Name:             "default",
		EnableInference:  true,
		EnableVersioning: true,
		EnableProvenance: true,
		CacheSize:        semantic.DefaultCacheSize,
		InferenceDepth:   3,
	}
}

// Option configures optional collaborators of a KnowledgeGraph.
type Option func(*KnowledgeGraph)

// WithRanker replaces the lexical ranker used by semantic search.
func WithRanker(r semantic.Ranker) Option {
	return func(kg *KnowledgeGraph) { kg.ranker = r }
}

// WithSnapshotStore persists snapshots in Badger in addition to memory.
func WithSnapshotStore(s *persist.BadgerStore) Option {
	return func(kg *KnowledgeGraph) { kg.snapshots = s }
}

// WithOntology replaces the empty ontology created by New.
func WithOntology(o *ontology.Ontology) Option {
	return func(kg *KnowledgeGraph) { kg.ontology = o }
}

// WithStoreOptions passes options to the underlying store.
func WithStoreOptions(opts ...store.Option) Option {
	return func(kg *KnowledgeGraph) { kg.storeOpts = append(kg.storeOpts, opts...) }
}

// KnowledgeGraph composes the store, the query and inference engines, the
// ontology and the semantic, export and persistence collaborators.
type KnowledgeGraph struct {
	config    *Config
	logger    *slog.Logger
	storeOpts []store.Option

	store       *store.Store
	query       *query.Engine
	inference   *inference.Engine
	ontology    *ontology.Ontology
	ranker      semantic.Ranker
	communities *community.Builder
	files       *persist.FileStore
	snapshots   *persist.BadgerStore
	embedder    embedder.Client

	mu       sync.RWMutex
	inferred []types.Triple
}

// New creates an empty knowledge graph. A nil config selects
// DefaultConfig.
func New(cfg *Config, logger *slog.Logger, opts ...Option) *KnowledgeGraph {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	kg := &KnowledgeGraph{
		config:      cfg,
		logger:      logger.With("component", "kgraph", "graph", cfg.Name),
		inference:   inference.New(logger),
		communities: community.NewBuilder(logger, 42),
		files:       persist.NewFileStore(logger),
		ranker:      semantic.NewLexicalRanker(),
	}
	for _, opt := range opts {
		opt(kg)
	}
	if kg.ontology == nil {
		kg.ontology = ontology.New(cfg.Namespace, logger)
	}
	kg.store = store.New(logger, kg.storeOpts...)
	kg.query = query.NewEngine(kg.store, logger)
	return kg
}

// ConfigFrom maps the graph and storage sections of application
// configuration onto a graph Config.
func ConfigFrom(cfg *config.Config) *Config {
	return &Config{
		Name:             cfg.Graph.Name,
		EnableInference:  cfg.Graph.EnableInference,
		EnableVersioning: cfg.Graph.EnableVersioning,
		EnableProvenance: cfg.Graph.EnableProvenance,
		CacheSize:        cfg.Graph.CacheSize,
		InferenceDepth:   cfg.Graph.InferenceDepth,
		StoragePath:      cfg.Storage.Path,
		Namespace:        cfg.Graph.Namespace,
	}
}

// NewFromConfig wires a knowledge graph from application configuration:
// an embedding ranker over the configured provider, the optional YAML
// ontology and the optional Badger snapshot directory.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*KnowledgeGraph, error) {
	if logger == nil {
		logger = slog.Default()
	}
	kgCfg := ConfigFrom(cfg)

	var opts []Option

	client, err := embedder.New(cfg.Embedding, cfg.CircuitBreaker, alert.New(cfg.Alert, logger), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	ranker, err := semantic.NewEmbeddingRanker(client, kgCfg.CacheSize, logger)
	if err != nil {
		client.Close()
		return nil, err
	}
	opts = append(opts, WithRanker(ranker))

	if cfg.Graph.OntologyFile != "" {
		ont := ontology.New(cfg.Graph.Namespace, logger)
		f, err := os.Open(cfg.Graph.OntologyFile)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to open ontology file: %w", err)
		}
		err = ont.LoadYAML(f)
		f.Close()
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to load ontology: %w", err)
		}
		opts = append(opts, WithOntology(ont))
	}

	if cfg.Storage.SnapshotDir != "" {
		snaps, err := persist.OpenBadger(cfg.Storage.SnapshotDir, logger)
		if err != nil {
			client.Close()
			return nil, err
		}
		opts = append(opts, WithSnapshotStore(snaps))
	}

	kg := New(kgCfg, logger, opts...)
	kg.embedder = client
	if err := ctx.Err(); err != nil {
		kg.Close()
		return nil, err
	}
	return kg, nil
}

func (kg *KnowledgeGraph) Config() Config { return *kg.config }

// Store exposes the underlying store for callers needing operations the
// facade does not forward.
func (kg *KnowledgeGraph) Store() *store.Store { return kg.store }

func (kg *KnowledgeGraph) QueryEngine() *query.Engine { return kg.query }

func (kg *KnowledgeGraph) Inference() *inference.Engine { return kg.inference }

func (kg *KnowledgeGraph) Ontology() *ontology.Ontology { return kg.ontology }

// Close releases the snapshot store and the embedder, if any.
func (kg *KnowledgeGraph) Close() error {
	var errs []error
	if kg.snapshots != nil {
		errs = append(errs, kg.snapshots.Close())
	}
	if kg.embedder != nil {
		errs = append(errs, kg.embedder.Close())
	}
	return errors.Join(errs...)
}

// Stats reports store statistics plus the number of inferred triples.
func (kg *KnowledgeGraph) Stats() types.Stats {
	st := kg.store.Stats()
	kg.mu.RLock()
	st.InferredCount = len(kg.inferred)
	kg.mu.RUnlock()
	return st
}

// Merge adds the nodes and edges of other whose ids are not present.
func (kg *KnowledgeGraph) Merge(other *KnowledgeGraph) (nodesAdded, edgesAdded int) {
	if other == nil || other == kg {
		return 0, 0
	}
	nodesAdded, edgesAdded = kg.store.Merge(other.store)
	kg.logger.Info("Merged graph", "nodes_added", nodesAdded, "edges_added", edgesAdded)
	return nodesAdded, edgesAdded
}

// Clear removes every node, edge, inferred triple and in-memory snapshot.
// Snapshots persisted in Badger are kept.
func (kg *KnowledgeGraph) Clear() {
	kg.store.Clear()
	kg.resetInferred()
}

func (kg *KnowledgeGraph) resetInferred() {
	kg.mu.Lock()
	kg.inferred = nil
	kg.mu.Unlock()
}
