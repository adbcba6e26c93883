package kgraph

import (
	"context"
	"io"

	"github.com/soundprediction/kgraph/pkg/community"
	"github.com/soundprediction/kgraph/pkg/semantic"
	"github.com/soundprediction/kgraph/pkg/types"
)

// This file defines focused interfaces over KnowledgeGraph. Consumers such
// as the HTTP server should depend on the smallest one that meets their
// needs.

// GraphReader provides read-only access to nodes, edges and queries.
type GraphReader interface {
	GetNode(id string) (types.Node, bool)
	GetEdge(id string) (types.Edge, bool)
	Nodes() []types.Node
	Edges() []types.Edge
	NodesByType(t types.NodeType) []types.Node
	NodesByLabel(label string) []types.Node
	SearchNodes(query string, limit int) []types.Node
	Triples(subject, predicate, object string) []types.Triple

	// Query evaluates a pattern query with optional filters and shaping.
	Query(q types.GraphQuery) types.QueryResult
	FindPaths(q types.PathQuery) [][]string
	Neighbors(id string, edgeTypes ...types.EdgeType) []types.Node
	Subgraph(center string, radius int) types.Subgraph

	Stats() types.Stats
}

// GraphWriter provides mutations. Adds never fail; removals report whether
// anything was removed.
type GraphWriter interface {
	AddNode(node types.Node) string
	UpdateNode(node types.Node) bool
	RemoveNode(id string) bool
	AddEdge(edge types.Edge) string
	UpdateEdge(edge types.Edge) bool
	RemoveEdge(id string) bool
	AddTriple(subject, predicate, object string) string
	Clear()
}

// Reasoner runs rule-based inference and ontology validation.
type Reasoner interface {
	RunInference() []types.Triple
	InferredTriples() []types.Triple
	MaterializeInferred() int
	Explain(t types.Triple) string
	Validate() []types.ValidationError
}

// Analyzer provides graph analytics and semantic ranking.
type Analyzer interface {
	PageRank() map[string]float64
	Centrality() map[string]float64
	Closeness() map[string]float64
	Communities() ([]community.Community, error)
	LabelCommunities() ([]community.Community, error)
	SemanticSearch(ctx context.Context, query string, topK int) ([]types.Node, error)
	FindDuplicates(ctx context.Context, threshold float64) ([]semantic.DuplicatePair, error)
}

// Exchanger moves the graph in and out of the process: serialization
// formats, files and snapshots.
type Exchanger interface {
	Export(w io.Writer, format string) error
	ImportJSON(r io.Reader) (nodes, edges int, err error)
	Save(ctx context.Context, path string) error
	Load(ctx context.Context, path string) error
	CreateSnapshot(ctx context.Context, name string) (string, error)
	RestoreSnapshot(ctx context.Context, id string) error
	ListSnapshots(ctx context.Context) ([]types.SnapshotInfo, error)
	DeleteSnapshot(ctx context.Context, id string) error
}

// TextIngester turns free text into graph facts.
type TextIngester interface {
	ExtractRelations(text string) []semantic.Relation
	IngestText(text string) []string
	Answer(question string) string
}

var _ interface {
	GraphReader
	GraphWriter
	Reasoner
	Analyzer
	Exchanger
	TextIngester
} = (*KnowledgeGraph)(nil)
