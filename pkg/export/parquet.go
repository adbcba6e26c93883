package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/soundprediction/kgraph/pkg/types"
)

// Table file names written by ParquetWriter.
const (
	NodesFile   = "nodes.parquet"
	EdgesFile   = "edges.parquet"
	TriplesFile = "triples.parquet"
)

// ParquetWriter writes graph content as Parquet tables under a directory.
type ParquetWriter struct {
	baseDir string
}

// NewParquetWriter creates baseDir if needed.
func NewParquetWriter(baseDir string) (*ParquetWriter, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", baseDir, err)
	}
	return &ParquetWriter{baseDir: baseDir}, nil
}

func (w *ParquetWriter) Dir() string { return w.baseDir }

// ParquetNode is the row schema of the node table.
type ParquetNode struct {
	ID         string     `parquet:"id"`
	Label      string     `parquet:"label"`
	Type       string     `parquet:"type"`
	Properties string     `parquet:"properties"` // JSON string
	Embedding  []float32  `parquet:"embedding"`
	Confidence float64    `parquet:"confidence"`
	Source     string     `parquet:"source"`
	CreatedAt  *time.Time `parquet:"created_at"`
	ModifiedAt *time.Time `parquet:"modified_at"`
}

// ParquetEdge is the row schema of the edge table.
type ParquetEdge struct {
	ID            string     `parquet:"id"`
	SourceID      string     `parquet:"source_id"`
	TargetID      string     `parquet:"target_id"`
	EdgeType      string     `parquet:"edge_type"`
	CustomLabel   string     `parquet:"custom_label"`
	Properties    string     `parquet:"properties"` // JSON string
	Weight        float64    `parquet:"weight"`
	Confidence    float64    `parquet:"confidence"`
	Bidirectional bool       `parquet:"bidirectional"`
	Source        string     `parquet:"source"`
	CreatedAt     *time.Time `parquet:"created_at"`
}

// ParquetTriple is the row schema of the triple table.
type ParquetTriple struct {
	Subject    string  `parquet:"subject"`
	Predicate  string  `parquet:"predicate"`
	Object     string  `parquet:"object"`
	Confidence float64 `parquet:"confidence"`
	DerivedBy  string  `parquet:"derived_by"`
}

// WriteGraph writes the node and edge tables plus a triple table projected
// from edges whose endpoints exist. Empty tables are still written.
func (w *ParquetWriter) WriteGraph(ctx context.Context, data *types.GraphData) error {
	if data == nil {
		data = &types.GraphData{}
	}
	if err := w.WriteNodes(ctx, data.Nodes); err != nil {
		return err
	}
	if err := w.WriteEdges(ctx, data.Edges); err != nil {
		return err
	}

	idx := nodeIndex(data.Nodes)
	triples := make([]types.Triple, 0, len(data.Edges))
	for _, e := range data.Edges {
		from, ok := idx[e.From]
		if !ok {
			continue
		}
		to, ok := idx[e.To]
		if !ok {
			continue
		}
		triples = append(triples, types.TripleFromEdge(from, e, to))
	}
	return w.WriteTriples(ctx, triples)
}

// WriteNodes writes the node table.
func (w *ParquetWriter) WriteNodes(ctx context.Context, nodes []types.Node) error {
	rows := make([]ParquetNode, 0, len(nodes))
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		props, err := marshalProperties(n.Properties)
		if err != nil {
			return err
		}
		pn := ParquetNode{
			ID:         n.ID,
			Label:      n.Label,
			Type:       string(n.Type),
			Properties: props,
			Embedding:  n.Embedding,
			Confidence: n.Confidence,
			Source:     n.Source,
		}
		if !n.CreatedAt.IsZero() {
			pn.CreatedAt = &n.CreatedAt
		}
		if !n.ModifiedAt.IsZero() {
			pn.ModifiedAt = &n.ModifiedAt
		}
		rows = append(rows, pn)
	}
	return writeTable(filepath.Join(w.baseDir, NodesFile), rows)
}

// WriteEdges writes the edge table.
func (w *ParquetWriter) WriteEdges(ctx context.Context, edges []types.Edge) error {
	rows := make([]ParquetEdge, 0, len(edges))
	for _, e := range edges {
		if err := ctx.Err(); err != nil {
			return err
		}
		props, err := marshalProperties(e.Properties)
		if err != nil {
			return err
		}
		pe := ParquetEdge{
			ID:            e.ID,
			SourceID:      e.From,
			TargetID:      e.To,
			EdgeType:      string(e.Type),
			CustomLabel:   e.CustomLabel,
			Properties:    props,
			Weight:        e.Weight,
			Confidence:    e.Confidence,
			Bidirectional: e.Bidirectional,
			Source:        e.Source,
		}
		if !e.CreatedAt.IsZero() {
			pe.CreatedAt = &e.CreatedAt
		}
		rows = append(rows, pe)
	}
	return writeTable(filepath.Join(w.baseDir, EdgesFile), rows)
}

// WriteTriples writes the triple table, typically asserted plus inferred
// triples.
func (w *ParquetWriter) WriteTriples(ctx context.Context, triples []types.Triple) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([]ParquetTriple, len(triples))
	for i, t := range triples {
		rows[i] = ParquetTriple{
			Subject:    t.Subject,
			Predicate:  t.Predicate,
			Object:     t.Object,
			Confidence: t.Confidence,
			DerivedBy:  t.DerivedBy,
		}
	}
	return writeTable(filepath.Join(w.baseDir, TriplesFile), rows)
}

// ReadNodes reads a node table written by WriteNodes.
func ReadNodes(path string) ([]types.Node, error) {
	rows, err := parquet.ReadFile[ParquetNode](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	nodes := make([]types.Node, 0, len(rows))
	for _, r := range rows {
		props, err := unmarshalProperties(r.Properties)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", r.ID, err)
		}
		n := types.Node{
			ID:         r.ID,
			Label:      r.Label,
			Type:       types.NodeType(r.Type),
			Properties: props,
			Embedding:  r.Embedding,
			Confidence: r.Confidence,
			Source:     r.Source,
		}
		if r.CreatedAt != nil {
			n.CreatedAt = r.CreatedAt.UTC()
		}
		if r.ModifiedAt != nil {
			n.ModifiedAt = r.ModifiedAt.UTC()
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// ReadEdges reads an edge table written by WriteEdges.
func ReadEdges(path string) ([]types.Edge, error) {
	rows, err := parquet.ReadFile[ParquetEdge](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	edges := make([]types.Edge, 0, len(rows))
	for _, r := range rows {
		props, err := unmarshalProperties(r.Properties)
		if err != nil {
			return nil, fmt.Errorf("edge %s: %w", r.ID, err)
		}
		e := types.Edge{
			ID:            r.ID,
			From:          r.SourceID,
			To:            r.TargetID,
			Type:          types.EdgeType(r.EdgeType),
			CustomLabel:   r.CustomLabel,
			Properties:    props,
			Weight:        r.Weight,
			Confidence:    r.Confidence,
			Bidirectional: r.Bidirectional,
			Source:        r.Source,
		}
		if r.CreatedAt != nil {
			e.CreatedAt = r.CreatedAt.UTC()
		}
		edges = append(edges, e)
	}
	return edges, nil
}

// ReadTriples reads a triple table written by WriteTriples.
func ReadTriples(path string) ([]types.Triple, error) {
	rows, err := parquet.ReadFile[ParquetTriple](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	out := make([]types.Triple, len(rows))
	for i, r := range rows {
		out[i] = types.Triple{
			Subject:    r.Subject,
			Predicate:  r.Predicate,
			Object:     r.Object,
			Confidence: r.Confidence,
			DerivedBy:  r.DerivedBy,
		}
	}
	return out, nil
}

func writeTable[T any](path string, rows []T) error {
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func marshalProperties(p types.Properties) (string, error) {
	if len(p) == 0 {
		return "", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal properties: %w", err)
	}
	return string(b), nil
}

func unmarshalProperties(s string) (types.Properties, error) {
	if s == "" {
		return nil, nil
	}
	var p types.Properties
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal properties: %w", err)
	}
	return p, nil
}
