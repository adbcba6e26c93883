package types

import (
	"errors"
	"time"
)

// Validation errors
var (
	ErrEmptyID           = errors.New("id cannot be empty")
	ErrEmptyLabel        = errors.New("label cannot be empty")
	ErrMissingEndpoint   = errors.New("edge endpoint cannot be empty")
	ErrInvalidConfidence = errors.New("confidence must be within [0, 1]")
	ErrInvalidWeight     = errors.New("weight must not be negative")
	ErrInvalidLimit      = errors.New("limit must not be negative")
)

// contextKey is unexported so values set by this package cannot collide.
type contextKey string

const (
	// ContextKeyRequestID carries the caller supplied request id.
	ContextKeyRequestID contextKey = "request_id"
	// ContextKeyClientID carries the caller identity for request logging.
	ContextKeyClientID contextKey = "client_id"
)

// Subgraph is a node set together with the edges whose endpoints both lie in it.
type Subgraph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// GraphData is the full content of a graph as exchanged with serializers and
// persistence backends.
type GraphData struct {
	Name  string `json:"name,omitempty"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// SnapshotInfo describes a stored snapshot without its payload.
type SnapshotInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	NodeCount int       `json:"node_count"`
	EdgeCount int       `json:"edge_count"`
}

// Stats summarizes the size and shape of a graph.
type Stats struct {
	NodeCount             int              `json:"node_count"`
	EdgeCount             int              `json:"edge_count"`
	TripleCount           int              `json:"triple_count"`
	InferredCount         int              `json:"inferred_count"`
	NodesByType           map[NodeType]int `json:"nodes_by_type"`
	EdgesByType           map[EdgeType]int `json:"edges_by_type"`
	AvgDegree             float64          `json:"avg_degree"`
	ClusteringCoefficient float64          `json:"clustering_coefficient"`
	SnapshotCount         int              `json:"snapshot_count"`
}

// ValidationError is a single advisory finding produced by ontology validation.
type ValidationError struct {
	ID       string `json:"id"`
	Message  string `json:"message"`
	Property string `json:"property,omitempty"`
}

func (v ValidationError) Error() string {
	if v.Property != "" {
		return v.ID + ": " + v.Message + " (" + v.Property + ")"
	}
	return v.ID + ": " + v.Message
}
