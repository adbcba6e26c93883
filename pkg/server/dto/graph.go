package dto

import (
	"strings"

	"github.com/soundprediction/kgraph/pkg/types"
)

// NodeRequest creates or replaces a node.
type NodeRequest struct {
	ID         string         `json:"id,omitempty"`
	Label      string         `json:"label" binding:"required"`
	Type       string         `json:"type,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Confidence *float64       `json:"confidence,omitempty"`
	Source     string         `json:"source,omitempty"`
}

// Validate performs validation on NodeRequest
func (r *NodeRequest) Validate() error {
	if strings.TrimSpace(r.Label) == "" {
		return ErrEmptyLabel
	}
	if len(r.Label) > MaxLabelLength {
		return ErrLabelTooLong
	}
	if len(r.Properties) > MaxPropertyCount {
		return ErrTooManyProps
	}
	n := r.Node()
	return n.Validate()
}

// Node converts the request. Unknown type names become ENTITY.
func (r *NodeRequest) Node() types.Node {
	n := types.NewNode(r.Label, types.ParseNodeType(r.Type))
	n.ID = r.ID
	n.Properties = toProperties(r.Properties)
	n.Source = r.Source
	if r.Confidence != nil {
		n.Confidence = *r.Confidence
	}
	return n
}

// EdgeRequest creates an edge.
type EdgeRequest struct {
	ID            string         `json:"id,omitempty"`
	From          string         `json:"from" binding:"required"`
	To            string         `json:"to" binding:"required"`
	Type          string         `json:"type,omitempty"`
	Properties    map[string]any `json:"properties,omitempty"`
	Weight        *float64       `json:"weight,omitempty"`
	Confidence    *float64       `json:"confidence,omitempty"`
	Bidirectional bool           `json:"bidirectional,omitempty"`
	Source        string         `json:"source,omitempty"`
}

// Validate performs validation on EdgeRequest
func (r *EdgeRequest) Validate() error {
	if strings.TrimSpace(r.From) == "" || strings.TrimSpace(r.To) == "" {
		return ErrMissingEndpoint
	}
	if len(r.Properties) > MaxPropertyCount {
		return ErrTooManyProps
	}
	e := r.Edge()
	return e.Validate()
}

// Edge converts the request. A type that does not name a built-in edge
// type is kept as the custom label.
func (r *EdgeRequest) Edge() types.Edge {
	t := types.ParseEdgeType(r.Type)
	if r.Type == "" {
		t = types.RelatedTo
	}
	e := types.NewEdge(r.From, t, r.To)
	if t == types.Custom && !strings.EqualFold(r.Type, string(types.Custom)) {
		e.CustomLabel = r.Type
	}
	e.ID = r.ID
	e.Properties = toProperties(r.Properties)
	e.Bidirectional = r.Bidirectional
	e.Source = r.Source
	if r.Weight != nil {
		e.Weight = *r.Weight
	}
	if r.Confidence != nil {
		e.Confidence = *r.Confidence
	}
	return e
}

// TripleRequest adds a labelled fact.
type TripleRequest struct {
	Subject   string `json:"subject" binding:"required"`
	Predicate string `json:"predicate" binding:"required"`
	Object    string `json:"object" binding:"required"`
}

// Validate performs validation on TripleRequest
func (r *TripleRequest) Validate() error {
	if strings.TrimSpace(r.Subject) == "" || strings.TrimSpace(r.Predicate) == "" || strings.TrimSpace(r.Object) == "" {
		return ErrEmptyTerm
	}
	if len(r.Subject) > MaxLabelLength || len(r.Object) > MaxLabelLength {
		return ErrLabelTooLong
	}
	return nil
}

// SnapshotRequest names a new snapshot.
type SnapshotRequest struct {
	Name string `json:"name"`
}

// Validate performs validation on SnapshotRequest
func (r *SnapshotRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if len(r.Name) > MaxLabelLength {
		return ErrLabelTooLong
	}
	return nil
}

// InferenceResponse lists inferred triples and how many became edges.
type InferenceResponse struct {
	Triples      []types.Triple `json:"triples"`
	Materialized int            `json:"materialized"`
}

// ValidationResponse wraps ontology findings.
type ValidationResponse struct {
	Valid    bool                    `json:"valid"`
	Findings []types.ValidationError `json:"findings"`
}
