package types

import (
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// EdgeType represents the relation an edge expresses.
type EdgeType string

const (
	IsA         EdgeType = "IS_A"
	PartOf      EdgeType = "PART_OF"
	HasPart     EdgeType = "HAS_PART"
	RelatedTo   EdgeType = "RELATED_TO"
	SimilarTo   EdgeType = "SIMILAR_TO"
	OppositeOf  EdgeType = "OPPOSITE_OF"
	SynonymOf   EdgeType = "SYNONYM_OF"
	Causes      EdgeType = "CAUSES"
	CausedBy    EdgeType = "CAUSED_BY"
	Enables     EdgeType = "ENABLES"
	Prevents    EdgeType = "PREVENTS"
	Before      EdgeType = "BEFORE"
	After       EdgeType = "AFTER"
	During      EdgeType = "DURING"
	LocatedIn   EdgeType = "LOCATED_IN"
	Near        EdgeType = "NEAR"
	Contains    EdgeType = "CONTAINS"
	HasProperty EdgeType = "HAS_PROPERTY"
	HasValue    EdgeType = "HAS_VALUE"
	DerivedFrom EdgeType = "DERIVED_FROM"
	InferredBy  EdgeType = "INFERRED_BY"
	// Custom edges carry their relation name in Edge.CustomLabel.
	Custom EdgeType = "CUSTOM"
)

var edgeTypes = []EdgeType{
	IsA, PartOf, HasPart, RelatedTo, SimilarTo, OppositeOf, SynonymOf,
	Causes, CausedBy, Enables, Prevents, Before, After, During,
	LocatedIn, Near, Contains, HasProperty, HasValue, DerivedFrom,
	InferredBy, Custom,
}

// EdgeTypes lists every edge type in declaration order.
func EdgeTypes() []EdgeType {
	return slices.Clone(edgeTypes)
}

// ParseEdgeType maps a relation name to its EdgeType. The match is case
// insensitive and unknown names map to Custom.
func ParseEdgeType(s string) EdgeType {
	t := EdgeType(strings.ToUpper(strings.TrimSpace(s)))
	if slices.Contains(edgeTypes, t) {
		return t
	}
	return Custom
}

func (t EdgeType) String() string { return string(t) }

// Ptr returns a pointer to a copy of t, for optional pattern predicates.
func (t EdgeType) Ptr() *EdgeType { return &t }

// Edge is a directed, typed relation between two nodes.
type Edge struct {
	ID            string     `json:"id" mapstructure:"id"`
	From          string     `json:"from" mapstructure:"from"`
	To            string     `json:"to" mapstructure:"to"`
	Type          EdgeType   `json:"type" mapstructure:"type"`
	CustomLabel   string     `json:"custom_label,omitempty" mapstructure:"custom_label"`
	Properties    Properties `json:"properties,omitempty" mapstructure:"properties"`
	Weight        float64    `json:"weight" mapstructure:"weight"`
	Confidence    float64    `json:"confidence" mapstructure:"confidence"`
	Bidirectional bool       `json:"bidirectional,omitempty" mapstructure:"bidirectional"`
	Source        string     `json:"source,omitempty" mapstructure:"source"`
	CreatedAt     time.Time  `json:"created_at" mapstructure:"created_at"`
}

// NewEdge returns an edge with default weight and confidence.
func NewEdge(from string, edgeType EdgeType, to string) Edge {
	if edgeType == "" {
		edgeType = RelatedTo
	}
	return Edge{From: from, To: to, Type: edgeType, Weight: 1.0, Confidence: 1.0}
}

// UnmarshalJSON decodes an edge, keeping the NewEdge weight and confidence
// when the document leaves them out. An explicit 0 is kept.
func (e *Edge) UnmarshalJSON(data []byte) error {
	type plain Edge
	p := plain{Weight: 1.0, Confidence: 1.0}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Edge(p)
	return nil
}

// Predicate is the relation name used when the edge is read as a triple.
func (e *Edge) Predicate() string {
	if e.CustomLabel != "" {
		return e.CustomLabel
	}
	return string(e.Type)
}

// Other returns the endpoint opposite to id.
func (e *Edge) Other(id string) string {
	if e.From == id {
		return e.To
	}
	return e.From
}

// Validate checks if the Edge has all required fields set.
func (e *Edge) Validate() error {
	if e.From == "" || e.To == "" {
		return ErrMissingEndpoint
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return ErrInvalidConfidence
	}
	if e.Weight < 0 {
		return ErrInvalidWeight
	}
	return nil
}

// ValidateForCreate checks if the Edge has all required fields for creation.
func (e *Edge) ValidateForCreate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	return e.Validate()
}

// Clone returns a deep copy of the edge.
func (e Edge) Clone() Edge {
	e.Properties = e.Properties.Clone()
	return e
}
