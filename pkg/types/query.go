package types

import (
	"strings"
	"time"
)

// IsVariable reports whether a pattern term is a variable such as ?x.
func IsVariable(term string) bool {
	return strings.HasPrefix(term, "?")
}

// QueryPattern is a single triple pattern. Empty or variable terms match
// anything.
type QueryPattern struct {
	Subject   string     `json:"subject,omitempty" mapstructure:"subject"`
	Predicate *EdgeType  `json:"predicate,omitempty" mapstructure:"predicate"`
	Object    string     `json:"object,omitempty" mapstructure:"object"`
	Filters   Properties `json:"filters,omitempty" mapstructure:"filters"`
	// Invert matches the pattern against edges read in reverse.
	Invert bool `json:"invert,omitempty" mapstructure:"invert"`
}

// NewPattern builds a pattern with a fixed predicate.
func NewPattern(subject string, predicate EdgeType, object string) QueryPattern {
	return QueryPattern{Subject: subject, Predicate: predicate.Ptr(), Object: object}
}

// GraphQuery is a conjunctive pattern query with result shaping.
type GraphQuery struct {
	Patterns  []QueryPattern `json:"patterns" mapstructure:"patterns"`
	Select    []string       `json:"select,omitempty" mapstructure:"select"`
	Limit     *int           `json:"limit,omitempty" mapstructure:"limit"`
	Offset    *int           `json:"offset,omitempty" mapstructure:"offset"`
	OrderBy   string         `json:"order_by,omitempty" mapstructure:"order_by"`
	Ascending bool           `json:"ascending" mapstructure:"ascending"`
	Distinct  bool           `json:"distinct,omitempty" mapstructure:"distinct"`
	// Filter is an optional CEL boolean expression evaluated per binding.
	Filter string `json:"filter,omitempty" mapstructure:"filter"`
}

// Validate checks the shaping parameters.
func (q *GraphQuery) Validate() error {
	if q.Limit != nil && *q.Limit < 0 {
		return ErrInvalidLimit
	}
	if q.Offset != nil && *q.Offset < 0 {
		return ErrInvalidLimit
	}
	return nil
}

// DefaultMaxDepth bounds path searches when a PathQuery leaves it unset.
const DefaultMaxDepth = 5

// PathQuery asks for paths between two nodes. A nil Shortest means true.
type PathQuery struct {
	Start        string     `json:"start" mapstructure:"start"`
	End          string     `json:"end" mapstructure:"end"`
	AllowedEdges []EdgeType `json:"allowed_edges,omitempty" mapstructure:"allowed_edges"`
	MaxDepth     int        `json:"max_depth" mapstructure:"max_depth"`
	Shortest     *bool      `json:"shortest,omitempty" mapstructure:"shortest"`
	AllPaths     bool       `json:"all_paths,omitempty" mapstructure:"all_paths"`
}

// NewPathQuery returns a shortest-path query with the default depth.
func NewPathQuery(start, end string) PathQuery {
	return PathQuery{Start: start, End: end}.WithDefaults()
}

// WithDefaults returns a copy of the query with default values applied.
func (q PathQuery) WithDefaults() PathQuery {
	if q.MaxDepth <= 0 {
		q.MaxDepth = DefaultMaxDepth
	}
	if q.Shortest == nil {
		shortest := true
		q.Shortest = &shortest
	}
	return q
}

// IsShortest reports whether the query wants a single shortest path.
func (q PathQuery) IsShortest() bool {
	return !q.AllPaths && (q.Shortest == nil || *q.Shortest)
}

// QueryResult carries the output of a query or path search.
type QueryResult struct {
	Bindings      []map[string]string `json:"bindings"`
	Nodes         []Node              `json:"nodes,omitempty"`
	Edges         []Edge              `json:"edges,omitempty"`
	Paths         [][]string          `json:"paths,omitempty"`
	ExecutionTime time.Duration       `json:"execution_time"`
	// TotalMatches counts bindings after filtering and before offset or limit.
	TotalMatches int `json:"total_matches"`
}

// InferenceRule derives a consequent triple pattern from antecedent patterns.
type InferenceRule struct {
	ID               string         `json:"id" yaml:"id"`
	Name             string         `json:"name" yaml:"name"`
	Antecedents      []QueryPattern `json:"antecedents" yaml:"antecedents"`
	Consequent       QueryPattern   `json:"consequent" yaml:"consequent"`
	ConfidenceFactor float64        `json:"confidence_factor" yaml:"confidence_factor"`
	Enabled          bool           `json:"enabled" yaml:"enabled"`
	Priority         int            `json:"priority" yaml:"priority"`
}
