package query

import (
	"fmt"
	"strings"

	"github.com/soundprediction/kgraph/pkg/types"
)

// Builder accumulates a GraphQuery or PathQuery through chained calls.
//
//	q := query.NewBuilder().
//		Match("?x", "IS_A", "Human").
//		Select("x").
//		Limit(10)
//
// The SPARQL and Cypher renderings are for display only.
type Builder struct {
	query types.GraphQuery
	path  types.PathQuery
}

func NewBuilder() *Builder {
	return &Builder{path: types.PathQuery{}.WithDefaults()}
}

// Match appends a triple pattern. An empty predicate matches any edge type;
// an unknown one is read as CUSTOM.
func (b *Builder) Match(subject, predicate, object string) *Builder {
	p := types.QueryPattern{Subject: subject, Object: object}
	if predicate != "" {
		p.Predicate = types.ParseEdgeType(predicate).Ptr()
	}
	b.query.Patterns = append(b.query.Patterns, p)
	return b
}

// Where adds a property filter to the most recent pattern. The variable
// name is informational. Without a preceding Match the call is ignored.
func (b *Builder) Where(variable, property string, value any) *Builder {
	if len(b.query.Patterns) == 0 {
		return b
	}
	last := &b.query.Patterns[len(b.query.Patterns)-1]
	if last.Filters == nil {
		last.Filters = make(types.Properties)
	}
	last.Filters[property] = types.PropertyFromAny(value)
	return b
}

// Filter sets the CEL expression applied to every match.
func (b *Builder) Filter(expr string) *Builder {
	b.query.Filter = expr
	return b
}

// Select replaces the selected variables. A leading "?" is optional.
func (b *Builder) Select(vars ...string) *Builder {
	b.query.Select = b.query.Select[:0]
	for _, v := range vars {
		b.query.Select = append(b.query.Select, strings.TrimPrefix(v, "?"))
	}
	return b
}

func (b *Builder) SelectAll() *Builder {
	b.query.Select = nil
	return b
}

func (b *Builder) Distinct() *Builder {
	b.query.Distinct = true
	return b
}

func (b *Builder) Limit(n int) *Builder {
	b.query.Limit = &n
	return b
}

func (b *Builder) Offset(n int) *Builder {
	b.query.Offset = &n
	return b
}

// OrderBy sorts results on a binding key.
func (b *Builder) OrderBy(variable string, ascending bool) *Builder {
	b.query.OrderBy = strings.TrimPrefix(variable, "?")
	b.query.Ascending = ascending
	return b
}

// Path starts a path query between two node ids.
func (b *Builder) Path(start, end string) *Builder {
	b.path.Start = start
	b.path.End = end
	return b
}

// Via restricts the path query to the given edge types.
func (b *Builder) Via(edgeTypes ...types.EdgeType) *Builder {
	b.path.AllowedEdges = append(b.path.AllowedEdges, edgeTypes...)
	return b
}

// MaxDepth bounds the path query and switches it to enumerate all paths.
func (b *Builder) MaxDepth(depth int) *Builder {
	b.path.MaxDepth = depth
	shortest := false
	b.path.Shortest = &shortest
	b.path.AllPaths = true
	return b
}

// Build returns a copy of the accumulated pattern query.
func (b *Builder) Build() types.GraphQuery {
	q := b.query
	q.Patterns = make([]types.QueryPattern, len(b.query.Patterns))
	for i, p := range b.query.Patterns {
		p.Filters = p.Filters.Clone()
		q.Patterns[i] = p
	}
	q.Select = append([]string(nil), b.query.Select...)
	return q
}

// BuildPath returns the accumulated path query.
func (b *Builder) BuildPath() types.PathQuery {
	p := b.path
	p.AllowedEdges = append([]types.EdgeType(nil), b.path.AllowedEdges...)
	return p.WithDefaults()
}

// Execute runs the pattern query on engine.
func (b *Builder) Execute(engine *Engine) types.QueryResult {
	return engine.Query(b.Build())
}

// ExecutePath runs the path query on engine.
func (b *Builder) ExecutePath(engine *Engine) [][]string {
	return engine.FindPaths(b.BuildPath())
}

// ToSPARQL renders the pattern query as SPARQL-like text.
func (b *Builder) ToSPARQL() string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if b.query.Distinct {
		sb.WriteString("DISTINCT ")
	}
	if len(b.query.Select) == 0 {
		sb.WriteString("*")
	} else {
		vars := make([]string, len(b.query.Select))
		for i, v := range b.query.Select {
			vars[i] = "?" + v
		}
		sb.WriteString(strings.Join(vars, " "))
	}
	sb.WriteString(" WHERE {\n")
	for _, p := range b.query.Patterns {
		fmt.Fprintf(&sb, "  %s %s %s .\n", p.Subject, predicateName(p), p.Object)
	}
	if b.query.Filter != "" {
		fmt.Fprintf(&sb, "  FILTER (%s)\n", b.query.Filter)
	}
	sb.WriteString("}")
	if b.query.OrderBy != "" {
		if b.query.Ascending {
			fmt.Fprintf(&sb, " ORDER BY ?%s", b.query.OrderBy)
		} else {
			fmt.Fprintf(&sb, " ORDER BY DESC(?%s)", b.query.OrderBy)
		}
	}
	if b.query.Limit != nil {
		fmt.Fprintf(&sb, " LIMIT %d", *b.query.Limit)
	}
	if b.query.Offset != nil {
		fmt.Fprintf(&sb, " OFFSET %d", *b.query.Offset)
	}
	return sb.String()
}

// ToCypher renders the pattern query as Cypher-like text.
func (b *Builder) ToCypher() string {
	var sb strings.Builder
	sb.WriteString("MATCH ")
	for i, p := range b.query.Patterns {
		if i > 0 {
			sb.WriteString(", ")
		}
		if p.Predicate != nil {
			fmt.Fprintf(&sb, "(%s)-[:%s]->(%s)", p.Subject, *p.Predicate, p.Object)
		} else {
			fmt.Fprintf(&sb, "(%s)-[]->(%s)", p.Subject, p.Object)
		}
	}
	if b.query.Filter != "" {
		fmt.Fprintf(&sb, "\nWHERE %s", b.query.Filter)
	}
	sb.WriteString("\nRETURN ")
	if b.query.Distinct {
		sb.WriteString("DISTINCT ")
	}
	if len(b.query.Select) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(b.query.Select, ", "))
	}
	if b.query.OrderBy != "" {
		fmt.Fprintf(&sb, " ORDER BY %s", b.query.OrderBy)
		if !b.query.Ascending {
			sb.WriteString(" DESC")
		}
	}
	if b.query.Offset != nil {
		fmt.Fprintf(&sb, " SKIP %d", *b.query.Offset)
	}
	if b.query.Limit != nil {
		fmt.Fprintf(&sb, " LIMIT %d", *b.query.Limit)
	}
	return sb.String()
}

func predicateName(p types.QueryPattern) string {
	if p.Predicate == nil {
		return ""
	}
	return p.Predicate.String()
}
