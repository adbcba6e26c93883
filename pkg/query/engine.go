// Package query matches triple patterns against a store, traverses the
// graph and renders builder queries as SPARQL or Cypher text.
package query

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/soundprediction/kgraph/pkg/store"
	"github.com/soundprediction/kgraph/pkg/types"
)

// Binding keys emitted for every match.
const (
	KeySubject   = "subject"
	KeyPredicate = "predicate"
	KeyObject    = "object"
)

// Engine evaluates pattern queries and traversals over a store.
type Engine struct {
	store   *store.Store
	logger  *slog.Logger
	filters *FilterEngine
}

// NewEngine creates a query engine reading from s.
func NewEngine(s *store.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "query")

	filters, err := NewFilterEngine()
	if err != nil {
		// Only reachable if the fixed declarations are rejected; queries
		// with a filter then return no results.
		logger.Error("Failed to initialize filter engine", "error", err)
	}
	return &Engine{store: s, logger: logger, filters: filters}
}

type match struct {
	binding map[string]string
	edge    types.Edge
}

// Query evaluates every pattern against every edge, concatenates the
// matches and then applies the filter, distinct, ordering, offset and limit
// in that order.
func (e *Engine) Query(q types.GraphQuery) types.QueryResult {
	start := time.Now()
	result := types.QueryResult{Bindings: []map[string]string{}}

	if err := q.Validate(); err != nil {
		e.logger.Warn("Rejected query", "error", err)
		result.ExecutionTime = time.Since(start)
		return result
	}

	var prg cel.Program
	if strings.TrimSpace(q.Filter) != "" {
		var err error
		prg, err = e.compileFilter(q.Filter)
		if err != nil {
			e.logger.Warn("Ignoring query with invalid filter", "filter", q.Filter, "error", err)
			result.ExecutionTime = time.Since(start)
			return result
		}
	}

	var matches []match
	e.store.Read(func(tx store.Tx) {
		for _, p := range q.Patterns {
			matches = append(matches, matchPattern(tx, p)...)
		}
		if prg != nil {
			kept := matches[:0]
			for _, m := range matches {
				if e.filters.Eval(prg, m.binding, m.edge) {
					kept = append(kept, m)
				}
			}
			matches = kept
		}
		if q.Distinct {
			matches = distinct(matches)
		}
		if q.OrderBy != "" {
			key := strings.TrimPrefix(q.OrderBy, "?")
			sort.SliceStable(matches, func(i, j int) bool {
				a, b := matches[i].binding[key], matches[j].binding[key]
				if q.Ascending {
					return a < b
				}
				return a > b
			})
		}

		result.TotalMatches = len(matches)
		matches = paginate(matches, q.Offset, q.Limit)
		result.Nodes, result.Edges = collect(tx, matches)
	})

	for _, m := range matches {
		result.Bindings = append(result.Bindings, project(m.binding, q.Select))
	}
	result.ExecutionTime = time.Since(start)
	e.logger.Debug("Query executed", "patterns", len(q.Patterns), "matches", result.TotalMatches, "duration", result.ExecutionTime)
	return result
}

// QueryPattern evaluates a single pattern.
func (e *Engine) QueryPattern(p types.QueryPattern) types.QueryResult {
	return e.Query(types.GraphQuery{Patterns: []types.QueryPattern{p}})
}

func (e *Engine) compileFilter(expr string) (cel.Program, error) {
	if e.filters == nil {
		return nil, errFilterUnavailable
	}
	return e.filters.Compile(expr)
}

func matchPattern(tx store.Tx, p types.QueryPattern) []match {
	var out []match
	for _, id := range tx.EdgeIDs() {
		edge, _ := tx.Edge(id)
		if p.Predicate != nil && edge.Type != *p.Predicate {
			continue
		}
		fromID, toID := edge.From, edge.To
		if p.Invert {
			fromID, toID = toID, fromID
		}
		from, ok := tx.Node(fromID)
		if !ok {
			continue
		}
		to, ok := tx.Node(toID)
		if !ok {
			continue
		}
		if !termMatches(p.Subject, from.Label) || !termMatches(p.Object, to.Label) {
			continue
		}
		if !filtersMatch(p.Filters, edge, from) {
			continue
		}
		out = append(out, match{
			binding: map[string]string{
				KeySubject:   from.Label,
				KeyPredicate: edge.Predicate(),
				KeyObject:    to.Label,
			},
			edge: edge,
		})
	}
	return out
}

func termMatches(term, label string) bool {
	return term == "" || types.IsVariable(term) || term == label
}

// filtersMatch requires every filter to equal the edge property of that
// name or, when the edge lacks it, the subject node property.
func filtersMatch(filters types.Properties, edge types.Edge, subject types.Node) bool {
	for key, want := range filters {
		got, ok := edge.Properties[key]
		if !ok {
			got, ok = subject.Properties[key]
		}
		if !ok || !got.Equal(want) {
			return false
		}
	}
	return true
}

func distinct(matches []match) []match {
	seen := make(map[string]struct{}, len(matches))
	out := matches[:0]
	for _, m := range matches {
		key := m.binding[KeySubject] + "\x00" + m.binding[KeyPredicate] + "\x00" + m.binding[KeyObject]
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	return out
}

func paginate(matches []match, offset, limit *int) []match {
	if offset != nil {
		if *offset >= len(matches) {
			return nil
		}
		matches = matches[*offset:]
	}
	if limit != nil && *limit < len(matches) {
		matches = matches[:*limit]
	}
	return matches
}

// collect returns the distinct endpoint nodes and edges of the matches in
// first-seen order.
func collect(tx store.Tx, matches []match) ([]types.Node, []types.Edge) {
	var nodes []types.Node
	var edges []types.Edge
	seenNodes := make(map[string]struct{})
	seenEdges := make(map[string]struct{})
	for _, m := range matches {
		if _, ok := seenEdges[m.edge.ID]; !ok {
			seenEdges[m.edge.ID] = struct{}{}
			edges = append(edges, m.edge.Clone())
		}
		for _, id := range []string{m.edge.From, m.edge.To} {
			if _, ok := seenNodes[id]; ok {
				continue
			}
			seenNodes[id] = struct{}{}
			if n, ok := tx.Node(id); ok {
				nodes = append(nodes, n.Clone())
			}
		}
	}
	return nodes, edges
}

// project keeps the binding keys named in sel. Names that are not binding
// keys are ignored, and a selection naming none of them keeps the full
// binding.
func project(binding map[string]string, sel []string) map[string]string {
	if len(sel) == 0 {
		return binding
	}
	out := make(map[string]string, len(sel))
	for _, name := range sel {
		key := strings.TrimPrefix(name, "?")
		if v, ok := binding[key]; ok {
			out[key] = v
		}
	}
	if len(out) == 0 {
		return binding
	}
	return out
}
