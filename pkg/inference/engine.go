// Package inference derives new triples from graph edges with
// forward-chaining rules.
//
// Rules are not unified generically. Each rule is classified by the shape
// of its patterns (symmetry, inverse, transitivity or a two-step chain) and
// evaluated by a dedicated join; rules matching none of these shapes never
// fire.
package inference

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/soundprediction/kgraph/pkg/types"
)

// DefaultMaxIterations bounds ForwardChain when no limit is given.
const DefaultMaxIterations = 10

// InferredSource marks edges created from inferred triples.
const InferredSource = "inference"

// Engine holds the rule set and the running inference counter.
type Engine struct {
	mu             sync.Mutex
	logger         *slog.Logger
	rules          []types.InferenceRule
	inferencesMade int
	derivedBy      map[string]string
}

// New creates an engine preloaded with transitivity for IS_A and PART_OF,
// symmetry for SIMILAR_TO and RELATED_TO, and the inverse pairs
// CAUSES/CAUSED_BY, BEFORE/AFTER and PART_OF/HAS_PART.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		logger:    logger.With("component", "inference"),
		derivedBy: make(map[string]string),
	}
	e.AddTransitivityRule(types.IsA)
	e.AddTransitivityRule(types.PartOf)
	e.AddSymmetryRule(types.SimilarTo)
	e.AddSymmetryRule(types.RelatedTo)
	e.AddInverseRule(types.Causes, types.CausedBy)
	e.AddInverseRule(types.Before, types.After)
	e.AddInverseRule(types.PartOf, types.HasPart)
	return e
}

// AddRule registers a rule, replacing any rule with the same id.
func (e *Engine) AddRule(rule types.InferenceRule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.rules {
		if e.rules[i].ID == rule.ID {
			e.rules[i] = rule
			return
		}
	}
	e.rules = append(e.rules, rule)
}

func (e *Engine) AddTransitivityRule(p types.EdgeType) { e.AddRule(TransitivityRule(p)) }

func (e *Engine) AddSymmetryRule(p types.EdgeType) { e.AddRule(SymmetryRule(p)) }

func (e *Engine) AddInverseRule(p, q types.EdgeType) { e.AddRule(InverseRule(p, q)) }

func (e *Engine) AddInheritanceRule() { e.AddRule(InheritanceRule()) }

// RemoveRule deletes a rule by id and reports whether it existed.
func (e *Engine) RemoveRule(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.rules {
		if e.rules[i].ID == id {
			e.rules = append(e.rules[:i], e.rules[i+1:]...)
			return true
		}
	}
	return false
}

// EnableRule toggles a rule and reports whether it exists.
func (e *Engine) EnableRule(id string, enabled bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.rules {
		if e.rules[i].ID == id {
			e.rules[i].Enabled = enabled
			return true
		}
	}
	return false
}

// Rules returns a copy of the registered rules in registration order.
func (e *Engine) Rules() []types.InferenceRule {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]types.InferenceRule(nil), e.rules...)
}

func (e *Engine) RuleCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.rules)
}

// InferencesMade is the total number of triples emitted by Infer over the
// engine's lifetime, duplicates included.
func (e *Engine) InferencesMade() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inferencesMade
}

// Infer applies every enabled rule once to the given graph and returns the
// derived triples. Rules run in registration order; Priority is carried
// but does not reorder them.
func (e *Engine) Infer(nodes []types.Node, edges []types.Edge) []types.Triple {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inferLocked(indexNodes(nodes), edges)
}

func (e *Engine) inferLocked(byID map[string]types.Node, edges []types.Edge) []types.Triple {
	var out []types.Triple
	for _, rule := range e.rules {
		if !rule.Enabled {
			continue
		}
		var derived []types.Triple
		switch classify(rule) {
		case shapeSymmetry, shapeInverse:
			derived = applyReversal(rule, byID, edges)
		case shapeTransitivity, shapeChain:
			derived = applyChain(rule, byID, edges)
		default:
			e.logger.Debug("Skipping rule with unsupported shape", "rule_id", rule.ID)
			continue
		}
		for _, t := range derived {
			if _, ok := e.derivedBy[t.Key()]; !ok {
				e.derivedBy[t.Key()] = rule.ID
			}
		}
		out = append(out, derived...)
	}
	e.inferencesMade += len(out)
	return out
}

// applyReversal emits (label(to), q, label(from)) for every edge matching the
// single antecedent predicate.
func applyReversal(rule types.InferenceRule, byID map[string]types.Node, edges []types.Edge) []types.Triple {
	p := *rule.Antecedents[0].Predicate
	q := *rule.Consequent.Predicate
	var out []types.Triple
	for _, edge := range edges {
		if edge.Type != p {
			continue
		}
		from, okFrom := byID[edge.From]
		to, okTo := byID[edge.To]
		if !okFrom || !okTo {
			continue
		}
		out = append(out, types.Triple{
			Subject:    to.Label,
			Predicate:  string(q),
			Object:     from.Label,
			Confidence: edge.Confidence * rule.ConfidenceFactor,
			DerivedBy:  rule.ID,
		})
	}
	return out
}

// applyChain joins edges e1 and e2 on e1.To == e2.From and emits
// (label(e1.From), q, label(e2.To)), skipping pairs that would close a loop.
func applyChain(rule types.InferenceRule, byID map[string]types.Node, edges []types.Edge) []types.Triple {
	p1 := *rule.Antecedents[0].Predicate
	p2 := *rule.Antecedents[1].Predicate
	q := *rule.Consequent.Predicate

	second := make(map[string][]types.Edge)
	for _, edge := range edges {
		if edge.Type == p2 {
			second[edge.From] = append(second[edge.From], edge)
		}
	}

	var out []types.Triple
	for _, e1 := range edges {
		if e1.Type != p1 {
			continue
		}
		for _, e2 := range second[e1.To] {
			if e1.From == e2.To {
				continue
			}
			from, okFrom := byID[e1.From]
			to, okTo := byID[e2.To]
			if !okFrom || !okTo {
				continue
			}
			out = append(out, types.Triple{
				Subject:    from.Label,
				Predicate:  string(q),
				Object:     to.Label,
				Confidence: e1.Confidence * e2.Confidence * rule.ConfidenceFactor,
				DerivedBy:  rule.ID,
			})
		}
	}
	return out
}

// ForwardChain applies the rules repeatedly, feeding each round's new
// triples back as candidate edges, until a round adds nothing or
// maxIterations rounds have run. Each triple is reported once, even when it
// restates an input edge. Candidate edges resolve subject and object by label to
// the first node carrying it; triples whose labels do not resolve are
// reported but not fed back.
func (e *Engine) ForwardChain(nodes []types.Node, edges []types.Edge, maxIterations int) []types.Triple {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	byID := indexNodes(nodes)
	byLabel := make(map[string]string, len(nodes))
	for _, n := range nodes {
		if _, ok := byLabel[n.Label]; !ok {
			byLabel[n.Label] = n.ID
		}
	}

	seen := make(map[string]struct{})
	working := append([]types.Edge(nil), edges...)
	var all []types.Triple
	iterations := 0
	for iterations < maxIterations {
		iterations++
		added := 0
		for _, t := range e.inferLocked(byID, working) {
			if _, dup := seen[t.Key()]; dup {
				continue
			}
			seen[t.Key()] = struct{}{}
			all = append(all, t)
			added++

			fromID, okFrom := byLabel[t.Subject]
			toID, okTo := byLabel[t.Object]
			if !okFrom || !okTo {
				continue
			}
			working = append(working, types.Edge{
				ID:         fmt.Sprintf("inferred_%d", len(all)-1),
				From:       fromID,
				To:         toID,
				Type:       types.ParseEdgeType(t.Predicate),
				Weight:     1.0,
				Confidence: t.Confidence,
				Source:     InferredSource,
			})
		}
		if added == 0 {
			break
		}
	}

	e.logger.Debug("Forward chaining finished", "iterations", iterations, "inferred", len(all))
	return all
}

// Explain renders a short derivation trace for a triple.
func (e *Engine) Explain(t types.Triple) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	ruleID := t.DerivedBy
	if ruleID == "" {
		ruleID = e.derivedBy[t.Key()]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Triple: %s\n", t.String())
	fmt.Fprintf(&sb, "Inferred with confidence: %.4f\n", t.Confidence)
	if rule, ok := e.ruleLocked(ruleID); ok {
		fmt.Fprintf(&sb, "Applied rule: %s (%s)", rule.Name, rule.ID)
	} else {
		sb.WriteString("Applied rules: transitivity, symmetry, or inverse mapping")
	}
	return sb.String()
}

func (e *Engine) ruleLocked(id string) (types.InferenceRule, bool) {
	if id == "" {
		return types.InferenceRule{}, false
	}
	for _, r := range e.rules {
		if r.ID == id {
			return r, true
		}
	}
	return types.InferenceRule{}, false
}

func indexNodes(nodes []types.Node) map[string]types.Node {
	byID := make(map[string]types.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	return byID
}
