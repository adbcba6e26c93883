package query

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/soundprediction/kgraph/pkg/types"
)

var errFilterUnavailable = errors.New("filter engine unavailable")

// FilterEngine compiles and caches CEL filter expressions evaluated against
// query matches. Expressions see these variables:
//
//	subject, predicate, object  string
//	confidence, weight          double
//	props                       map(string, dyn) of edge properties
type FilterEngine struct {
	env *cel.Env

	mu       sync.Mutex
	programs map[string]cel.Program
}

// NewFilterEngine initializes the CEL environment with the match variables.
func NewFilterEngine() (*FilterEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("subject", cel.StringType),
		cel.Variable("predicate", cel.StringType),
		cel.Variable("object", cel.StringType),
		cel.Variable("confidence", cel.DoubleType),
		cel.Variable("weight", cel.DoubleType),
		cel.Variable("props", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	return &FilterEngine{env: env, programs: make(map[string]cel.Program)}, nil
}

// Compile checks an expression and caches its program. The expression must
// evaluate to a boolean.
func (f *FilterEngine) Compile(expr string) (cel.Program, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if prg, ok := f.programs[expr]; ok {
		return prg, nil
	}
	ast, issues := f.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("filter compilation error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter must be boolean, got %s", ast.OutputType())
	}
	prg, err := f.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("filter program creation error: %w", err)
	}
	f.programs[expr] = prg
	return prg, nil
}

// Eval runs a compiled filter against one match. Evaluation errors, such
// as a missing map key, count as a non-match.
func (f *FilterEngine) Eval(prg cel.Program, binding map[string]string, edge types.Edge) bool {
	props := make(map[string]any, len(edge.Properties))
	for k, v := range edge.Properties {
		props[k] = v.Interface()
	}
	out, _, err := prg.Eval(map[string]any{
		"subject":    binding["subject"],
		"predicate":  binding["predicate"],
		"object":     binding["object"],
		"confidence": edge.Confidence,
		"weight":     edge.Weight,
		"props":      props,
	})
	if err != nil {
		return false
	}
	match, ok := out.Value().(bool)
	return ok && match
}
