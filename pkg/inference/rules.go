package inference

import (
	"fmt"

	"github.com/soundprediction/kgraph/pkg/types"
)

// Confidence factors of the built-in rule constructors.
const (
	TransitivityFactor = 0.9
	SymmetryFactor     = 1.0
	InverseFactor      = 1.0
	InheritanceFactor  = 0.95
)

// TransitivityRule derives (a p c) from (a p b) and (b p c).
func TransitivityRule(p types.EdgeType) types.InferenceRule {
	return types.InferenceRule{
		ID:   "transitivity_" + string(p),
		Name: "Transitivity for " + string(p),
		Antecedents: []types.QueryPattern{
			types.NewPattern("?a", p, "?b"),
			types.NewPattern("?b", p, "?c"),
		},
		Consequent:       types.NewPattern("?a", p, "?c"),
		ConfidenceFactor: TransitivityFactor,
		Enabled:          true,
	}
}

// SymmetryRule derives (b p a) from (a p b).
func SymmetryRule(p types.EdgeType) types.InferenceRule {
	return types.InferenceRule{
		ID:               "symmetry_" + string(p),
		Name:             "Symmetry for " + string(p),
		Antecedents:      []types.QueryPattern{types.NewPattern("?a", p, "?b")},
		Consequent:       types.NewPattern("?b", p, "?a"),
		ConfidenceFactor: SymmetryFactor,
		Enabled:          true,
	}
}

// InverseRule derives (b q a) from (a p b).
func InverseRule(p, q types.EdgeType) types.InferenceRule {
	return types.InferenceRule{
		ID:               fmt.Sprintf("inverse_%s_%s", p, q),
		Name:             fmt.Sprintf("Inverse: %s <-> %s", p, q),
		Antecedents:      []types.QueryPattern{types.NewPattern("?a", p, "?b")},
		Consequent:       types.NewPattern("?b", q, "?a"),
		ConfidenceFactor: InverseFactor,
		Enabled:          true,
	}
}

// InheritanceRule derives (a HAS_PROPERTY p) from (a IS_A b) and
// (b HAS_PROPERTY p).
func InheritanceRule() types.InferenceRule {
	return types.InferenceRule{
		ID:   "inheritance",
		Name: "Property inheritance through IS_A",
		Antecedents: []types.QueryPattern{
			types.NewPattern("?a", types.IsA, "?b"),
			types.NewPattern("?b", types.HasProperty, "?p"),
		},
		Consequent:       types.NewPattern("?a", types.HasProperty, "?p"),
		ConfidenceFactor: InheritanceFactor,
		Enabled:          true,
	}
}

// shape is the structural class a rule is dispatched on.
type shape int

const (
	shapeNone shape = iota
	shapeSymmetry
	shapeInverse
	shapeTransitivity
	shapeChain
)

// classify inspects predicates and variable positions only. Rules that fit
// no shape never fire.
func classify(r types.InferenceRule) shape {
	c := r.Consequent
	if c.Predicate == nil {
		return shapeNone
	}
	for _, a := range r.Antecedents {
		if a.Predicate == nil {
			return shapeNone
		}
	}

	switch len(r.Antecedents) {
	case 1:
		a := r.Antecedents[0]
		if *a.Predicate == *c.Predicate {
			return shapeSymmetry
		}
		if c.Subject == a.Object && c.Object == a.Subject {
			return shapeInverse
		}
	case 2:
		a1, a2 := r.Antecedents[0], r.Antecedents[1]
		if *a1.Predicate == *a2.Predicate && *a1.Predicate == *c.Predicate {
			return shapeTransitivity
		}
		if types.IsVariable(a1.Object) && a1.Object == a2.Subject &&
			c.Subject == a1.Subject && c.Object == a2.Object {
			return shapeChain
		}
	}
	return shapeNone
}
