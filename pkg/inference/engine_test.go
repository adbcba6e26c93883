package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/kgraph/pkg/types"
)

type fixture struct {
	nodes []types.Node
	edges []types.Edge
}

func (f *fixture) node(id, label string) {
	n := types.NewNode(label, types.EntityNode)
	n.ID = id
	f.nodes = append(f.nodes, n)
}

func (f *fixture) edge(id, from string, t types.EdgeType, to string, conf float64) {
	e := types.NewEdge(from, t, to)
	e.ID = id
	e.Confidence = conf
	f.edges = append(f.edges, e)
}

func findTriple(triples []types.Triple, s, p, o string) (types.Triple, bool) {
	for _, t := range triples {
		if t.Subject == s && t.Predicate == p && t.Object == o {
			return t, true
		}
	}
	return types.Triple{}, false
}

func socrates() *fixture {
	f := &fixture{}
	f.node("s", "Socrates")
	f.node("h", "Human")
	f.node("m", "Mortal")
	f.edge("e1", "s", types.IsA, "h", 1.0)
	f.edge("e2", "h", types.IsA, "m", 1.0)
	return f
}

func TestBuiltinRules(t *testing.T) {
	t.Parallel()
	e := New(nil)
	assert.Equal(t, 7, e.RuleCount())

	ids := make([]string, 0)
	for _, r := range e.Rules() {
		ids = append(ids, r.ID)
	}
	assert.Contains(t, ids, "transitivity_IS_A")
	assert.Contains(t, ids, "symmetry_SIMILAR_TO")
	assert.Contains(t, ids, "inverse_CAUSES_CAUSED_BY")
	assert.Contains(t, ids, "inverse_PART_OF_HAS_PART")

	r := TransitivityRule(types.IsA)
	assert.Equal(t, "Transitivity for IS_A", r.Name)
	assert.Equal(t, "Inverse: BEFORE <-> AFTER", InverseRule(types.Before, types.After).Name)
}

func TestSocratesTransitivity(t *testing.T) {
	t.Parallel()
	f := socrates()
	e := New(nil)

	got := e.Infer(f.nodes, f.edges)
	tr, ok := findTriple(got, "Socrates", "IS_A", "Mortal")
	require.True(t, ok)
	assert.InDelta(t, 0.9, tr.Confidence, 1e-9)
	assert.Equal(t, "transitivity_IS_A", tr.DerivedBy)
	assert.Equal(t, len(got), e.InferencesMade())
}

func TestSocratesForwardChainFixpoint(t *testing.T) {
	t.Parallel()
	f := socrates()
	e := New(nil)

	got := e.ForwardChain(f.nodes, f.edges, 10)
	require.Len(t, got, 1)
	assert.Equal(t, "(Socrates) --[IS_A]--> (Mortal) [conf: 0.90]", got[0].String())
}

func TestForwardChainDeepensTransitively(t *testing.T) {
	t.Parallel()
	f := &fixture{}
	for _, id := range []string{"a", "b", "c", "d"} {
		f.node(id, id)
	}
	f.edge("ab", "a", types.PartOf, "b", 1)
	f.edge("bc", "b", types.PartOf, "c", 1)
	f.edge("cd", "c", types.PartOf, "d", 1)

	e := New(nil)
	got := e.ForwardChain(f.nodes, f.edges, 10)

	ad, ok := findTriple(got, "a", "PART_OF", "d")
	require.True(t, ok)
	assert.InDelta(t, 0.81, ad.Confidence, 1e-9, "derived from an inferred edge")
	_, ok = findTriple(got, "d", "HAS_PART", "a")
	assert.True(t, ok, "inverse applies to inferred PART_OF edges")

	keys := make(map[string]bool)
	for _, tr := range got {
		assert.False(t, keys[tr.Key()], "duplicate %s", tr.Key())
		keys[tr.Key()] = true
	}

	once := New(nil).ForwardChain(f.nodes, f.edges, 1)
	_, ok = findTriple(once, "a", "PART_OF", "d")
	assert.False(t, ok, "one iteration only sees stated edges")
}

func TestForwardChainRestatesAssertedTriple(t *testing.T) {
	t.Parallel()
	f := &fixture{}
	f.node("a", "A")
	f.node("b", "B")
	f.node("c", "C")
	f.edge("ab", "a", types.IsA, "b", 1)
	f.edge("bc", "b", types.IsA, "c", 1)
	f.edge("ac", "a", types.IsA, "c", 1)

	e := New(nil)
	infer := e.Infer(f.nodes, f.edges)
	chained := New(nil).ForwardChain(f.nodes, f.edges, 10)

	for name, got := range map[string][]types.Triple{"infer": infer, "forward chain": chained} {
		tr, ok := findTriple(got, "A", "IS_A", "C")
		require.True(t, ok, name)
		assert.InDelta(t, 0.9, tr.Confidence, 1e-9, name)
	}
	assert.Len(t, chained, 1)
}

func TestRulesRunInRegistrationOrder(t *testing.T) {
	t.Parallel()
	f := socrates()
	e := New(nil)
	e.AddRule(types.InferenceRule{
		ID:   "urgent_is_a",
		Name: "Urgent IS_A chain",
		Antecedents: []types.QueryPattern{
			types.NewPattern("?a", types.IsA, "?b"),
			types.NewPattern("?b", types.IsA, "?c"),
		},
		Consequent:       types.NewPattern("?a", types.IsA, "?c"),
		ConfidenceFactor: 0.5,
		Priority:         100,
		Enabled:          true,
	})

	got := e.Infer(f.nodes, f.edges)
	require.Len(t, got, 2)
	assert.Equal(t, "transitivity_IS_A", got[0].DerivedBy)
	assert.Equal(t, "urgent_is_a", got[1].DerivedBy)
	bare := got[1]
	bare.DerivedBy = ""
	assert.Contains(t, e.Explain(bare), "(transitivity_IS_A)", "first rule to derive a triple explains it")
}

func TestSymmetryAndInverse(t *testing.T) {
	t.Parallel()
	f := &fixture{}
	f.node("r", "Rain")
	f.node("w", "Wet")
	f.node("c", "Cat")
	f.node("l", "Lion")
	f.edge("e1", "r", types.Causes, "w", 0.8)
	f.edge("e2", "c", types.SimilarTo, "l", 0.5)

	got := New(nil).Infer(f.nodes, f.edges)

	inv, ok := findTriple(got, "Wet", "CAUSED_BY", "Rain")
	require.True(t, ok)
	assert.InDelta(t, 0.8, inv.Confidence, 1e-9)

	sym, ok := findTriple(got, "Lion", "SIMILAR_TO", "Cat")
	require.True(t, ok)
	assert.InDelta(t, 0.5, sym.Confidence, 1e-9)
}

func TestTransitivitySkipsLoops(t *testing.T) {
	t.Parallel()
	f := &fixture{}
	f.node("a", "A")
	f.node("b", "B")
	f.edge("ab", "a", types.IsA, "b", 1)
	f.edge("ba", "b", types.IsA, "a", 1)

	got := New(nil).Infer(f.nodes, f.edges)
	_, ok := findTriple(got, "A", "IS_A", "A")
	assert.False(t, ok)
}

func TestInheritanceRule(t *testing.T) {
	t.Parallel()
	f := &fixture{}
	f.node("d", "Dog")
	f.node("m", "Mammal")
	f.node("f", "Fur")
	f.edge("e1", "d", types.IsA, "m", 1)
	f.edge("e2", "m", types.HasProperty, "f", 0.8)

	e := New(nil)
	_, ok := findTriple(e.Infer(f.nodes, f.edges), "Dog", "HAS_PROPERTY", "Fur")
	assert.False(t, ok, "inheritance is not registered by default")

	e.AddInheritanceRule()
	tr, ok := findTriple(e.Infer(f.nodes, f.edges), "Dog", "HAS_PROPERTY", "Fur")
	require.True(t, ok)
	assert.InDelta(t, 0.76, tr.Confidence, 1e-9)
}

func TestDisabledAndRemovedRules(t *testing.T) {
	t.Parallel()
	f := socrates()
	e := New(nil)

	require.True(t, e.EnableRule("transitivity_IS_A", false))
	assert.Empty(t, e.Infer(f.nodes, f.edges))
	require.True(t, e.EnableRule("transitivity_IS_A", true))
	assert.NotEmpty(t, e.Infer(f.nodes, f.edges))

	require.True(t, e.RemoveRule("transitivity_IS_A"))
	assert.False(t, e.RemoveRule("transitivity_IS_A"))
	assert.False(t, e.EnableRule("missing", true))
	assert.Empty(t, e.Infer(f.nodes, f.edges))
	assert.Equal(t, 6, e.RuleCount())
}

func TestMalformedRulesNeverFire(t *testing.T) {
	t.Parallel()
	f := socrates()
	e := New(nil)
	for _, r := range e.Rules() {
		e.RemoveRule(r.ID)
	}

	e.AddRule(types.InferenceRule{ID: "no-antecedents", Enabled: true, Consequent: types.NewPattern("?a", types.IsA, "?b")})
	e.AddRule(types.InferenceRule{
		ID:          "no-predicate",
		Enabled:     true,
		Antecedents: []types.QueryPattern{{Subject: "?a", Object: "?b"}},
		Consequent:  types.NewPattern("?b", types.IsA, "?a"),
	})
	e.AddRule(types.InferenceRule{
		ID:      "three-antecedents",
		Enabled: true,
		Antecedents: []types.QueryPattern{
			types.NewPattern("?a", types.IsA, "?b"),
			types.NewPattern("?b", types.IsA, "?c"),
			types.NewPattern("?c", types.IsA, "?d"),
		},
		Consequent: types.NewPattern("?a", types.IsA, "?d"),
	})
	e.AddRule(types.InferenceRule{
		ID:      "unjoined",
		Enabled: true,
		Antecedents: []types.QueryPattern{
			types.NewPattern("?a", types.IsA, "?b"),
			types.NewPattern("?c", types.PartOf, "?d"),
		},
		Consequent: types.NewPattern("?a", types.RelatedTo, "?d"),
	})

	assert.Empty(t, e.Infer(f.nodes, f.edges))
}

func TestInferSkipsDanglingEndpoints(t *testing.T) {
	t.Parallel()
	f := socrates()
	f.edge("e3", "m", types.IsA, "ghost", 1)

	got := New(nil).Infer(f.nodes, f.edges)
	for _, tr := range got {
		assert.NotEmpty(t, tr.Subject)
		assert.NotEmpty(t, tr.Object)
	}
}

func TestExplain(t *testing.T) {
	t.Parallel()
	f := socrates()
	e := New(nil)
	got := e.ForwardChain(f.nodes, f.edges, 0)
	require.NotEmpty(t, got)

	out := e.Explain(got[0])
	assert.Contains(t, out, "Triple: (Socrates) --[IS_A]--> (Mortal)")
	assert.Contains(t, out, "Inferred with confidence: 0.9000")
	assert.Contains(t, out, "Applied rule: Transitivity for IS_A (transitivity_IS_A)")

	unknown := e.Explain(types.Triple{Subject: "x", Predicate: "y", Object: "z", Confidence: 1})
	assert.Contains(t, unknown, "Applied rules: transitivity, symmetry, or inverse mapping")
}
