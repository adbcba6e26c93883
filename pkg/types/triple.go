package types

import "fmt"

// Triple is a (subject, predicate, object) projection of an edge, with
// labels in place of node ids.
type Triple struct {
	Subject    string  `json:"subject"`
	Predicate  string  `json:"predicate"`
	Object     string  `json:"object"`
	Confidence float64 `json:"confidence"`
	// DerivedBy holds the id of the rule that produced an inferred triple.
	DerivedBy string `json:"derived_by,omitempty"`
}

// TripleFromEdge projects an edge using the labels of its endpoints.
func TripleFromEdge(from Node, edge Edge, to Node) Triple {
	return Triple{
		Subject:    from.Label,
		Predicate:  edge.Predicate(),
		Object:     to.Label,
		Confidence: edge.Confidence,
	}
}

// Key identifies a triple for deduplication.
func (t Triple) Key() string {
	return t.Subject + "|" + t.Predicate + "|" + t.Object
}

// String renders the triple as (s) --[p]--> (o), appending the confidence
// when it is below 1.
func (t Triple) String() string {
	s := fmt.Sprintf("(%s) --[%s]--> (%s)", t.Subject, t.Predicate, t.Object)
	if t.Confidence < 1.0 {
		s += fmt.Sprintf(" [conf: %.2f]", t.Confidence)
	}
	return s
}
