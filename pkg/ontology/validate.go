package ontology

import (
	"github.com/soundprediction/kgraph/pkg/types"
)

// Validation messages.
const (
	MsgEmptyLabel      = "Node has empty label"
	MsgMissingEndpoint = "Edge has missing endpoint"
	MsgUnknownNode     = "Edge references unknown node"
	MsgUnknownClass    = "Node references unknown ontology class"
)

// ClassProperty is the node property naming an ontology class.
const ClassProperty = "class"

// Validate returns advisory findings about nodes and edges. It never
// modifies or rejects anything:
//   - nodes with an empty label
//   - edges with an empty endpoint id
//   - edges naming a node that is not in nodes
//   - nodes whose "class" property names a class the ontology lacks, when
//     the ontology defines any classes
func (o *Ontology) Validate(nodes []types.Node, edges []types.Edge) []types.ValidationError {
	o.mu.RLock()
	defer o.mu.RUnlock()

	known := make(map[string]struct{}, len(nodes))
	var findings []types.ValidationError
	for _, n := range nodes {
		known[n.ID] = struct{}{}
		if n.Label == "" {
			findings = append(findings, types.ValidationError{ID: n.ID, Message: MsgEmptyLabel})
		}
		if len(o.classes) == 0 {
			continue
		}
		if v, ok := n.Properties[ClassProperty]; ok {
			if _, defined := o.classes[v.String()]; !defined {
				findings = append(findings, types.ValidationError{ID: n.ID, Message: MsgUnknownClass, Property: ClassProperty})
			}
		}
	}

	for _, e := range edges {
		if e.From == "" || e.To == "" {
			findings = append(findings, types.ValidationError{ID: e.ID, Message: MsgMissingEndpoint})
			continue
		}
		if _, ok := known[e.From]; !ok {
			findings = append(findings, types.ValidationError{ID: e.ID, Message: MsgUnknownNode, Property: "from"})
		}
		if _, ok := known[e.To]; !ok {
			findings = append(findings, types.ValidationError{ID: e.ID, Message: MsgUnknownNode, Property: "to"})
		}
	}
	return findings
}
