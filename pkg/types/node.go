package types

import (
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// NodeType represents the kind of a node.
type NodeType string

const (
	// EntityNode is a concrete thing. Unknown type names parse to it.
	EntityNode NodeType = "ENTITY"
	// ConceptNode is an abstract idea or class.
	ConceptNode NodeType = "CONCEPT"
	// EventNode is something that happens in time.
	EventNode NodeType = "EVENT"
	// PropertyNode names an attribute.
	PropertyNode NodeType = "PROPERTY"
	// LiteralNode holds a literal value.
	LiteralNode NodeType = "LITERAL"
	// RuleNode represents a stored rule.
	RuleNode NodeType = "RULE"
	// QueryNode represents a stored query.
	QueryNode NodeType = "QUERY"
	// ContextNode scopes other nodes.
	ContextNode NodeType = "CONTEXT"
)

var nodeTypes = []NodeType{
	EntityNode, ConceptNode, EventNode, PropertyNode,
	LiteralNode, RuleNode, QueryNode, ContextNode,
}

// NodeTypes lists every node type in declaration order.
func NodeTypes() []NodeType {
	return slices.Clone(nodeTypes)
}

// ParseNodeType maps a type name to its NodeType. The match is case
// insensitive and unknown names map to EntityNode.
func ParseNodeType(s string) NodeType {
	t := NodeType(strings.ToUpper(strings.TrimSpace(s)))
	if slices.Contains(nodeTypes, t) {
		return t
	}
	return EntityNode
}

func (t NodeType) String() string { return string(t) }

// Node is a vertex of the knowledge graph.
type Node struct {
	ID         string     `json:"id" mapstructure:"id"`
	Label      string     `json:"label" mapstructure:"label"`
	Type       NodeType   `json:"type" mapstructure:"type"`
	Properties Properties `json:"properties,omitempty" mapstructure:"properties"`
	Embedding  []float32  `json:"embedding,omitempty" mapstructure:"embedding"`
	Confidence float64    `json:"confidence" mapstructure:"confidence"`
	Source     string     `json:"source,omitempty" mapstructure:"source"`
	CreatedAt  time.Time  `json:"created_at" mapstructure:"created_at"`
	ModifiedAt time.Time  `json:"modified_at" mapstructure:"modified_at"`
}

// NewNode returns an entity-typed node with default confidence.
func NewNode(label string, nodeType NodeType) Node {
	if nodeType == "" {
		nodeType = EntityNode
	}
	return Node{Label: label, Type: nodeType, Confidence: 1.0}
}

// UnmarshalJSON decodes a node, keeping the NewNode confidence when the
// document leaves it out.
func (n *Node) UnmarshalJSON(data []byte) error {
	type plain Node
	p := plain{Confidence: 1.0}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*n = Node(p)
	return nil
}

// Validate checks if the Node has all required fields set.
func (n *Node) Validate() error {
	if n.Label == "" {
		return ErrEmptyLabel
	}
	if n.Confidence < 0 || n.Confidence > 1 {
		return ErrInvalidConfidence
	}
	return nil
}

// ValidateForCreate checks if the Node has all required fields for creation.
func (n *Node) ValidateForCreate() error {
	if n.ID == "" {
		return ErrEmptyID
	}
	return n.Validate()
}

func (n *Node) HasProperty(key string) bool {
	_, ok := n.Properties[key]
	return ok
}

func (n *Node) GetProperty(key string) (PropertyValue, bool) {
	v, ok := n.Properties[key]
	return v, ok
}

func (n *Node) SetProperty(key string, value PropertyValue) {
	if n.Properties == nil {
		n.Properties = make(Properties)
	}
	n.Properties[key] = value
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	n.Properties = n.Properties.Clone()
	n.Embedding = slices.Clone(n.Embedding)
	return n
}
