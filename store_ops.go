package kgraph

import (
	"github.com/soundprediction/kgraph/pkg/types"
)

// Store pass-throughs. They inherit the store contract: adds never fail,
// lookups report absence with a bool, removals are no-ops on unknown ids.

func (kg *KnowledgeGraph) AddNode(node types.Node) string { return kg.store.AddNode(node) }

func (kg *KnowledgeGraph) GetNode(id string) (types.Node, bool) { return kg.store.GetNode(id) }

func (kg *KnowledgeGraph) UpdateNode(node types.Node) bool { return kg.store.UpdateNode(node) }

// RemoveNode removes the node and every edge naming it.
func (kg *KnowledgeGraph) RemoveNode(id string) bool { return kg.store.RemoveNode(id) }

func (kg *KnowledgeGraph) AddEdge(edge types.Edge) string { return kg.store.AddEdge(edge) }

// Connect adds an edge with default weight and confidence.
func (kg *KnowledgeGraph) Connect(from string, edgeType types.EdgeType, to string) string {
	return kg.store.Connect(from, edgeType, to)
}

func (kg *KnowledgeGraph) GetEdge(id string) (types.Edge, bool) { return kg.store.GetEdge(id) }

func (kg *KnowledgeGraph) UpdateEdge(edge types.Edge) bool { return kg.store.UpdateEdge(edge) }

func (kg *KnowledgeGraph) RemoveEdge(id string) bool { return kg.store.RemoveEdge(id) }

// AddTriple finds or creates entity nodes by label and links them.
func (kg *KnowledgeGraph) AddTriple(subject, predicate, object string) string {
	return kg.store.AddTriple(subject, predicate, object)
}

// AddTripleWithConfidence is AddTriple with the edge confidence set.
func (kg *KnowledgeGraph) AddTripleWithConfidence(subject, predicate, object string, confidence float64) string {
	return kg.store.AddTripleWithConfidence(subject, predicate, object, confidence)
}

// Triples lists asserted triples. Empty arguments match anything.
func (kg *KnowledgeGraph) Triples(subject, predicate, object string) []types.Triple {
	return kg.store.Triples(subject, predicate, object)
}

func (kg *KnowledgeGraph) Nodes() []types.Node { return kg.store.Nodes() }

func (kg *KnowledgeGraph) Edges() []types.Edge { return kg.store.Edges() }

func (kg *KnowledgeGraph) NodeCount() int { return kg.store.NodeCount() }

func (kg *KnowledgeGraph) EdgeCount() int { return kg.store.EdgeCount() }

func (kg *KnowledgeGraph) NodesByType(t types.NodeType) []types.Node { return kg.store.NodesByType(t) }

func (kg *KnowledgeGraph) NodesByLabel(label string) []types.Node {
	return kg.store.NodesByLabel(label)
}

func (kg *KnowledgeGraph) EdgesFrom(id string) []types.Edge { return kg.store.EdgesFrom(id) }

func (kg *KnowledgeGraph) EdgesTo(id string) []types.Edge { return kg.store.EdgesTo(id) }

func (kg *KnowledgeGraph) EdgesBetween(from, to string) []types.Edge {
	return kg.store.EdgesBetween(from, to)
}

func (kg *KnowledgeGraph) EdgesByType(t types.EdgeType) []types.Edge { return kg.store.EdgesByType(t) }

// SearchNodes scores labels against query: exact 1.0, label contains
// query 0.8, query contains label 0.6.
func (kg *KnowledgeGraph) SearchNodes(query string, limit int) []types.Node {
	return kg.store.SearchNodes(query, limit)
}

// Query evaluates a pattern query.
func (kg *KnowledgeGraph) Query(q types.GraphQuery) types.QueryResult { return kg.query.Query(q) }

func (kg *KnowledgeGraph) QueryPattern(p types.QueryPattern) types.QueryResult {
	return kg.query.QueryPattern(p)
}

func (kg *KnowledgeGraph) FindPaths(q types.PathQuery) [][]string { return kg.query.FindPaths(q) }

func (kg *KnowledgeGraph) Neighbors(id string, edgeTypes ...types.EdgeType) []types.Node {
	return kg.query.Neighbors(id, edgeTypes...)
}

func (kg *KnowledgeGraph) TraverseBFS(start string, maxDepth int) []types.Node {
	return kg.query.TraverseBFS(start, maxDepth)
}

func (kg *KnowledgeGraph) TraverseDFS(start string, maxDepth int) []types.Node {
	return kg.query.TraverseDFS(start, maxDepth)
}

func (kg *KnowledgeGraph) Subgraph(center string, radius int) types.Subgraph {
	return kg.query.Subgraph(center, radius)
}

// Validate runs the ontology's advisory checks over the current graph.
func (kg *KnowledgeGraph) Validate() []types.ValidationError {
	return kg.ontology.Validate(kg.store.Nodes(), kg.store.Edges())
}

func (kg *KnowledgeGraph) IsValid() bool { return len(kg.Validate()) == 0 }
