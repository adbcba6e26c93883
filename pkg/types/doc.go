// Package types defines the core data types for the kgraph knowledge graph.
//
// This package contains the fundamental types used throughout kgraph:
//   - Node: a typed vertex with properties, confidence and provenance
//   - Edge: a directed, typed relation between two node ids
//   - PropertyValue: a tagged union of string, int, double, bool and list
//   - Triple: the (subject, predicate, object) view of an edge
//   - QueryPattern, GraphQuery, PathQuery and QueryResult for queries
//   - InferenceRule for the rule engine
//
// # Node and Edge Types
//
// NodeType and EdgeType are closed string enums. Parsing never fails:
// unknown node types map to ENTITY and unknown edge types map to CUSTOM.
//
//	t := types.ParseEdgeType("is_a")   // types.IsA
//	u := types.ParseEdgeType("likes")  // types.Custom
//
// # Validation
//
// Nodes and edges provide Validate() and ValidateForCreate(). The graph
// store itself accepts any value; validation is for import paths that
// must reject malformed input.
package types
