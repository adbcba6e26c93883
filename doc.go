// Package kgraph provides an in-memory knowledge graph with pattern
// queries, rule-based inference, ontology validation and graph analytics.
//
// # Basic Usage
//
// Create a graph and add facts as triples or as explicit nodes and edges:
//
//	kg := kgraph.New(nil, slog.Default())
//	kg.AddTriple("Socrates", "IS_A", "Human")
//	kg.AddTriple("Human", "IS_A", "Mortal")
//
//	ada := kg.AddNode(types.NewNode("Ada Lovelace", types.EntityNode))
//	engine := kg.AddNode(types.NewNode("Analytical Engine", types.EntityNode))
//	kg.Connect(ada, types.RelatedTo, engine)
//
// # Querying
//
// Patterns bind variables (terms starting with '?') across edges:
//
//	q := query.NewBuilder().
//		Match("?x", "IS_A", "?y").
//		Filter(`confidence > 0.5`).
//		Limit(10).
//		Build()
//	result := kg.Query(q)
//
// # Inference
//
// RunInference forward-chains the enabled rules up to
// Config.InferenceDepth rounds. Inferred triples are kept apart from the
// asserted graph until MaterializeInferred turns them into edges:
//
//	for _, t := range kg.RunInference() {
//		fmt.Println(t, kg.Explain(t))
//	}
//	kg.MaterializeInferred()
//
// # Persistence and Snapshots
//
// Save and Load write JSON files. Snapshots capture the graph in memory and,
// when a Badger directory is configured, on disk:
//
//	id, err := kg.CreateSnapshot(ctx, "before-import")
//	...
//	err = kg.RestoreSnapshot(ctx, id)
//
// # Architecture
//
//   - pkg/store: node and edge storage with secondary indexes and snapshots
//   - pkg/query: pattern matching, CEL filters, traversal and the query builder
//   - pkg/inference: transitivity, symmetry, inverse and inheritance rules
//   - pkg/ontology: class and property definitions used for validation
//   - pkg/algo, pkg/community: paths, centrality and community detection
//   - pkg/semantic, pkg/embedder: lexical and embedding-based ranking
//   - pkg/export, pkg/persist: Turtle, JSON, Cypher, OWL, Parquet, Neo4j and Badger
//   - pkg/server, cmd/kgraph: the HTTP API and command-line tool
package kgraph
