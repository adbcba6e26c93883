package kgraph

import (
	"context"
	"fmt"
	"slices"

	"github.com/soundprediction/kgraph/pkg/algo"
	"github.com/soundprediction/kgraph/pkg/community"
	"github.com/soundprediction/kgraph/pkg/inference"
	"github.com/soundprediction/kgraph/pkg/semantic"
	"github.com/soundprediction/kgraph/pkg/types"
)

// RunInference forward-chains over the current graph for at most
// Config.InferenceDepth rounds and remembers the result. Nothing is
// written to the store; see MaterializeInferred.
func (kg *KnowledgeGraph) RunInference() []types.Triple {
	if !kg.config.EnableInference {
		kg.logger.Debug("Inference disabled, skipping")
		return nil
	}
	depth := kg.config.InferenceDepth
	if depth <= 0 {
		depth = inference.DefaultMaxIterations
	}

	data := kg.store.Data()
	triples := kg.inference.ForwardChain(data.Nodes, data.Edges, depth)
	if !kg.config.EnableProvenance {
		for i := range triples {
			triples[i].DerivedBy = ""
		}
	}

	kg.mu.Lock()
	kg.inferred = triples
	kg.mu.Unlock()

	kg.logger.Info("Inference complete", "inferred", len(triples), "depth", depth)
	return slices.Clone(triples)
}

// InferredTriples returns the triples produced by the last RunInference.
func (kg *KnowledgeGraph) InferredTriples() []types.Triple {
	kg.mu.RLock()
	defer kg.mu.RUnlock()
	return slices.Clone(kg.inferred)
}

// MaterializeInferred adds an edge for every remembered inferred triple
// whose subject and object labels resolve to stored nodes and which is not
// already asserted. It returns the number of edges added.
func (kg *KnowledgeGraph) MaterializeInferred() int {
	added := 0
	for _, t := range kg.InferredTriples() {
		from, ok := kg.resolveLabel(t.Subject)
		if !ok {
			continue
		}
		to, ok := kg.resolveLabel(t.Object)
		if !ok {
			continue
		}

		edge := types.NewEdge(from, types.ParseEdgeType(t.Predicate), to)
		if edge.Type == types.Custom && t.Predicate != string(types.Custom) {
			edge.CustomLabel = t.Predicate
		}
		if kg.hasEdge(edge) {
			continue
		}
		edge.Confidence = t.Confidence
		edge.Source = inference.InferredSource
		if kg.config.EnableProvenance && t.DerivedBy != "" {
			edge.Properties = types.Properties{"derived_by": types.StringValue(t.DerivedBy)}
		}
		kg.store.AddEdge(edge)
		added++
	}
	if added > 0 {
		kg.logger.Info("Materialized inferred edges", "added", added)
	}
	return added
}

// Explain describes which rule produced an inferred triple.
func (kg *KnowledgeGraph) Explain(t types.Triple) string {
	return kg.inference.Explain(t)
}

// resolveLabel returns the first node, in id order, labelled label.
func (kg *KnowledgeGraph) resolveLabel(label string) (string, bool) {
	nodes := kg.store.NodesByLabel(label)
	if len(nodes) == 0 {
		return "", false
	}
	return nodes[0].ID, true
}

func (kg *KnowledgeGraph) hasEdge(candidate types.Edge) bool {
	for _, e := range kg.store.EdgesBetween(candidate.From, candidate.To) {
		if e.Predicate() == candidate.Predicate() {
			return true
		}
	}
	return false
}

// SemanticSearch ranks every node against query with the configured
// ranker and returns at most topK nodes, best first.
func (kg *KnowledgeGraph) SemanticSearch(ctx context.Context, query string, topK int) ([]types.Node, error) {
	nodes := kg.store.Nodes()
	ranked, err := kg.ranker.Rank(ctx, query, nodes, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to rank nodes: %w", err)
	}
	byID := make(map[string]types.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	out := make([]types.Node, 0, len(ranked))
	for _, r := range ranked {
		if n, ok := byID[r.ID]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// FindDuplicates compares every pair of stored nodes and returns the pairs
// scoring at least threshold.
func (kg *KnowledgeGraph) FindDuplicates(ctx context.Context, threshold float64) ([]semantic.DuplicatePair, error) {
	nodes := kg.store.Nodes()
	pairs, err := kg.ranker.FindDuplicates(ctx, nodes, nodes, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to find duplicates: %w", err)
	}
	return pairs, nil
}

// Answer summarizes the nodes most relevant to question.
func (kg *KnowledgeGraph) Answer(question string) string {
	return semantic.Answer(question, kg.store.Nodes(), kg.store.Edges())
}

// ExtractRelations finds relation phrases in text without touching the
// graph.
func (kg *KnowledgeGraph) ExtractRelations(text string) []semantic.Relation {
	return semantic.ExtractRelations(text)
}

// IngestText extracts relations from text and adds each as a triple. It
// returns the ids of the new edges.
func (kg *KnowledgeGraph) IngestText(text string) []string {
	rels := semantic.ExtractRelations(text)
	ids := make([]string, 0, len(rels))
	for _, r := range rels {
		ids = append(ids, kg.store.AddTripleWithConfidence(r.Subject, string(r.Predicate), r.Object, r.Confidence))
	}
	kg.logger.Debug("Ingested text", "relations", len(ids))
	return ids
}

// PageRank scores every node, using damping 0.85 and 100 iterations.
func (kg *KnowledgeGraph) PageRank() map[string]float64 {
	return algo.PageRank(kg.graph(), algo.DefaultDamping, algo.DefaultIterations)
}

// Centrality returns normalized betweenness centrality.
func (kg *KnowledgeGraph) Centrality() map[string]float64 {
	return algo.Betweenness(kg.graph())
}

func (kg *KnowledgeGraph) Closeness() map[string]float64 {
	return algo.Closeness(kg.graph())
}

// Communities partitions the graph with Louvain.
func (kg *KnowledgeGraph) Communities() ([]community.Community, error) {
	return kg.buildCommunities(community.MethodLouvain)
}

// LabelCommunities partitions the graph with label propagation.
func (kg *KnowledgeGraph) LabelCommunities() ([]community.Community, error) {
	return kg.buildCommunities(community.MethodLabelPropagation)
}

// buildCommunities runs over the same live graph as the other analytics.
func (kg *KnowledgeGraph) buildCommunities(method community.Method) ([]community.Community, error) {
	data := kg.store.Data()
	ids := make([]string, 0, len(data.Nodes))
	for _, n := range data.Nodes {
		ids = append(ids, n.ID)
	}
	return kg.communities.BuildCommunities(ids, liveEdges(data), method)
}

// graph builds the adjacency of the asserted edges whose endpoints exist,
// including isolated nodes.
func (kg *KnowledgeGraph) graph() algo.Graph {
	data := kg.store.Data()
	g := algo.FromEdges(liveEdges(data))
	for _, n := range data.Nodes {
		if _, ok := g[n.ID]; !ok {
			g[n.ID] = nil
		}
	}
	return g
}

func liveEdges(data *types.GraphData) []types.Edge {
	ids := make(map[string]struct{}, len(data.Nodes))
	for _, n := range data.Nodes {
		ids[n.ID] = struct{}{}
	}
	out := make([]types.Edge, 0, len(data.Edges))
	for _, e := range data.Edges {
		_, okFrom := ids[e.From]
		_, okTo := ids[e.To]
		if okFrom && okTo {
			out = append(out, e)
		}
	}
	return out
}
