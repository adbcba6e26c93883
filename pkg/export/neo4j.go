package export

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/soundprediction/kgraph/pkg/config"
	"github.com/soundprediction/kgraph/pkg/types"
)

// nodeBaseLabel is attached to every pushed node so edges can MATCH on id.
const nodeBaseLabel = "KGNode"

// Neo4jExporter pushes graph content into a Neo4j database with MERGE, so
// repeated pushes update rather than duplicate.
type Neo4jExporter struct {
	client   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewNeo4jExporter opens a driver for cfg. Connectivity is not checked
// until the first Push.
func NewNeo4jExporter(cfg config.Neo4jConfig, logger *slog.Logger) (*Neo4jExporter, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	database := cfg.Database
	if database == "" {
		database = "neo4j"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Neo4jExporter{
		client:   driver,
		database: database,
		logger:   logger.With("component", "neo4j_exporter"),
	}, nil
}

// Push merges every node, then every edge whose endpoints are present in
// data. It returns the number of nodes and edges written.
func (e *Neo4jExporter) Push(ctx context.Context, data *types.GraphData) (int, int, error) {
	if data == nil {
		return 0, 0, nil
	}
	if err := e.client.VerifyConnectivity(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	session := e.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: e.database})
	defer session.Close(ctx)

	nodeBatches := nodeParams(data.Nodes)
	edgeBatches := edgeParams(data.Edges, nodeIndex(data.Nodes))

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, label := range sortedBatchKeys(nodeBatches) {
			query := fmt.Sprintf(`
				UNWIND $rows AS row
				MERGE (n:%s {id: row.id})
				SET n:%s
				SET n.label = row.label, n.confidence = row.confidence, n.source = row.source
				SET n += row.properties
			`, nodeBaseLabel, cypherName(label))
			if _, err := tx.Run(ctx, query, map[string]any{"rows": nodeBatches[label]}); err != nil {
				return nil, err
			}
		}
		for _, relType := range sortedBatchKeys(edgeBatches) {
			query := fmt.Sprintf(`
				UNWIND $rows AS row
				MATCH (a:%[1]s {id: row.from}), (b:%[1]s {id: row.to})
				MERGE (a)-[r:%[2]s {id: row.id}]->(b)
				SET r.weight = row.weight, r.confidence = row.confidence, r.bidirectional = row.bidirectional
				SET r += row.properties
			`, nodeBaseLabel, cypherName(relType))
			if _, err := tx.Run(ctx, query, map[string]any{"rows": edgeBatches[relType]}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to push graph to neo4j: %w", err)
	}

	nodes, edges := batchLen(nodeBatches), batchLen(edgeBatches)
	e.logger.Info("Pushed graph to neo4j", "database", e.database, "nodes", nodes, "edges", edges)
	return nodes, edges, nil
}

func (e *Neo4jExporter) Close(ctx context.Context) error {
	return e.client.Close(ctx)
}

// nodeParams groups node rows by node type, since labels cannot be query
// parameters.
func nodeParams(nodes []types.Node) map[string][]map[string]any {
	out := make(map[string][]map[string]any)
	for _, n := range nodes {
		label := string(n.Type)
		if label == "" {
			label = string(types.EntityNode)
		}
		out[label] = append(out[label], map[string]any{
			"id":         n.ID,
			"label":      n.Label,
			"confidence": n.Confidence,
			"source":     n.Source,
			"properties": propertyParams(n.Properties),
		})
	}
	return out
}

// edgeParams groups edge rows by relationship type. Edges with an endpoint
// outside nodes are dropped.
func edgeParams(edges []types.Edge, nodes map[string]types.Node) map[string][]map[string]any {
	out := make(map[string][]map[string]any)
	for _, e := range edges {
		if _, ok := nodes[e.From]; !ok {
			continue
		}
		if _, ok := nodes[e.To]; !ok {
			continue
		}
		relType := e.Predicate()
		out[relType] = append(out[relType], map[string]any{
			"id":            e.ID,
			"from":          e.From,
			"to":            e.To,
			"weight":        e.Weight,
			"confidence":    e.Confidence,
			"bidirectional": e.Bidirectional,
			"properties":    propertyParams(e.Properties),
		})
	}
	return out
}

func propertyParams(p types.Properties) map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v.Interface()
	}
	return out
}

func sortedBatchKeys(m map[string][]map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func batchLen(m map[string][]map[string]any) int {
	n := 0
	for _, rows := range m {
		n += len(rows)
	}
	return n
}
