package kgraph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"

	"github.com/soundprediction/kgraph/pkg/export"
	"github.com/soundprediction/kgraph/pkg/types"
)

// Data returns a deep copy of the graph named after the configuration.
func (kg *KnowledgeGraph) Data() *types.GraphData {
	data := kg.store.Data()
	data.Name = kg.config.Name
	return data
}

// Export writes the graph in the named format: turtle (ttl, rdf), json,
// cypher or owl. OWL writes the ontology rather than the instance data.
func (kg *KnowledgeGraph) Export(w io.Writer, format string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	ns := kg.config.Namespace
	if ns == "" {
		ns = export.DefaultNamespace
	}
	return export.Write(w, f, kg.Data(), kg.ontology, ns)
}

// ImportJSON adds the nodes and edges of a JSON document, keeping their
// ids. Existing items with the same ids are overwritten.
func (kg *KnowledgeGraph) ImportJSON(r io.Reader) (nodes, edges int, err error) {
	data, err := export.ImportJSON(r)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to import json: %w", err)
	}
	return kg.addAll(data)
}

// ImportTurtle adds the nodes and edges described by a Turtle document.
func (kg *KnowledgeGraph) ImportTurtle(r io.Reader) (nodes, edges int, err error) {
	data, err := export.ImportTurtle(r)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to import turtle: %w", err)
	}
	return kg.addAll(data)
}

func (kg *KnowledgeGraph) addAll(data *types.GraphData) (int, int, error) {
	for _, n := range data.Nodes {
		kg.store.AddNode(n)
	}
	for _, e := range data.Edges {
		kg.store.AddEdge(e)
	}
	kg.logger.Info("Imported graph data", "nodes", len(data.Nodes), "edges", len(data.Edges))
	return len(data.Nodes), len(data.Edges), nil
}

// WriteParquet writes node, edge and triple tables to dir. The triple table
// holds asserted triples followed by the remembered inferred ones.
func (kg *KnowledgeGraph) WriteParquet(ctx context.Context, dir string) error {
	w, err := export.NewParquetWriter(dir)
	if err != nil {
		return err
	}
	data := kg.Data()
	if err := w.WriteNodes(ctx, data.Nodes); err != nil {
		return err
	}
	if err := w.WriteEdges(ctx, data.Edges); err != nil {
		return err
	}
	triples := append(kg.store.Triples("", "", ""), kg.InferredTriples()...)
	if err := w.WriteTriples(ctx, triples); err != nil {
		return err
	}
	kg.logger.Info("Saved parquet tables", "dir", dir, "triples", len(triples))
	return nil
}

// PushNeo4j merges the graph into Neo4j through exporter.
func (kg *KnowledgeGraph) PushNeo4j(ctx context.Context, exporter *export.Neo4jExporter) (nodes, edges int, err error) {
	return exporter.Push(ctx, kg.Data())
}

// Save writes the graph as JSON to path, or to Config.StoragePath when path
// is empty.
func (kg *KnowledgeGraph) Save(ctx context.Context, path string) error {
	if path == "" {
		path = kg.config.StoragePath
	}
	if err := kg.files.Save(ctx, path, kg.Data()); err != nil {
		return err
	}
	kg.logger.Info("Saved graph", "path", path)
	return nil
}

// Load replaces the graph with the JSON document at path, or at
// Config.StoragePath when path is empty. Remembered inferences are dropped.
func (kg *KnowledgeGraph) Load(ctx context.Context, path string) error {
	if path == "" {
		path = kg.config.StoragePath
	}
	data, err := kg.files.Load(ctx, path)
	if err != nil {
		return err
	}
	kg.store.Replace(data)
	kg.resetInferred()
	kg.logger.Info("Loaded graph", "path", path, "nodes", len(data.Nodes), "edges", len(data.Edges))
	return nil
}

// CreateSnapshot captures the graph under name and returns the snapshot id.
// With a snapshot store configured the snapshot is also persisted.
func (kg *KnowledgeGraph) CreateSnapshot(ctx context.Context, name string) (string, error) {
	if !kg.config.EnableVersioning {
		return "", ErrVersioningDisabled
	}
	id := kg.store.CreateSnapshot(name)
	if kg.snapshots == nil {
		return id, nil
	}

	data, _ := kg.store.SnapshotData(id)
	info := types.SnapshotInfo{ID: id, Name: name}
	for _, s := range kg.store.ListSnapshots() {
		if s.ID == id {
			info = s
			break
		}
	}
	if err := kg.snapshots.SaveSnapshot(ctx, info, data); err != nil {
		return id, fmt.Errorf("failed to persist snapshot: %w", err)
	}
	kg.logger.Info("Persisted snapshot", "id", id, "name", name)
	return id, nil
}

// RestoreSnapshot replaces the graph with a snapshot held in memory or, if
// absent there, in the snapshot store.
func (kg *KnowledgeGraph) RestoreSnapshot(ctx context.Context, id string) error {
	if kg.store.RestoreSnapshot(id) {
		kg.resetInferred()
		kg.logger.Info("Restored snapshot", "id", id)
		return nil
	}
	if kg.snapshots == nil {
		return fmt.Errorf("snapshot %q: %w", id, ErrSnapshotNotFound)
	}
	data, _, err := kg.snapshots.LoadSnapshot(ctx, id)
	if err != nil {
		return err
	}
	kg.store.Replace(data)
	kg.resetInferred()
	kg.logger.Info("Restored persisted snapshot", "id", id)
	return nil
}

// ListSnapshots returns in-memory and persisted snapshots, each id once,
// ordered by creation time.
func (kg *KnowledgeGraph) ListSnapshots(ctx context.Context) ([]types.SnapshotInfo, error) {
	out := kg.store.ListSnapshots()
	if kg.snapshots != nil {
		persisted, err := kg.snapshots.ListSnapshots(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range persisted {
			if !slices.ContainsFunc(out, func(s types.SnapshotInfo) bool { return s.ID == p.ID }) {
				out = append(out, p)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteSnapshot removes a snapshot from memory and from the snapshot
// store.
func (kg *KnowledgeGraph) DeleteSnapshot(ctx context.Context, id string) error {
	found := kg.store.DeleteSnapshot(id)
	if kg.snapshots != nil {
		err := kg.snapshots.DeleteSnapshot(ctx, id)
		switch {
		case err == nil:
			found = true
		case !errors.Is(err, ErrSnapshotNotFound):
			return err
		}
	}
	if !found {
		return fmt.Errorf("snapshot %q: %w", id, ErrSnapshotNotFound)
	}
	return nil
}
