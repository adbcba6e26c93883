package store

import (
	"sort"
	"time"

	"github.com/soundprediction/kgraph/pkg/types"
)

type snapshot struct {
	id        string
	name      string
	createdAt time.Time
	nodes     map[string]types.Node
	edges     map[string]types.Edge
}

func (sn *snapshot) info() types.SnapshotInfo {
	return types.SnapshotInfo{
		ID:        sn.id,
		Name:      sn.name,
		CreatedAt: sn.createdAt,
		NodeCount: len(sn.nodes),
		EdgeCount: len(sn.edges),
	}
}

func copyNodes(src map[string]types.Node) map[string]types.Node {
	dst := make(map[string]types.Node, len(src))
	for id, n := range src {
		dst[id] = n.Clone()
	}
	return dst
}

func copyEdges(src map[string]types.Edge) map[string]types.Edge {
	dst := make(map[string]types.Edge, len(src))
	for id, e := range src {
		dst[id] = e.Clone()
	}
	return dst
}

// CreateSnapshot captures a deep copy of the current nodes and edges and
// returns the snapshot id. An empty name becomes "snapshot_<id>".
func (s *Store) CreateSnapshot(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	if name == "" {
		name = "snapshot_" + id
	}
	s.snapshots[id] = &snapshot{
		id:        id,
		name:      name,
		createdAt: s.now(),
		nodes:     copyNodes(s.nodes),
		edges:     copyEdges(s.edges),
	}
	s.logger.Debug("Created snapshot", "snapshot_id", id, "name", name, "nodes", len(s.nodes), "edges", len(s.edges))
	return id
}

// RestoreSnapshot replaces the graph with the snapshot content and rebuilds
// every index. Returns false when the id is unknown.
func (s *Store) RestoreSnapshot(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sn, ok := s.snapshots[id]
	if !ok {
		return false
	}
	s.nodes = copyNodes(sn.nodes)
	s.edges = copyEdges(sn.edges)
	s.rebuildIndices()
	s.logger.Debug("Restored snapshot", "snapshot_id", id, "nodes", len(s.nodes), "edges", len(s.edges))
	return true
}

// DeleteSnapshot discards a snapshot. Returns false when the id is unknown.
func (s *Store) DeleteSnapshot(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snapshots[id]; !ok {
		return false
	}
	delete(s.snapshots, id)
	return true
}

// ListSnapshots describes the stored snapshots, oldest first.
func (s *Store) ListSnapshots() []types.SnapshotInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.SnapshotInfo, 0, len(s.snapshots))
	for _, sn := range s.snapshots {
		out = append(out, sn.info())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SnapshotData returns the content of a snapshot without restoring it.
func (s *Store) SnapshotData(id string) (*types.GraphData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sn, ok := s.snapshots[id]
	if !ok {
		return nil, false
	}
	return graphData(sn.name, sn.nodes, sn.edges), true
}

func graphData(name string, nodes map[string]types.Node, edges map[string]types.Edge) *types.GraphData {
	data := &types.GraphData{
		Name:  name,
		Nodes: make([]types.Node, 0, len(nodes)),
		Edges: make([]types.Edge, 0, len(edges)),
	}
	for _, id := range sortedKeys(nodes) {
		data.Nodes = append(data.Nodes, nodes[id].Clone())
	}
	for _, id := range sortedKeys(edges) {
		data.Edges = append(data.Edges, edges[id].Clone())
	}
	return data
}
