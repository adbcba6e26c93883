package store

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soundprediction/kgraph/pkg/types"
)

// idSet is the bucket type used by every secondary index.
type idSet map[string]struct{}

// Store is the authoritative in-memory container of nodes and edges.
//
// A single RWMutex guards the primary maps and every index, and each public
// method holds it for its whole duration, so every call observes and leaves
// a consistent state. Values returned to callers are deep copies.
type Store struct {
	mu     sync.RWMutex
	logger *slog.Logger

	nodes map[string]types.Node
	edges map[string]types.Edge

	labelIndex    map[string]idSet
	typeIndex     map[types.NodeType]idSet
	outIndex      map[string]idSet
	inIndex       map[string]idSet
	edgeTypeIndex map[types.EdgeType]idSet

	snapshots map[string]*snapshot

	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides id generation for nodes, edges and snapshots.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// New creates an empty store.
func New(logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		logger:    logger.With("component", "store"),
		snapshots: make(map[string]*snapshot),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()
	return s
}

// reset drops all nodes, edges and indices. Snapshots are kept.
func (s *Store) reset() {
	s.nodes = make(map[string]types.Node)
	s.edges = make(map[string]types.Edge)
	s.labelIndex = make(map[string]idSet)
	s.typeIndex = make(map[types.NodeType]idSet)
	s.outIndex = make(map[string]idSet)
	s.inIndex = make(map[string]idSet)
	s.edgeTypeIndex = make(map[types.EdgeType]idSet)
}

// AddNode stores a node and returns its id. A missing id is generated,
// timestamps are stamped and a zero confidence defaults to 1.
func (s *Store) AddNode(node types.Node) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addNodeLocked(node)
}

func (s *Store) addNodeLocked(node types.Node) string {
	node = node.Clone()
	if node.ID == "" {
		node.ID = s.newID()
	}
	if node.Type == "" {
		node.Type = types.EntityNode
	}
	now := s.now()
	node.CreatedAt = now
	node.ModifiedAt = now

	if old, ok := s.nodes[node.ID]; ok {
		s.unindexNode(old)
	}
	s.nodes[node.ID] = node
	s.indexNode(node)
	return node.ID
}

// GetNode returns a copy of the node with the given id.
func (s *Store) GetNode(id string) (types.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return types.Node{}, false
	}
	return n.Clone(), true
}

// UpdateNode replaces an existing node. CreatedAt is preserved and
// ModifiedAt refreshed. Returns false when the id is unknown.
func (s *Store) UpdateNode(node types.Node) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.nodes[node.ID]
	if !ok {
		return false
	}
	node = node.Clone()
	if node.Type == "" {
		node.Type = types.EntityNode
	}
	node.CreatedAt = old.CreatedAt
	node.ModifiedAt = s.now()

	s.unindexNode(old)
	s.nodes[node.ID] = node
	s.indexNode(node)
	return true
}

// RemoveNode deletes a node together with every edge naming it as an
// endpoint. Returns false when the id is unknown.
func (s *Store) RemoveNode(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return false
	}

	incident := make(idSet)
	for eid := range s.outIndex[id] {
		incident[eid] = struct{}{}
	}
	for eid := range s.inIndex[id] {
		incident[eid] = struct{}{}
	}
	for eid := range incident {
		s.removeEdgeLocked(eid)
	}

	s.unindexNode(node)
	delete(s.nodes, id)
	s.logger.Debug("Removed node", "node_id", id, "cascaded_edges", len(incident))
	return true
}

// AddEdge stores an edge and returns its id. Endpoints are not checked
// against stored nodes. Zero weight and confidence default to 1.
func (s *Store) AddEdge(edge types.Edge) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addEdgeLocked(edge)
}

func (s *Store) addEdgeLocked(edge types.Edge) string {
	edge = edge.Clone()
	if edge.ID == "" {
		edge.ID = s.newID()
	}
	if edge.Type == "" {
		edge.Type = types.RelatedTo
	}
	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = s.now()
	}
	if old, ok := s.edges[edge.ID]; ok {
		s.unindexEdge(old)
	}
	s.edges[edge.ID] = edge
	s.indexEdge(edge)
	return edge.ID
}

// Connect adds a default-weighted edge of the given type.
func (s *Store) Connect(from string, edgeType types.EdgeType, to string) string {
	return s.AddEdge(types.NewEdge(from, edgeType, to))
}

// GetEdge returns a copy of the edge with the given id.
func (s *Store) GetEdge(id string) (types.Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.edges[id]
	if !ok {
		return types.Edge{}, false
	}
	return e.Clone(), true
}

// UpdateEdge replaces an existing edge and re-indexes its adjacency.
// Returns false when the id is unknown.
func (s *Store) UpdateEdge(edge types.Edge) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.edges[edge.ID]
	if !ok {
		return false
	}
	edge = edge.Clone()
	if edge.Type == "" {
		edge.Type = types.RelatedTo
	}
	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = old.CreatedAt
	}
	s.unindexEdge(old)
	s.edges[edge.ID] = edge
	s.indexEdge(edge)
	return true
}

// RemoveEdge deletes an edge. Returns false when the id is unknown.
func (s *Store) RemoveEdge(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeEdgeLocked(id)
}

func (s *Store) removeEdgeLocked(id string) bool {
	edge, ok := s.edges[id]
	if !ok {
		return false
	}
	s.unindexEdge(edge)
	delete(s.edges, id)
	return true
}

// NodeCount returns the number of stored nodes.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// EdgeCount returns the number of stored edges.
func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

// Nodes returns copies of all nodes ordered by id.
func (s *Store) Nodes() []types.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Node, 0, len(s.nodes))
	for _, id := range sortedKeys(s.nodes) {
		out = append(out, s.nodes[id].Clone())
	}
	return out
}

// Edges returns copies of all edges ordered by id.
func (s *Store) Edges() []types.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Edge, 0, len(s.edges))
	for _, id := range sortedKeys(s.edges) {
		out = append(out, s.edges[id].Clone())
	}
	return out
}

// Clear removes all nodes, edges, indices and snapshots.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.snapshots = make(map[string]*snapshot)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
