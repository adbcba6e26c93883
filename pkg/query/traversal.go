package query

import (
	"slices"

	"github.com/soundprediction/kgraph/pkg/algo"
	"github.com/soundprediction/kgraph/pkg/store"
	"github.com/soundprediction/kgraph/pkg/types"
)

// Neighbors returns the predecessors and successors of id, each once, in
// ascending id order. When edgeTypes is non-empty only edges of those
// types are followed.
func (e *Engine) Neighbors(id string, edgeTypes ...types.EdgeType) []types.Node {
	var out []types.Node
	e.store.Read(func(tx store.Tx) {
		seen := make(map[string]struct{})
		for _, edge := range append(tx.Out(id), tx.In(id)...) {
			if len(edgeTypes) > 0 && !slices.Contains(edgeTypes, edge.Type) {
				continue
			}
			seen[edge.Other(id)] = struct{}{}
		}
		delete(seen, id)
		ids := make([]string, 0, len(seen))
		for n := range seen {
			ids = append(ids, n)
		}
		slices.Sort(ids)
		out = resolve(tx, ids)
	})
	return out
}

// TraverseBFS visits nodes breadth-first along outgoing edges, up to
// maxDepth hops from start, and returns them in visitation order.
func (e *Engine) TraverseBFS(start string, maxDepth int) []types.Node {
	var out []types.Node
	e.store.Read(func(tx store.Tx) {
		out = resolve(tx, bfs(tx, start, maxDepth))
	})
	return out
}

// TraverseDFS visits nodes depth-first along outgoing edges, up to maxDepth
// hops from start, and returns them in visitation order.
func (e *Engine) TraverseDFS(start string, maxDepth int) []types.Node {
	var out []types.Node
	e.store.Read(func(tx store.Tx) {
		if _, ok := tx.Node(start); !ok {
			return
		}
		visited := make(map[string]bool)
		var order []string
		var visit func(id string, depth int)
		visit = func(id string, depth int) {
			visited[id] = true
			order = append(order, id)
			if depth >= maxDepth {
				return
			}
			for _, edge := range tx.Out(id) {
				if next := edge.Other(id); !visited[next] {
					visit(next, depth+1)
				}
			}
		}
		visit(start, 0)
		out = resolve(tx, order)
	})
	return out
}

// Subgraph returns the nodes within radius hops of center together with
// every edge joining two of them.
func (e *Engine) Subgraph(center string, radius int) types.Subgraph {
	var sub types.Subgraph
	e.store.Read(func(tx store.Tx) {
		ids := bfs(tx, center, radius)
		in := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			in[id] = struct{}{}
		}
		sub.Nodes = resolve(tx, ids)
		seen := make(map[string]struct{})
		for _, id := range ids {
			for _, edge := range tx.Out(id) {
				if _, dup := seen[edge.ID]; dup {
					continue
				}
				_, fromIn := in[edge.From]
				_, toIn := in[edge.To]
				if fromIn && toIn {
					seen[edge.ID] = struct{}{}
					sub.Edges = append(sub.Edges, edge.Clone())
				}
			}
		}
	})
	return sub
}

// FindPaths answers a path query over the edges whose type is allowed. A
// shortest-path query returns at most one path; otherwise every simple
// path within MaxDepth hops is returned.
func (e *Engine) FindPaths(q types.PathQuery) [][]string {
	q = q.WithDefaults()
	var edges []types.Edge
	e.store.Read(func(tx store.Tx) {
		for _, id := range tx.EdgeIDs() {
			edge, _ := tx.Edge(id)
			edges = append(edges, edge)
		}
	})
	g := algo.WeightedFromEdges(edges, q.AllowedEdges)

	if q.IsShortest() {
		path := algo.ShortestPath(q.Start, q.End, g)
		if len(path) == 0 {
			return nil
		}
		return [][]string{path}
	}
	return algo.AllPaths(q.Start, q.End, g.Unweighted(), q.MaxDepth)
}

func bfs(tx store.Tx, start string, maxDepth int) []string {
	if _, ok := tx.Node(start); !ok {
		return nil
	}
	depth := map[string]int{start: 0}
	order := []string{start}
	for i := 0; i < len(order); i++ {
		cur := order[i]
		if depth[cur] >= maxDepth {
			continue
		}
		for _, edge := range tx.Out(cur) {
			next := edge.Other(cur)
			if _, seen := depth[next]; seen {
				continue
			}
			depth[next] = depth[cur] + 1
			order = append(order, next)
		}
	}
	return order
}

// resolve maps ids to cloned nodes, skipping ids with no stored node.
func resolve(tx store.Tx, ids []string) []types.Node {
	out := make([]types.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := tx.Node(id); ok {
			out = append(out, n.Clone())
		}
	}
	return out
}
