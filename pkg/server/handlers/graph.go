package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/kgraph"
	"github.com/soundprediction/kgraph/pkg/server/dto"
	"github.com/soundprediction/kgraph/pkg/types"
)

// GraphStore is the part of the knowledge graph the graph handler needs.
type GraphStore interface {
	kgraph.GraphReader
	kgraph.GraphWriter
}

// GraphHandler serves node, edge, triple and query requests.
type GraphHandler struct {
	graph GraphStore
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(g GraphStore) *GraphHandler {
	return &GraphHandler{graph: g}
}

// CreateNode handles POST /nodes
func (h *GraphHandler) CreateNode(c *gin.Context) {
	var req dto.NodeRequest
	if !bind(c, &req) {
		return
	}
	id := h.graph.AddNode(req.Node())
	c.JSON(http.StatusCreated, dto.IDResponse{ID: id})
}

// GetNode handles GET /nodes/:id
func (h *GraphHandler) GetNode(c *gin.Context) {
	n, ok := h.graph.GetNode(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, CodeNotFound, "node not found")
		return
	}
	c.JSON(http.StatusOK, n)
}

// UpdateNode handles PUT /nodes/:id. The path id wins over the body.
func (h *GraphHandler) UpdateNode(c *gin.Context) {
	var req dto.NodeRequest
	if !bind(c, &req) {
		return
	}
	req.ID = c.Param("id")
	if !h.graph.UpdateNode(req.Node()) {
		writeError(c, http.StatusNotFound, CodeNotFound, "node not found")
		return
	}
	n, _ := h.graph.GetNode(req.ID)
	c.JSON(http.StatusOK, n)
}

// DeleteNode handles DELETE /nodes/:id, removing incident edges too.
func (h *GraphHandler) DeleteNode(c *gin.Context) {
	if !h.graph.RemoveNode(c.Param("id")) {
		writeError(c, http.StatusNotFound, CodeNotFound, "node not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListNodes handles GET /nodes. The label, type and q parameters select
// exact label, node type and scored label search respectively; without
// any all nodes are returned.
func (h *GraphHandler) ListNodes(c *gin.Context) {
	limit, ok := intQuery(c, "limit", dto.DefaultSearchSize)
	if !ok {
		return
	}
	var nodes []types.Node
	switch {
	case c.Query("q") != "":
		nodes = h.graph.SearchNodes(c.Query("q"), limit)
	case c.Query("label") != "":
		nodes = h.graph.NodesByLabel(c.Query("label"))
	case c.Query("type") != "":
		nodes = h.graph.NodesByType(types.ParseNodeType(c.Query("type")))
	default:
		nodes = h.graph.Nodes()
	}
	if nodes == nil {
		nodes = []types.Node{}
	}
	c.JSON(http.StatusOK, nodes)
}

// CreateEdge handles POST /edges
func (h *GraphHandler) CreateEdge(c *gin.Context) {
	var req dto.EdgeRequest
	if !bind(c, &req) {
		return
	}
	id := h.graph.AddEdge(req.Edge())
	c.JSON(http.StatusCreated, dto.IDResponse{ID: id})
}

// GetEdge handles GET /edges/:id
func (h *GraphHandler) GetEdge(c *gin.Context) {
	e, ok := h.graph.GetEdge(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, CodeNotFound, "edge not found")
		return
	}
	c.JSON(http.StatusOK, e)
}

// DeleteEdge handles DELETE /edges/:id
func (h *GraphHandler) DeleteEdge(c *gin.Context) {
	if !h.graph.RemoveEdge(c.Param("id")) {
		writeError(c, http.StatusNotFound, CodeNotFound, "edge not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateTriple handles POST /triples
func (h *GraphHandler) CreateTriple(c *gin.Context) {
	var req dto.TripleRequest
	if !bind(c, &req) {
		return
	}
	id := h.graph.AddTriple(req.Subject, req.Predicate, req.Object)
	c.JSON(http.StatusCreated, dto.IDResponse{ID: id})
}

// ListTriples handles GET /triples?subject=&predicate=&object=
func (h *GraphHandler) ListTriples(c *gin.Context) {
	triples := h.graph.Triples(c.Query("subject"), c.Query("predicate"), c.Query("object"))
	if triples == nil {
		triples = []types.Triple{}
	}
	c.JSON(http.StatusOK, triples)
}

// Query handles POST /query
func (h *GraphHandler) Query(c *gin.Context) {
	var q types.GraphQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}
	if err := q.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, h.graph.Query(q))
}

// Paths handles POST /paths
func (h *GraphHandler) Paths(c *gin.Context) {
	var q types.PathQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}
	if q.Start == "" || q.End == "" {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, "start and end are required")
		return
	}
	paths := h.graph.FindPaths(q)
	if paths == nil {
		paths = [][]string{}
	}
	c.JSON(http.StatusOK, gin.H{"paths": paths})
}

// Neighbors handles GET /nodes/:id/neighbors?type=IS_A&type=PART_OF
func (h *GraphHandler) Neighbors(c *gin.Context) {
	var edgeTypes []types.EdgeType
	for _, t := range c.QueryArray("type") {
		edgeTypes = append(edgeTypes, types.ParseEdgeType(t))
	}
	nodes := h.graph.Neighbors(c.Param("id"), edgeTypes...)
	if nodes == nil {
		nodes = []types.Node{}
	}
	c.JSON(http.StatusOK, nodes)
}

// Subgraph handles GET /nodes/:id/subgraph?radius=1
func (h *GraphHandler) Subgraph(c *gin.Context) {
	radius, ok := intQuery(c, "radius", 1)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.graph.Subgraph(c.Param("id"), radius))
}

// Stats handles GET /stats
func (h *GraphHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.graph.Stats())
}
