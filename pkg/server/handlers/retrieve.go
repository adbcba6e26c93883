package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/kgraph"
	"github.com/soundprediction/kgraph/pkg/server/dto"
	"github.com/soundprediction/kgraph/pkg/types"
)

// Retriever is the part of the knowledge graph serving search and answers.
type Retriever interface {
	SemanticSearch(ctx context.Context, query string, topK int) ([]types.Node, error)
	kgraph.TextIngester
}

// RetrieveHandler handles data retrieval requests
type RetrieveHandler struct {
	graph Retriever
}

// NewRetrieveHandler creates a new retrieve handler
func NewRetrieveHandler(g Retriever) *RetrieveHandler {
	return &RetrieveHandler{graph: g}
}

// Search handles GET /search?q=...&k=10
func (h *RetrieveHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, "q is required and cannot be empty")
		return
	}
	k, ok := intQuery(c, "k", dto.DefaultTopK)
	if !ok {
		return
	}
	nodes, err := h.graph.SemanticSearch(c.Request.Context(), query, k)
	if err != nil {
		writeInternal(c, err)
		return
	}
	if nodes == nil {
		nodes = []types.Node{}
	}
	c.JSON(http.StatusOK, nodes)
}

// Answer handles POST /answer
func (h *RetrieveHandler) Answer(c *gin.Context) {
	var req dto.AnswerRequest
	if !bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, dto.AnswerResponse{
		Question: req.Question,
		Answer:   h.graph.Answer(req.Question),
	})
}

// parseUnit parses a float within [0, 1].
func parseUnit(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 1 {
		return 0, false
	}
	return v, true
}
