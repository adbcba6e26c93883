package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/kgraph"
	"github.com/soundprediction/kgraph/pkg/server/dto"
	"github.com/soundprediction/kgraph/pkg/types"
)

// Reasoning is the part of the knowledge graph serving inference,
// validation and analytics.
type Reasoning interface {
	kgraph.Reasoner
	kgraph.Analyzer
}

// ReasoningHandler handles inference, validation and analytics requests
type ReasoningHandler struct {
	graph Reasoning
}

// NewReasoningHandler creates a new reasoning handler
func NewReasoningHandler(g Reasoning) *ReasoningHandler {
	return &ReasoningHandler{graph: g}
}

// RunInference handles POST /inference/run. With ?materialize=true the
// inferred triples are also added as edges.
func (h *ReasoningHandler) RunInference(c *gin.Context) {
	triples := h.graph.RunInference()
	if triples == nil {
		triples = []types.Triple{}
	}
	resp := dto.InferenceResponse{Triples: triples}
	if c.Query("materialize") == "true" {
		resp.Materialized = h.graph.MaterializeInferred()
	}
	c.JSON(http.StatusOK, resp)
}

// InferredTriples handles GET /inference/triples
func (h *ReasoningHandler) InferredTriples(c *gin.Context) {
	triples := h.graph.InferredTriples()
	if triples == nil {
		triples = []types.Triple{}
	}
	c.JSON(http.StatusOK, triples)
}

// Validate handles GET /validate
func (h *ReasoningHandler) Validate(c *gin.Context) {
	findings := h.graph.Validate()
	if findings == nil {
		findings = []types.ValidationError{}
	}
	c.JSON(http.StatusOK, dto.ValidationResponse{Valid: len(findings) == 0, Findings: findings})
}

// PageRank handles GET /analytics/pagerank
func (h *ReasoningHandler) PageRank(c *gin.Context) {
	c.JSON(http.StatusOK, h.graph.PageRank())
}

// Centrality handles GET /analytics/centrality?kind=betweenness|closeness
func (h *ReasoningHandler) Centrality(c *gin.Context) {
	switch strings.ToLower(c.DefaultQuery("kind", "betweenness")) {
	case "betweenness":
		c.JSON(http.StatusOK, h.graph.Centrality())
	case "closeness":
		c.JSON(http.StatusOK, h.graph.Closeness())
	default:
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, "kind must be betweenness or closeness")
	}
}

// Communities handles GET /analytics/communities?method=louvain|label_propagation
func (h *ReasoningHandler) Communities(c *gin.Context) {
	var (
		result any
		err    error
	)
	switch strings.ToLower(c.DefaultQuery("method", "louvain")) {
	case "louvain":
		result, err = h.graph.Communities()
	case "label_propagation", "label":
		result, err = h.graph.LabelCommunities()
	default:
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, "method must be louvain or label_propagation")
		return
	}
	if err != nil {
		writeInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Duplicates handles GET /analytics/duplicates?threshold=0.9
func (h *ReasoningHandler) Duplicates(c *gin.Context) {
	threshold := 0.9
	if raw := c.Query("threshold"); raw != "" {
		var ok bool
		if threshold, ok = parseUnit(raw); !ok {
			writeError(c, http.StatusBadRequest, CodeInvalidRequest, "threshold must be within [0, 1]")
			return
		}
	}
	pairs, err := h.graph.FindDuplicates(c.Request.Context(), threshold)
	if err != nil {
		writeInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, pairs)
}
