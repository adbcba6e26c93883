package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/kgraph"
	"github.com/soundprediction/kgraph/pkg/server/dto"
)

// Ingester is the part of the knowledge graph that accepts free text.
type Ingester interface {
	kgraph.TextIngester
	Clear()
}

// IngestHandler handles data ingestion requests
type IngestHandler struct {
	graph  Ingester
	logger *slog.Logger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(g Ingester, logger *slog.Logger) *IngestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestHandler{graph: g, logger: logger.With("component", "ingest")}
}

// IngestText handles POST /ingest/text. Relations are extracted with the
// phrase matcher and added as triples unless dry_run is set.
func (h *IngestHandler) IngestText(c *gin.Context) {
	var req dto.IngestTextRequest
	if !bind(c, &req) {
		return
	}

	rels := h.graph.ExtractRelations(req.Text)
	if req.DryRun {
		c.JSON(http.StatusOK, dto.IngestResponse{
			Success:   true,
			Message:   fmt.Sprintf("Extracted %d relations", len(rels)),
			Relations: rels,
		})
		return
	}

	ids := h.graph.IngestText(req.Text)
	h.logger.Info("Ingested text", "relations", len(rels), "edges", len(ids))
	c.JSON(http.StatusCreated, dto.IngestResponse{
		Success:   true,
		Message:   fmt.Sprintf("Added %d relations", len(ids)),
		Relations: rels,
		EdgeIDs:   ids,
	})
}

// ClearData handles DELETE /ingest/clear. The confirm=true query
// parameter is required.
func (h *IngestHandler) ClearData(c *gin.Context) {
	if c.Query("confirm") != "true" {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest,
			"confirm=true must be given to clear the graph")
		return
	}
	h.graph.Clear()
	h.logger.Warn("Cleared graph via API")
	c.JSON(http.StatusOK, dto.IngestResponse{Success: true, Message: "Graph cleared"})
}
