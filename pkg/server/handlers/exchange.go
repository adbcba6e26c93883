package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/kgraph"
	"github.com/soundprediction/kgraph/pkg/export"
	"github.com/soundprediction/kgraph/pkg/server/dto"
	"github.com/soundprediction/kgraph/pkg/types"
)

var contentTypes = map[export.Format]string{
	export.FormatTurtle: "text/turtle; charset=utf-8",
	export.FormatJSON:   "application/json; charset=utf-8",
	export.FormatCypher: "text/plain; charset=utf-8",
	export.FormatOWL:    "application/rdf+xml; charset=utf-8",
}

// ExchangeHandler handles snapshot and export requests
type ExchangeHandler struct {
	graph kgraph.Exchanger
}

// NewExchangeHandler creates a new exchange handler
func NewExchangeHandler(g kgraph.Exchanger) *ExchangeHandler {
	return &ExchangeHandler{graph: g}
}

// CreateSnapshot handles POST /snapshots
func (h *ExchangeHandler) CreateSnapshot(c *gin.Context) {
	var req dto.SnapshotRequest
	if !bind(c, &req) {
		return
	}
	id, err := h.graph.CreateSnapshot(c.Request.Context(), req.Name)
	switch {
	case errors.Is(err, kgraph.ErrVersioningDisabled):
		writeError(c, http.StatusConflict, CodeConflict, err.Error())
		return
	case err != nil && id == "":
		writeInternal(c, err)
		return
	case err != nil:
		// Kept in memory; only persisting failed.
		_ = c.Error(err)
	}
	c.JSON(http.StatusCreated, dto.IDResponse{ID: id})
}

// ListSnapshots handles GET /snapshots
func (h *ExchangeHandler) ListSnapshots(c *gin.Context) {
	list, err := h.graph.ListSnapshots(c.Request.Context())
	if err != nil {
		writeInternal(c, err)
		return
	}
	if list == nil {
		list = []types.SnapshotInfo{}
	}
	c.JSON(http.StatusOK, list)
}

// RestoreSnapshot handles POST /snapshots/:id/restore
func (h *ExchangeHandler) RestoreSnapshot(c *gin.Context) {
	err := h.graph.RestoreSnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.snapshotError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true})
}

// DeleteSnapshot handles DELETE /snapshots/:id
func (h *ExchangeHandler) DeleteSnapshot(c *gin.Context) {
	if err := h.graph.DeleteSnapshot(c.Request.Context(), c.Param("id")); err != nil {
		h.snapshotError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ExchangeHandler) snapshotError(c *gin.Context, err error) {
	if errors.Is(err, kgraph.ErrSnapshotNotFound) {
		writeError(c, http.StatusNotFound, CodeNotFound, err.Error())
		return
	}
	writeInternal(c, err)
}

// Export handles GET /export/:format for turtle, json, cypher and owl.
func (h *ExchangeHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := h.graph.Export(&buf, string(format)); err != nil {
		writeInternal(c, err)
		return
	}
	c.Data(http.StatusOK, contentTypes[format], buf.Bytes())
}

// Import handles POST /import with a JSON graph document body.
func (h *ExchangeHandler) Import(c *gin.Context) {
	nodes, edges, err := h.graph.ImportJSON(c.Request.Body)
	if err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"nodes": nodes, "edges": edges})
}
