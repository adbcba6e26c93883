package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/kgraph/pkg/server/dto"
)

// Error codes returned in dto.ErrorResponse.Error.
const (
	CodeInvalidRequest = "invalid_request"
	CodeNotFound       = "not_found"
	CodeConflict       = "conflict"
	CodeUnavailable    = "unavailable"
	CodeInternal       = "internal_error"
)

// writeError aborts the request with an ErrorResponse body.
func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    status,
	})
}

// writeInternal records err for the logging middleware and answers 500.
func writeInternal(c *gin.Context, err error) {
	_ = c.Error(err)
	writeError(c, http.StatusInternalServerError, CodeInternal, err.Error())
}

// validator is implemented by request DTOs.
type validator interface {
	Validate() error
}

// bind decodes the JSON body into req and validates it, answering 400 on
// failure. It reports whether the handler may continue.
func bind(c *gin.Context, req validator) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return false
	}
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return false
	}
	return true
}

// intQuery reads a non-negative integer query parameter, falling back to
// def when it is absent.
func intQuery(c *gin.Context, name string, def int) (int, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, name+" must be a non-negative integer")
		return 0, false
	}
	return v, true
}
