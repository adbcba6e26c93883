package dto

import (
	"errors"

	"github.com/soundprediction/kgraph/pkg/types"
)

// Validation errors
var (
	ErrEmptyLabel      = errors.New("label cannot be empty")
	ErrLabelTooLong    = errors.New("label exceeds maximum length (1024)")
	ErrMissingEndpoint = errors.New("from and to are required")
	ErrEmptyTerm       = errors.New("subject, predicate and object are required")
	ErrEmptyText       = errors.New("text cannot be empty")
	ErrContentTooLong  = errors.New("content exceeds maximum length (1MB)")
	ErrTooManyProps    = errors.New("properties count exceeds maximum (100)")
	ErrEmptyName       = errors.New("name cannot be empty")
)

// MaxFieldLengths defines maximum lengths for fields to prevent abuse
const (
	MaxLabelLength    = 1024
	MaxContentLength  = 1024 * 1024 // 1MB
	MaxPropertyCount  = 100
	DefaultTopK       = 10
	DefaultSearchSize = 20
)

// Result represents a generic API result
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// IDResponse returns the id of a created item.
type IDResponse struct {
	ID string `json:"id"`
}

// CountResponse reports how many items an operation touched.
type CountResponse struct {
	Count int `json:"count"`
}

// toProperties converts decoded JSON values into typed properties.
func toProperties(in map[string]any) types.Properties {
	if len(in) == 0 {
		return nil
	}
	out := make(types.Properties, len(in))
	for k, v := range in {
		out[k] = types.PropertyFromAny(v)
	}
	return out
}
