package dto

import (
	"strings"

	"github.com/soundprediction/kgraph/pkg/semantic"
)

// IngestTextRequest represents a request to extract relations from text and
// add them to the knowledge graph.
type IngestTextRequest struct {
	Text string `json:"text" binding:"required"`
	// DryRun returns the extracted relations without adding them.
	DryRun bool `json:"dry_run,omitempty"`
}

// Validate performs validation on IngestTextRequest
func (r *IngestTextRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyText
	}
	if len(r.Text) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// IngestResponse represents a response from ingest operations
type IngestResponse struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message,omitempty"`
	Relations []semantic.Relation `json:"relations,omitempty"`
	EdgeIDs   []string            `json:"edge_ids,omitempty"`
}

// AnswerRequest asks a question of the graph.
type AnswerRequest struct {
	Question string `json:"question" binding:"required"`
}

// Validate performs validation on AnswerRequest
func (r *AnswerRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return ErrEmptyText
	}
	if len(r.Question) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// AnswerResponse carries the plain-text answer.
type AnswerResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
