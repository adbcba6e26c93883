// Package telemetry archives error-level log records to Parquet files so
// failures can be analysed after the process exits.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"

	"github.com/soundprediction/kgraph/pkg/types"
)

// DefaultBatchSize is the number of records buffered before a file is
// written.
const DefaultBatchSize = 100

// LogRecord is the row schema of an archived record.
type LogRecord struct {
	ID         string    `parquet:"id"`
	Timestamp  time.Time `parquet:"timestamp"`
	Level      string    `parquet:"level"`
	Message    string    `parquet:"message"`
	RequestID  string    `parquet:"request_id"`
	ClientID   string    `parquet:"client_id"`
	Component  string    `parquet:"component"`
	SourceFile string    `parquet:"source_file"`
	LineNumber int       `parquet:"line_number"`
	Attributes string    `parquet:"attributes"` // JSON string
}

// sink is shared by a handler and every handler derived from it, so one
// buffer feeds one sequence of files.
type sink struct {
	mu        sync.Mutex
	outputDir string
	batchSize int
	buffer    []LogRecord
	files     int
}

// ParquetHandler passes every record to the next handler and buffers
// error-level records, writing them to a new Parquet file per batch.
type ParquetHandler struct {
	next  slog.Handler
	sink  *sink
	attrs []slog.Attr
	group string
}

// NewParquetHandler wraps next. batchSize <= 0 selects DefaultBatchSize.
func NewParquetHandler(next slog.Handler, outputDir string, batchSize int) (*ParquetHandler, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ParquetHandler{
		next: next,
		sink: &sink{outputDir: outputDir, batchSize: batchSize, buffer: make([]LogRecord, 0, batchSize)},
	}, nil
}

func (h *ParquetHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ParquetHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.next.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level < slog.LevelError {
		return nil
	}

	record := LogRecord{
		ID:        uuid.New().String(),
		Timestamp: r.Time.UTC(),
		Level:     r.Level.String(),
		Message:   r.Message,
	}
	if ctx != nil {
		if v, ok := ctx.Value(types.ContextKeyRequestID).(string); ok {
			record.RequestID = v
		}
		if v, ok := ctx.Value(types.ContextKeyClientID).(string); ok {
			record.ClientID = v
		}
	}

	attrs := make(map[string]any)
	add := func(a slog.Attr) {
		if a.Key == "component" {
			record.Component = a.Value.String()
			return
		}
		attrs[a.Key] = a.Value.Resolve().Any()
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		add(h.qualify(a))
		return true
	})
	if b, err := json.Marshal(attrs); err == nil {
		record.Attributes = string(b)
	}

	if r.PC != 0 {
		f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		record.SourceFile = f.File
		record.LineNumber = f.Line
	}

	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	h.sink.buffer = append(h.sink.buffer, record)
	if len(h.sink.buffer) >= h.sink.batchSize {
		return h.sink.flushLocked()
	}
	return nil
}

func (h *ParquetHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.next = h.next.WithAttrs(attrs)
	c.attrs = slices.Clone(h.attrs)
	for _, a := range attrs {
		c.attrs = append(c.attrs, h.qualify(a))
	}
	return &c
}

// qualify prefixes the attribute key with the open group.
func (h *ParquetHandler) qualify(a slog.Attr) slog.Attr {
	if h.group != "" {
		a.Key = h.group + "." + a.Key
	}
	return a
}

func (h *ParquetHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.next = h.next.WithGroup(name)
	if name != "" {
		if c.group != "" {
			c.group += "." + name
		} else {
			c.group = name
		}
	}
	return &c
}

// Flush writes any buffered records. It is safe to call on an empty
// buffer and should be called before exit.
func (h *ParquetHandler) Flush() error {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	return h.sink.flushLocked()
}

// Files reports how many Parquet files have been written.
func (h *ParquetHandler) Files() int {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	return h.sink.files
}

func (s *sink) flushLocked() error {
	if len(s.buffer) == 0 {
		return nil
	}
	now := time.Now()
	name := fmt.Sprintf("errors_%s_%d.parquet", now.Format("20060102_150405"), now.UnixNano())
	if err := parquet.WriteFile(filepath.Join(s.outputDir, name), s.buffer); err != nil {
		// The logging path cannot report through itself.
		fmt.Fprintf(os.Stderr, "failed to write telemetry parquet file: %v\n", err)
		return err
	}
	s.files++
	s.buffer = s.buffer[:0]
	return nil
}
