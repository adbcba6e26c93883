// Package persist saves graph content to disk: whole graphs as JSON files
// and named snapshots in a Badger key-value store.
package persist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/soundprediction/kgraph/pkg/export"
	"github.com/soundprediction/kgraph/pkg/types"
)

var (
	ErrEmptyPath        = errors.New("storage path is empty")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrInvalidID        = errors.New("invalid snapshot id")
)

// FileStore reads and writes graphs as JSON files.
type FileStore struct {
	logger *slog.Logger
}

func NewFileStore(logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{logger: logger.With("component", "file_store")}
}

// Save writes data to path. The file is written next to its destination
// and renamed into place, so readers never see a partial graph.
func (f *FileStore) Save(ctx context.Context, path string, data *types.GraphData) error {
	if path == "" {
		return ErrEmptyPath
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	var buf bytes.Buffer
	if err := export.ExportJSON(&buf, data); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write graph file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename graph file: %w", err)
	}

	nodes, edges := 0, 0
	if data != nil {
		nodes, edges = len(data.Nodes), len(data.Edges)
	}
	f.logger.Debug("Saved graph", "path", path, "nodes", nodes, "edges", edges)
	return nil
}

// Load reads a graph written by Save. A missing file yields an error
// wrapping os.ErrNotExist.
func (f *FileStore) Load(ctx context.Context, path string) (*types.GraphData, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph file: %w", err)
	}
	defer file.Close()

	data, err := export.ImportJSON(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	f.logger.Debug("Loaded graph", "path", path, "nodes", len(data.Nodes), "edges", len(data.Edges))
	return data, nil
}
