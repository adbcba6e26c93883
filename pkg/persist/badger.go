package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/soundprediction/kgraph/pkg/types"
)

const snapshotPrefix = "snapshot/"

// snapshotRecord is the value stored under snapshot/<id>.
type snapshotRecord struct {
	Info types.SnapshotInfo `json:"info"`
	Data *types.GraphData   `json:"data"`
}

// BadgerStore keeps named graph snapshots in Badger.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenBadger opens (or creates) a snapshot database in dir. An empty dir
// opens an in-memory database that is lost on Close.
func OpenBadger(dir string, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", dir, err)
	}
	return &BadgerStore{db: db, logger: logger.With("component", "badger_store")}, nil
}

func snapshotKey(id string) ([]byte, error) {
	if id == "" || strings.ContainsAny(id, "/\x00") {
		return nil, ErrInvalidID
	}
	return []byte(snapshotPrefix + id), nil
}

// SaveSnapshot stores data under info.ID, replacing any snapshot with that
// id. Node and edge counts in info are recomputed from data.
func (b *BadgerStore) SaveSnapshot(ctx context.Context, info types.SnapshotInfo, data *types.GraphData) error {
	key, err := snapshotKey(info.ID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if data == nil {
		data = &types.GraphData{}
	}
	info.NodeCount, info.EdgeCount = len(data.Nodes), len(data.Edges)

	value, err := json.Marshal(snapshotRecord{Info: info, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	}); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", info.ID, err)
	}
	b.logger.Info("Saved snapshot", "id", info.ID, "name", info.Name, "nodes", info.NodeCount, "edges", info.EdgeCount)
	return nil
}

// LoadSnapshot returns the graph stored under id.
func (b *BadgerStore) LoadSnapshot(ctx context.Context, id string) (*types.GraphData, types.SnapshotInfo, error) {
	key, err := snapshotKey(id)
	if err != nil {
		return nil, types.SnapshotInfo{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, types.SnapshotInfo{}, err
	}

	var rec snapshotRecord
	err = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, types.SnapshotInfo{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, types.SnapshotInfo{}, fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}
	if rec.Data == nil {
		rec.Data = &types.GraphData{}
	}
	return rec.Data, rec.Info, nil
}

// ListSnapshots returns snapshot metadata ordered by creation time, then id.
func (b *BadgerStore) ListSnapshots(ctx context.Context) ([]types.SnapshotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []types.SnapshotInfo{}
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(snapshotPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec snapshotRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				b.logger.Warn("Skipping unreadable snapshot", "key", string(it.Item().Key()), "error", err)
				continue
			}
			out = append(out, rec.Info)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteSnapshot removes the snapshot with id. Deleting an absent snapshot
// returns ErrSnapshotNotFound.
func (b *BadgerStore) DeleteSnapshot(ctx context.Context, id string) error {
	key, err := snapshotKey(id)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	return nil
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}
