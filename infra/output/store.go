// Package output persists the results of a run: iteration statistics in a
// queryable store, the final plans and the effective configuration.
package output

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kilianp07/modesim/core/factory"
	"github.com/kilianp07/modesim/core/metrics"
)

// Query filters stored iterations. Zero values match everything; a nil To
// means no upper bound.
type Query struct {
	RunID string
	From  int
	To    *int
}

// Through returns a pointer to the inclusive upper bound it.
func Through(it int) *int { return &it }

func (q Query) match(s metrics.IterationStats) bool {
	if q.RunID != "" && s.RunID != q.RunID {
		return false
	}
	if s.Iteration < q.From {
		return false
	}
	return q.To == nil || s.Iteration <= *q.To
}

// Store persists iteration statistics and supports querying.
type Store interface {
	Append(ctx context.Context, stats metrics.IterationStats) error
	Query(ctx context.Context, q Query) ([]metrics.IterationStats, error)
	Close() error
}

// StoreConfig selects the store backend.
type StoreConfig struct {
	// Backend is "jsonl" or "sqlite".
	Backend string `json:"backend" yaml:"backend"`
	// Path defaults to iterations.jsonl or iterations.db in the output directory.
	Path string `json:"path" yaml:"path"`
}

var storeRegistry = factory.NewRegistry[Store]()

func storePath(conf map[string]any) (string, error) {
	var c struct {
		Path string `json:"path"`
	}
	if err := factory.Decode(conf, &c); err != nil {
		return "", err
	}
	if c.Path == "" {
		return "", errors.New("store path is required")
	}
	return c.Path, nil
}

func init() {
	_ = storeRegistry.Register("jsonl", func(conf map[string]any) (Store, error) {
		path, err := storePath(conf)
		if err != nil {
			return nil, err
		}
		return NewJSONLStore(path)
	})
	_ = storeRegistry.Register("sqlite", func(conf map[string]any) (Store, error) {
		path, err := storePath(conf)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(path)
	})
}

// Backends lists the available store backends.
func Backends() []string { return storeRegistry.Names() }

// DefaultPath returns the store file for backend inside dir.
func DefaultPath(backend, dir string) string {
	if backend == "sqlite" {
		return filepath.Join(dir, "iterations.db")
	}
	return filepath.Join(dir, "iterations.jsonl")
}

// OpenStore opens the configured store, resolving the default path against dir.
func OpenStore(cfg StoreConfig, dir string) (Store, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = "jsonl"
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath(backend, dir)
	}
	s, err := storeRegistry.Create(factory.ModuleConfig{Type: backend, Conf: map[string]any{"path": path}})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", backend, err)
	}
	return s, nil
}

// StoreSink records iteration statistics into a Store.
type StoreSink struct {
	Store Store
}

// RecordIteration implements metrics.Sink.
func (s StoreSink) RecordIteration(stats metrics.IterationStats) error {
	return s.Store.Append(context.Background(), stats)
}

// Close closes the store.
func (s StoreSink) Close() error { return s.Store.Close() }
