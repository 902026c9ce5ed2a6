package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/flatchat/backend/internal/logging"
)

// Collection persists one document collection as a single JSON array file.
// Every Load is a full read and every Save a full rewrite; the mutex
// serializes read-modify-write cycles within the process so one writer's
// rewrite cannot discard another's.
type Collection[T any] struct {
	path string
	mu   sync.Mutex
}

// NewCollection returns a collection backed by the JSON file at path. The
// file is created lazily; a missing file reads as an empty collection.
func NewCollection[T any](path string) *Collection[T] {
	return &Collection[T]{path: path}
}

// Path reports the backing file location.
func (c *Collection[T]) Path() string { return c.path }

// Load reads the entire collection. A missing file is initialized to an
// empty array; a file that exists but does not parse surfaces ErrCorrupt.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx)
}

// Update applies fn to the loaded collection and rewrites the file when fn
// reports a change. The whole cycle runs under the collection mutex.
func (c *Collection[T]) Update(ctx context.Context, fn func(items []T) ([]T, bool, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.loadLocked(ctx)
	if err != nil {
		return err
	}

	items, changed, err := fn(items)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	return c.saveLocked(ctx, items)
}

func (c *Collection[T]) loadLocked(ctx context.Context) ([]T, error) {
	done := logging.Operation(ctx, "collection load", "path", c.path)
	defer done()

	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := c.saveLocked(ctx, []T{}); err != nil {
			return nil, err
		}
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", c.path, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, c.path, err)
	}
	return items, nil
}

func (c *Collection[T]) saveLocked(ctx context.Context, items []T) error {
	done := logging.Operation(ctx, "collection save", "path", c.path, "count", len(items))
	defer done()

	if items == nil {
		items = []T{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", c.path, err)
	}

	// Write-then-rename keeps the rewrite atomic at file granularity.
	tmp := c.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("ensure collection directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write collection %s: %w", c.path, err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace collection %s: %w", c.path, err)
	}
	return nil
}
