// Package cache bridges the in-memory entity set and the durable store.
//
// All reads by the reporting engine go through the in-memory value, never
// synchronously through the store. Mutations replace the in-memory value
// right away and coalesce into one debounced physical write, so a burst of
// rapid edits costs a single store transaction.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"shataku/internal/core"
)

// DefaultFlushWindow is the debounce window for coalescing writes.
const DefaultFlushWindow = 100 * time.Millisecond

// Persister is the slice of the durable store the cache needs.
type Persister interface {
	LoadDataset(ctx context.Context) (core.Dataset, bool, error)
	ReplaceDataset(ctx context.Context, ds core.Dataset) error
	ResetAll(ctx context.Context) error
}

// Options tune cache startup behaviour.
type Options struct {
	// FlushWindow overrides DefaultFlushWindow when positive.
	FlushWindow time.Duration
	// Fallback supplies a dataset when the store is empty after migration
	// (the legacy-document last resort). The returned bool reports whether
	// anything usable was found.
	Fallback func(ctx context.Context) (core.Dataset, bool)
}

// Cache is the single in-memory mirror of the entity store.
type Cache struct {
	store  Persister
	window time.Duration

	mu      sync.Mutex
	ds      core.Dataset
	timer   *time.Timer
	pending bool
	closed  bool
}

// Open bulk-loads the store into memory. If the store is empty and a
// fallback is configured, the fallback dataset is adopted and persisted
// immediately so the store catches up.
func Open(ctx context.Context, store Persister, opts Options) (*Cache, error) {
	window := opts.FlushWindow
	if window <= 0 {
		window = DefaultFlushWindow
	}
	c := &Cache{store: store, window: window}

	ds, empty, err := store.LoadDataset(ctx)
	if err != nil {
		return nil, err
	}
	c.ds = ds

	if empty && opts.Fallback != nil {
		if fb, ok := opts.Fallback(ctx); ok {
			c.ds = fb
			if err := store.ReplaceDataset(ctx, fb.Clone()); err != nil {
				return nil, err
			}
			slog.InfoContext(ctx, "Adopted legacy fallback dataset",
				"properties", len(fb.Properties),
				"tenants", len(fb.Tenants),
				"employees", len(fb.Employees))
		}
	}

	return c, nil
}

// Snapshot returns a deep copy of the current in-memory dataset.
func (c *Cache) Snapshot() core.Dataset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ds.Clone()
}

// Settings returns the current singleton configuration.
func (c *Cache) Settings() core.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ds.Settings
}

// Mutate applies fn to the in-memory value synchronously, then schedules a
// debounced flush. The two steps are deliberately sequential here: fn only
// computes the next state and must not concern itself with persistence.
func (c *Cache) Mutate(fn func(ds *core.Dataset)) {
	c.mu.Lock()
	fn(&c.ds)
	c.mu.Unlock()

	c.scheduleFlush()
}

// Replace swaps the entire in-memory value (restore path) and schedules a
// flush.
func (c *Cache) Replace(ds core.Dataset) {
	c.mu.Lock()
	c.ds = ds
	c.mu.Unlock()

	c.scheduleFlush()
}

// scheduleFlush arms the singular debounce timer. A newer mutation cancels
// and reschedules the pending timer rather than stacking flushes.
func (c *Cache) scheduleFlush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.pending = true
	c.timer = time.AfterFunc(c.window, func() {
		// Store trouble must not poison the in-memory state; it stays
		// the source of truth and the next flush retries.
		if err := c.Flush(context.Background()); err != nil {
			slog.Warn("Debounced flush failed, in-memory state retained", "error", err)
		}
	})
}

// Flush persists the latest in-memory value right now. The value is read at
// flush time, not captured at scheduling time, so edits made while the timer
// was pending are never lost.
func (c *Cache) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = false
	ds := c.ds.Clone()
	c.mu.Unlock()

	return c.store.ReplaceDataset(ctx, ds)
}

// Close tears the cache down. A pending flush fires synchronously with the
// latest value rather than being dropped.
func (c *Cache) Close(ctx context.Context) error {
	c.mu.Lock()
	pending := c.pending
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.closed = true
	c.mu.Unlock()

	if pending {
		return c.Flush(ctx)
	}
	return nil
}

// Reset clears every collection in the store, snapshots and migration
// metadata included, and resets the in-memory value to the empty default.
func (c *Cache) Reset(ctx context.Context) error {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = false
	c.ds = core.Dataset{Settings: core.DefaultSettings()}
	c.mu.Unlock()

	return c.store.ResetAll(ctx)
}
