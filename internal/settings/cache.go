// Package settings keeps the in-memory mirror of the persisted settings
// record. The cache is authoritative for the session: reads never touch
// the store after Load, and writes update memory first.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"onefifth/internal/core"
	"onefifth/internal/storage"
)

// Store is the slice of the persistent store the cache needs.
type Store interface {
	GetSetting(ctx context.Context, key string) (string, error)
	PutSetting(ctx context.Context, key, value string) error
}

// writeThroughTimeout bounds the asynchronous durable write.
const writeThroughTimeout = 5 * time.Second

// Cache mirrors the settings singleton. Before Load it serves defaults;
// after Load it serves memory. Writes go through to the store in the
// background: if the durable write fails the in-memory value is kept,
// not rolled back. That inconsistency window is inherited from the
// original and documented in DESIGN.md.
type Cache struct {
	mu      sync.RWMutex
	store   Store
	loaded  bool
	current core.Settings

	// wg lets tests wait for in-flight write-throughs.
	wg sync.WaitGroup
}

// New creates an unloaded cache over the given store.
func New(store Store) *Cache {
	return &Cache{store: store, current: core.DefaultSettings()}
}

// Load reads the persisted record, creating it with defaults on first
// run. A read failure leaves the cache serving defaults; that is not
// fatal, the store error is logged and swallowed like the original's
// onerror path.
func (c *Cache) Load(ctx context.Context) error {
	raw, err := c.store.GetSetting(ctx, storage.SettingsKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		defaults := core.DefaultSettings()
		if err := c.persist(ctx, defaults); err != nil {
			return fmt.Errorf("persist default settings: %w", err)
		}
		c.setLoaded(defaults)
		return nil
	case err != nil:
		slog.WarnContext(ctx, "settings read failed, serving defaults", "error", err)
		c.setLoaded(core.DefaultSettings())
		return nil
	}

	var s core.Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		slog.WarnContext(ctx, "corrupt settings record, serving defaults", "error", err)
		c.setLoaded(core.DefaultSettings())
		return nil
	}
	c.setLoaded(s)
	return nil
}

func (c *Cache) setLoaded(s core.Settings) {
	c.mu.Lock()
	c.current = s
	c.loaded = true
	c.mu.Unlock()
}

// Settings returns the current record; defaults when unloaded.
func (c *Cache) Settings() core.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Percentages returns the configured split, falling back to the
// defaults while the cache is uninitialized.
func (c *Cache) Percentages() [3]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return core.DefaultPercentages
	}
	return c.current.Percentages()
}

// DisplayMode reports the dark-mode flag.
func (c *Cache) DisplayMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Dark
}

// SetPercentages replaces the split. Memory is updated synchronously;
// durability follows asynchronously.
func (c *Cache) SetPercentages(pcts [3]float64) {
	c.mu.Lock()
	c.current.P1, c.current.P2, c.current.P3 = pcts[0], pcts[1], pcts[2]
	c.loaded = true
	snapshot := c.current
	c.mu.Unlock()

	c.writeThrough(snapshot)
}

// SetDark replaces the display-mode flag, write-through as above.
func (c *Cache) SetDark(dark bool) {
	c.mu.Lock()
	c.current.Dark = dark
	c.loaded = true
	snapshot := c.current
	c.mu.Unlock()

	c.writeThrough(snapshot)
}

// writeThrough issues the durable write in the background. Fire and
// forget: a failure is logged, the cache keeps the new value.
func (c *Cache) writeThrough(s core.Settings) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeThroughTimeout)
		defer cancel()
		if err := c.persist(ctx, s); err != nil {
			slog.ErrorContext(ctx, "settings write-through failed", "error", err)
		}
	}()
}

// Flush waits for pending write-throughs. Used on shutdown and in tests.
func (c *Cache) Flush() {
	c.wg.Wait()
}

func (c *Cache) persist(ctx context.Context, s core.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return c.store.PutSetting(ctx, storage.SettingsKey, string(raw))
}
