package settings

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"onefifth/internal/core"
	"onefifth/internal/storage"
)

type fakeStore struct {
	mu      sync.Mutex
	values  map[string]string
	getErr  error
	putErr  error
	putHits int
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) GetSetting(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (f *fakeStore) PutSetting(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putHits++
	if f.putErr != nil {
		return f.putErr
	}
	f.values[key] = value
	return nil
}

func (f *fakeStore) get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok
}

func TestLoadCreatesDefaultsOnFirstRun(t *testing.T) {
	store := newFakeStore()
	c := New(store)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := c.Percentages(); got != core.DefaultPercentages {
		t.Fatalf("got %v", got)
	}
	raw, ok := store.get(storage.SettingsKey)
	if !ok {
		t.Fatalf("defaults not persisted")
	}
	var s core.Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("persisted defaults unreadable: %v", err)
	}
	if s != core.DefaultSettings() {
		t.Fatalf("persisted %+v", s)
	}
}

func TestLoadExisting(t *testing.T) {
	store := newFakeStore()
	store.values[storage.SettingsKey] = `{"p1":0.2,"p2":0.5,"p3":0.3,"dark":true}`

	c := New(store)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := c.Percentages(); got != ([3]float64{0.2, 0.5, 0.3}) {
		t.Fatalf("got %v", got)
	}
	if !c.DisplayMode() {
		t.Fatalf("dark flag lost")
	}
}

func TestLoadReadErrorServesDefaults(t *testing.T) {
	store := newFakeStore()
	store.getErr = storage.ErrReadFailed

	c := New(store)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load should swallow read errors, got %v", err)
	}
	if got := c.Percentages(); got != core.DefaultPercentages {
		t.Fatalf("got %v", got)
	}
}

func TestSetPercentagesWritesThrough(t *testing.T) {
	store := newFakeStore()
	c := New(store)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	c.SetPercentages([3]float64{0.1, 0.5, 0.4})
	c.Flush()

	raw, _ := store.get(storage.SettingsKey)
	var s core.Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.P1 != 0.1 || s.P2 != 0.5 || s.P3 != 0.4 {
		t.Fatalf("persisted %+v", s)
	}
}

func TestFailedWriteThroughKeepsMemoryValue(t *testing.T) {
	store := newFakeStore()
	c := New(store)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	store.mu.Lock()
	store.putErr = errors.New("disk full")
	store.mu.Unlock()

	c.SetDark(true)
	c.Flush()

	// Memory stays authoritative; no rollback on durable failure.
	if !c.DisplayMode() {
		t.Fatalf("cache rolled back on failed write-through")
	}
}
