package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

// seedLegacyDB creates a database shaped like a previous release's file,
// including timestamp-style entry dates.
func seedLegacyDB(t *testing.T, path string, withSettings bool) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open legacy db: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE transactions (
			id INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			amount_cents INTEGER NOT NULL,
			entry_date TEXT NOT NULL DEFAULT ''
		)`,
		`INSERT INTO transactions VALUES (1, 'Salary', 30000, '2024-01-02T09:30:00.000Z')`,
		`INSERT INTO transactions VALUES (2, 'Flower', -2000, '2024-01-01')`,
		`INSERT INTO transactions VALUES (3, 'Old import', 500, '')`,
	}
	if withSettings {
		stmts = append(stmts,
			`CREATE TABLE settings (key TEXT PRIMARY KEY, value TEXT NOT NULL)`,
			`INSERT INTO settings VALUES ('dashboard', '{"p1":0.2,"p2":0.5,"p3":0.3,"dark":true}')`)
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("seed legacy db: %v", err)
		}
	}
}

func TestImportLegacy(t *testing.T) {
	dir := t.TempDir()
	legacyPath := filepath.Join(dir, "expense-tracker.db")
	currentPath := filepath.Join(dir, "onefifth.db")
	seedLegacyDB(t, legacyPath, true)

	ctx := context.Background()
	if err := ImportLegacy(ctx, legacyPath, currentPath); err != nil {
		t.Fatalf("import: %v", err)
	}

	repo, err := NewSQLiteRepository(currentPath)
	if err != nil {
		t.Fatalf("open current: %v", err)
	}
	defer repo.Close()

	txs, err := repo.GetAllTransactions(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("expected 3 imported transactions, got %d", len(txs))
	}

	// Timestamp dates are truncated to the date portion.
	got, err := repo.GetTransaction(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Date.Key() != "2024-01-02" {
		t.Fatalf("legacy timestamp not truncated: %q", got.Date.Key())
	}

	value, err := repo.GetSetting(ctx, SettingsKey)
	if err != nil {
		t.Fatalf("get setting: %v", err)
	}
	if value != `{"p1":0.2,"p2":0.5,"p3":0.3,"dark":true}` {
		t.Fatalf("settings not imported: %q", value)
	}
}

func TestImportLegacyIdempotent(t *testing.T) {
	dir := t.TempDir()
	legacyPath := filepath.Join(dir, "expense-tracker.db")
	currentPath := filepath.Join(dir, "onefifth.db")
	seedLegacyDB(t, legacyPath, false)

	ctx := context.Background()
	if err := ImportLegacy(ctx, legacyPath, currentPath); err != nil {
		t.Fatalf("first import: %v", err)
	}
	if err := ImportLegacy(ctx, legacyPath, currentPath); err != nil {
		t.Fatalf("second import: %v", err)
	}

	repo, err := NewSQLiteRepository(currentPath)
	if err != nil {
		t.Fatalf("open current: %v", err)
	}
	defer repo.Close()

	txs, err := repo.GetAllTransactions(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("double import duplicated rows: %d", len(txs))
	}
}

func TestImportLegacyAbsentIsNoOp(t *testing.T) {
	dir := t.TempDir()
	currentPath := filepath.Join(dir, "onefifth.db")

	if err := ImportLegacy(context.Background(), filepath.Join(dir, "missing.db"), currentPath); err != nil {
		t.Fatalf("import with absent legacy: %v", err)
	}

	// No current store should have been created by the probe.
	if _, err := NewSQLiteRepository(currentPath); err != nil {
		t.Fatalf("current store unusable after no-op import: %v", err)
	}
}

func TestImportLegacySamePathIsNoOp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "onefifth.db")
	if err := ImportLegacy(context.Background(), path, path); err != nil {
		t.Fatalf("same-path import: %v", err)
	}
}

func TestImportLegacyFileWithoutTableCountsAsAbsent(t *testing.T) {
	dir := t.TempDir()
	legacyPath := filepath.Join(dir, "stray.db")
	currentPath := filepath.Join(dir, "onefifth.db")

	db, err := sql.Open("sqlite", legacyPath)
	if err != nil {
		t.Fatalf("open stray db: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE unrelated (x INTEGER)`); err != nil {
		t.Fatalf("seed stray db: %v", err)
	}
	db.Close()

	if err := ImportLegacy(context.Background(), legacyPath, currentPath); err != nil {
		t.Fatalf("import: %v", err)
	}

	repo, err := NewSQLiteRepository(currentPath)
	if err != nil {
		t.Fatalf("open current: %v", err)
	}
	defer repo.Close()
	if _, err := repo.GetSetting(context.Background(), SettingsKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected empty current store, got %v", err)
	}
}
