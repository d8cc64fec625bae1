package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"onefifth/internal/core"
)

// SettingsKey is the fixed identifier of the singleton settings record.
const SettingsKey = "dashboard"

// legacyReadTimeout bounds each read against the legacy database.
const legacyReadTimeout = 5 * time.Second

// ImportLegacy copies every transaction and the settings record from the
// database file a previous release left behind into the current store.
// It is best-effort and idempotent: all writes go through upserts, the
// legacy file is never modified or deleted, and any failure is reported
// to the caller to log and swallow. Startup must proceed either way.
func ImportLegacy(ctx context.Context, legacyPath, currentPath string) error {
	if legacyPath == "" || legacyPath == currentPath {
		return nil
	}

	// Existence probe. SQLite has no enumeration primitive, so the
	// backend synthesizes one: the file must exist and must contain a
	// transactions table. Opening read-only avoids creating an empty
	// database as a side effect of the probe.
	if _, err := os.Stat(legacyPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("probe legacy database: %w", err)
	}

	legacyDB, err := sql.Open("sqlite", "file:"+legacyPath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("open legacy database: %w", err)
	}
	defer legacyDB.Close()

	probeCtx, cancel := context.WithTimeout(ctx, legacyReadTimeout)
	defer cancel()
	var name string
	err = legacyDB.QueryRowContext(probeCtx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'transactions'`).Scan(&name)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("inspect legacy schema: %w", err)
	}

	txs, err := readLegacyTransactions(ctx, legacyDB)
	if err != nil {
		return fmt.Errorf("read legacy transactions: %w", err)
	}
	settingsValue, settingsFound := readLegacySettings(ctx, legacyDB)

	repo, err := NewSQLiteRepository(currentPath)
	if err != nil {
		return fmt.Errorf("open current store: %w", err)
	}
	defer repo.Close()

	imported := 0
	for _, t := range txs {
		if err := repo.PutTransaction(ctx, t); err != nil {
			slog.WarnContext(ctx, "skipping legacy transaction", "id", t.ID, "error", err)
			continue
		}
		imported++
	}
	if settingsFound {
		if err := repo.PutSetting(ctx, SettingsKey, settingsValue); err != nil {
			slog.WarnContext(ctx, "skipping legacy settings", "error", err)
		}
	}

	slog.InfoContext(ctx, "legacy import finished",
		"legacy_path", legacyPath,
		"transactions", imported,
		"settings", settingsFound)
	return nil
}

func readLegacyTransactions(ctx context.Context, db *sql.DB) ([]core.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, legacyReadTimeout)
	defer cancel()

	rows, err := db.QueryContext(ctx,
		`SELECT id, description, amount_cents, entry_date FROM transactions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			t       core.Transaction
			cents   sql.NullInt64
			text    sql.NullString
			rawDate sql.NullString
		)
		if err := rows.Scan(&t.ID, &text, &cents, &rawDate); err != nil {
			slog.WarnContext(ctx, "skipping unreadable legacy row", "error", err)
			continue
		}
		t.Text = text.String
		t.Amount = core.Money{Cents: cents.Int64}
		// Legacy rows may carry full timestamps; ParseDate truncates.
		if rawDate.Valid && rawDate.String != "" {
			if d, err := core.ParseDate(rawDate.String); err == nil {
				t.Date = d
			}
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func readLegacySettings(ctx context.Context, db *sql.DB) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, legacyReadTimeout)
	defer cancel()

	var name string
	err := db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'settings'`).Scan(&name)
	if err != nil {
		return "", false
	}

	var value string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, SettingsKey).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}
