// Package storage owns the durable state of the tracker: the
// transactions table (indexed by entry date) and the settings key-value
// table. Every method is an individually atomic operation against the
// database; there are no transactions spanning multiple calls.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"onefifth/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the persistent store backed by a single SQLite
// database file.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (or creates) the database at dbPath and
// ensures the schema is current. Failures wrap ErrUnavailable: they are
// fatal to startup and never retried.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w: %w", ErrUnavailable, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w: %w", ErrUnavailable, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w: %w", ErrUnavailable, err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w: %w", ErrUnavailable, err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// GetAllTransactions returns every stored transaction in unspecified
// order; callers sort.
func (r *SQLiteRepository) GetAllTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount_cents, entry_date FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w: %w", ErrReadFailed, err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w: %w", ErrReadFailed, err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w: %w", ErrReadFailed, err)
	}
	return txs, nil
}

// GetTransaction returns a single transaction by id.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, description, amount_cents, entry_date FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w: %w", ErrReadFailed, err)
	}
	return t, nil
}

// AddTransaction inserts a new transaction. An existing id fails with
// ErrDuplicateKey.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, description, amount_cents, entry_date) VALUES (?, ?, ?, ?)`,
		t.ID, t.Text, t.Amount.Cents, dateColumn(t.Date))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("add transaction %d: %w", t.ID, ErrDuplicateKey)
		}
		return fmt.Errorf("add transaction: %w: %w", ErrWriteFailed, err)
	}
	return nil
}

// PutTransaction upserts: inserts when the id is absent, replaces all
// mutable fields when present. Used by both edits and the legacy import
// so re-running the import cannot fail on duplicates.
func (r *SQLiteRepository) PutTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, description, amount_cents, entry_date) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   description = excluded.description,
		   amount_cents = excluded.amount_cents,
		   entry_date = excluded.entry_date`,
		t.ID, t.Text, t.Amount.Cents, dateColumn(t.Date))
	if err != nil {
		return fmt.Errorf("put transaction: %w: %w", ErrWriteFailed, err)
	}
	return nil
}

// DeleteTransaction removes a transaction. Deleting an absent id is a
// no-op, not an error.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w: %w", ErrWriteFailed, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		slog.DebugContext(ctx, "delete of absent transaction", "id", id)
	}
	return nil
}

// GetSetting returns the raw value stored under key, or ErrNotFound.
func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("setting %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get setting: %w: %w", ErrReadFailed, err)
	}
	return value, nil
}

// PutSetting upserts the value stored under key.
func (r *SQLiteRepository) PutSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("put setting: %w: %w", ErrWriteFailed, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTransaction maps a row to the domain type. A date that fails to
// parse is kept as a zero Date rather than rejected; consuming logic
// applies its own fallback.
func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		cents   int64
		rawDate string
	)
	if err := row.Scan(&t.ID, &t.Text, &cents, &rawDate); err != nil {
		return core.Transaction{}, err
	}
	t.Amount = core.Money{Cents: cents}
	if rawDate != "" {
		if d, err := core.ParseDate(rawDate); err == nil {
			t.Date = d
		}
	}
	return t, nil
}

func dateColumn(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Key()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
