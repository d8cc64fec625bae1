// Package worker consumes ledger change events and appends them to a
// local JSONL audit trail.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"onefifth/internal/amqp"
	"onefifth/internal/core"
	"onefifth/internal/storage"
)

// TransactionGetter is the slice of the store the worker needs to
// enrich events with the current record.
type TransactionGetter interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
}

// AuditRecord is one line of the audit trail.
type AuditRecord struct {
	Op          string    `json:"op"`
	ID          int64     `json:"id"`
	Text        string    `json:"text,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	Date        string    `json:"date,omitempty"`
	EventAt     time.Time `json:"event_at"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// AuditWorker handles events one at a time and serializes appends.
type AuditWorker struct {
	repo TransactionGetter
	path string
	mu   sync.Mutex
}

// NewAuditWorker creates a worker appending to the file at path.
func NewAuditWorker(repo TransactionGetter, path string) *AuditWorker {
	return &AuditWorker{repo: repo, path: path}
}

// HandleEvent enriches and appends one event. Delete events carry the id
// only; for other operations the record is fetched from the store, and a
// record that vanished in the meantime is logged with the id alone
// rather than failed (the event would requeue forever otherwise).
func (w *AuditWorker) HandleEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	rec := AuditRecord{
		Op:         msg.Op,
		ID:         msg.ID,
		EventAt:    msg.Timestamp,
		RecordedAt: time.Now(),
	}

	if msg.Op != amqp.OpDelete {
		t, err := w.repo.GetTransaction(ctx, msg.ID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			slog.WarnContext(ctx, "audited transaction no longer exists", "id", msg.ID, "op", msg.Op)
		case err != nil:
			return fmt.Errorf("load transaction %d: %w", msg.ID, err)
		default:
			rec.Text = t.Text
			rec.AmountCents = t.Amount.Cents
			if !t.Date.IsZero() {
				rec.Date = t.Date.Key()
			}
		}
	}

	if err := w.append(rec); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}

	slog.InfoContext(ctx, "audit record written", "op", rec.Op, "id", rec.ID)
	return nil
}

func (w *AuditWorker) append(rec AuditRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("create audit directory: %w", err)
	}
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write audit file: %w", err)
	}
	return nil
}
