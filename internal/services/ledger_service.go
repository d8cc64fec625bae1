// Package services wires the pure domain to storage, the settings cache
// and the event bus. LedgerService is the single entry point the HTTP
// layer talks to; it owns validation and id generation.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"onefifth/internal/amqp"
	"onefifth/internal/core"
	"onefifth/internal/settings"
	"onefifth/internal/storage"
)

// idRange matches the original client-side draw: ids are random in
// [1, 1e8). Collisions are theoretical and surface as ErrDuplicateKey.
const idRange = 100_000_000

// EventPublisher is the optional change-event sink.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, op string, id int64) error
	Close() error
}

// LedgerService implements the operations the presentation layer
// consumes: load, add, edit, remove, aggregates, history and settings.
type LedgerService struct {
	repo     *storage.SQLiteRepository
	settings *settings.Cache
	events   EventPublisher // nil when the bus is not configured
	newID    func() int64
}

// NewLedgerService builds the service. events may be nil.
func NewLedgerService(repo *storage.SQLiteRepository, cache *settings.Cache, events EventPublisher) *LedgerService {
	return &LedgerService{
		repo:     repo,
		settings: cache,
		events:   events,
		newID:    func() int64 { return rand.Int63n(idRange-1) + 1 },
	}
}

// LoadAll returns every stored transaction, unsorted.
func (s *LedgerService) LoadAll(ctx context.Context) ([]core.Transaction, error) {
	return s.repo.GetAllTransactions(ctx)
}

// Add validates and stores a new transaction. The description is
// normalized, a missing date becomes today, and a future date is
// rejected before any storage call.
func (s *LedgerService) Add(ctx context.Context, text string, amount core.Money, date core.Date) (core.Transaction, error) {
	t := core.Transaction{
		ID:     s.newID(),
		Text:   core.NormalizeDescription(text),
		Amount: amount,
		Date:   date,
	}
	if err := t.Validate(core.Today()); err != nil {
		return core.Transaction{}, err
	}
	if t.Date.IsZero() {
		t.Date = core.Today()
	}

	if err := s.repo.AddTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	s.publish(ctx, amqp.OpAdd, t.ID)
	return t, nil
}

// Edit replaces all mutable fields of an existing transaction. The id
// never changes.
func (s *LedgerService) Edit(ctx context.Context, id int64, text string, amount core.Money, date core.Date) (core.Transaction, error) {
	if _, err := s.repo.GetTransaction(ctx, id); err != nil {
		return core.Transaction{}, fmt.Errorf("edit transaction: %w", err)
	}

	t := core.Transaction{
		ID:     id,
		Text:   core.NormalizeDescription(text),
		Amount: amount,
		Date:   date,
	}
	if err := t.Validate(core.Today()); err != nil {
		return core.Transaction{}, err
	}
	if t.Date.IsZero() {
		t.Date = core.Today()
	}

	if err := s.repo.PutTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("edit transaction: %w", err)
	}
	s.publish(ctx, amqp.OpEdit, id)
	return t, nil
}

// Remove deletes a transaction. Removing an absent id is a no-op.
func (s *LedgerService) Remove(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("remove transaction: %w", err)
	}
	s.publish(ctx, amqp.OpDelete, id)
	return nil
}

// Get returns a single transaction by id.
func (s *LedgerService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

// Aggregates recomputes balance, income, expense and the percentage
// splits over the full transaction set.
func (s *LedgerService) Aggregates(ctx context.Context) (core.Summary, error) {
	txs, err := s.repo.GetAllTransactions(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("load transactions: %w", err)
	}
	return core.Summarize(txs, s.settings.Percentages()), nil
}

// HistoryGroups returns transactions bucketed by day, newest first,
// optionally filtered to income or expense entries.
func (s *LedgerService) HistoryGroups(ctx context.Context, filter core.Filter) ([]core.DayGroup, error) {
	txs, err := s.repo.GetAllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return core.GroupByDate(txs, filter), nil
}

// Settings returns the current settings record from the cache.
func (s *LedgerService) Settings() core.Settings {
	return s.settings.Settings()
}

// SetPercentages accepts whole-number percentages that must sum to
// exactly 100 and stores them as decimals.
func (s *LedgerService) SetPercentages(ctx context.Context, p1, p2, p3 int) error {
	pcts, err := core.PercentagesFromInts(p1, p2, p3)
	if err != nil {
		return err
	}
	s.settings.SetPercentages(pcts)
	return nil
}

// SetDisplayMode persists the dark-mode flag.
func (s *LedgerService) SetDisplayMode(ctx context.Context, dark bool) {
	s.settings.SetDark(dark)
}

// publish emits a change event when the bus is configured. A publish
// failure never fails the mutation; the record is already durable.
func (s *LedgerService) publish(ctx context.Context, op string, id int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, op, id); err != nil {
		slog.ErrorContext(ctx, "failed to publish ledger event",
			"op", op, "id", id, "error", err)
	}
}

// Close releases the store, the event bus and flushes pending settings
// writes.
func (s *LedgerService) Close() error {
	var errs []error

	s.settings.Flush()
	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
