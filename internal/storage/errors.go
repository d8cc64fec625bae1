package storage

import "errors"

// Error kinds surfaced by the store. Callers match with errors.Is; the
// wrapped message carries the underlying driver detail.
var (
	// ErrUnavailable means the platform denied or could not provide
	// durable storage. Fatal at startup, never retried.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrReadFailed is an individual read operation failure.
	ErrReadFailed = errors.New("storage read failed")

	// ErrWriteFailed is an individual write operation failure. State is
	// whatever it was before the failed call.
	ErrWriteFailed = errors.New("storage write failed")

	// ErrDuplicateKey is returned by AddTransaction when the id exists.
	ErrDuplicateKey = errors.New("duplicate transaction id")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
)
