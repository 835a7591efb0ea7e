package storage

import "errors"

// Storage errors shared by all implementations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when inserting an event id that already
	// exists. The event log is append-only; re-ingesting the same id must
	// not double-count, so duplicates are rejected rather than updated.
	ErrDuplicateKey = errors.New("duplicate key: event log does not allow updates")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
