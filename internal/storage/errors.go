package storage

import "errors"

// Audit stores are append-only: rows are never updated or deleted.
var (
	// ErrDuplicateKey is returned when a record with the same key was already written.
	ErrDuplicateKey = errors.New("duplicate key: audit store is append-only")

	// ErrInvalidInput is returned for a nil record or a missing key.
	ErrInvalidInput = errors.New("invalid input")
)
