package storage

import (
	"context"

	"rent-reclaim-bot/internal/domain"
)

// ScanLogStore provides access to scan_log storage.
// Records are anonymous: no user identifier or wallet address is ever stored.
type ScanLogStore interface {
	// Insert adds a new scan record. Returns ErrDuplicateKey if scan_id exists.
	Insert(ctx context.Context, r *domain.ScanRecord) error

	// GetByTimeRange retrieves records scanned within [start, end] (inclusive), ordered by scanned_at ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.ScanRecord, error)

	// Summarize aggregates records scanned within [start, end] (inclusive).
	Summarize(ctx context.Context, start, end int64) (*domain.ScanSummary, error)
}

// PriceSnapshotStore provides access to price_snapshots storage.
type PriceSnapshotStore interface {
	// Insert adds a new snapshot. Returns ErrDuplicateKey if (source, fetched_at_ms) exists.
	Insert(ctx context.Context, s *domain.PriceSnapshot) error

	// GetByTimeRange retrieves snapshots fetched within [start, end] (inclusive), ordered by fetched_at_ms ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.PriceSnapshot, error)
}
