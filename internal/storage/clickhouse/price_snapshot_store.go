package clickhouse

import (
	"context"
	"fmt"

	"rent-reclaim-bot/internal/domain"
	"rent-reclaim-bot/internal/storage"
)

// PriceSnapshotStore implements storage.PriceSnapshotStore using ClickHouse.
type PriceSnapshotStore struct {
	conn *Conn
}

// NewPriceSnapshotStore creates a new PriceSnapshotStore.
func NewPriceSnapshotStore(conn *Conn) *PriceSnapshotStore {
	return &PriceSnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceSnapshotStore = (*PriceSnapshotStore)(nil)

// Insert adds a new snapshot. Returns ErrDuplicateKey if (source, fetched_at_ms) exists.
// MergeTree does not enforce uniqueness, so the key is checked before the write.
func (s *PriceSnapshotStore) Insert(ctx context.Context, snap *domain.PriceSnapshot) error {
	if snap == nil || snap.FetchedAtMs <= 0 {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, snap.Source, snap.FetchedAtMs)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_snapshots (
			source, symbol, currency, fetched_at_ms, price
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	if err := batch.Append(
		snap.Source, snap.Symbol, snap.Currency,
		uint64(snap.FetchedAtMs), snap.PriceUSD,
	); err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTimeRange retrieves snapshots fetched within [start, end] (inclusive), ordered by fetched_at_ms ASC.
func (s *PriceSnapshotStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.PriceSnapshot, error) {
	query := `
		SELECT source, symbol, currency, fetched_at_ms, price
		FROM price_snapshots
		WHERE fetched_at_ms >= ? AND fetched_at_ms <= ?
		ORDER BY fetched_at_ms ASC, source ASC
	`

	rows, err := s.conn.Query(ctx, query, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanPriceSnapshots(rows)
}

// exists checks if a snapshot with the given key exists.
func (s *PriceSnapshotStore) exists(ctx context.Context, source string, fetchedAtMs int64) (bool, error) {
	query := `
		SELECT count(*) FROM price_snapshots
		WHERE source = ? AND fetched_at_ms = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, source, uint64(fetchedAtMs)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// chRows is the subset of driver.Rows used by scan helpers.
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanPriceSnapshots scans multiple rows.
func scanPriceSnapshots(rows chRows) ([]*domain.PriceSnapshot, error) {
	var snapshots []*domain.PriceSnapshot

	for rows.Next() {
		var snap domain.PriceSnapshot
		var fetchedAtMs uint64

		err := rows.Scan(
			&snap.Source, &snap.Symbol, &snap.Currency,
			&fetchedAtMs, &snap.PriceUSD,
		)
		if err != nil {
			return nil, fmt.Errorf("scan price snapshot row: %w", err)
		}

		snap.FetchedAtMs = int64(fetchedAtMs)
		snapshots = append(snapshots, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price snapshot rows: %w", err)
	}

	return snapshots, nil
}
