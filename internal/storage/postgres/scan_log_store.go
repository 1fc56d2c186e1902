package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"rent-reclaim-bot/internal/domain"
	"rent-reclaim-bot/internal/storage"
)

// ScanLogStore implements storage.ScanLogStore using PostgreSQL.
type ScanLogStore struct {
	pool *Pool
}

// NewScanLogStore creates a new ScanLogStore.
func NewScanLogStore(pool *Pool) *ScanLogStore {
	return &ScanLogStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ScanLogStore = (*ScanLogStore)(nil)

// Insert adds a new scan record. Returns ErrDuplicateKey if scan_id exists.
func (s *ScanLogStore) Insert(ctx context.Context, r *domain.ScanRecord) error {
	if r == nil || r.ScanID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO scan_log (
			scan_id, scanned_at, outcome, address_kind, total_accounts,
			empty_accounts, net_sol, price_usd, net_usd, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		r.ScanID,
		r.ScannedAt,
		string(r.Outcome),
		r.AddressKind,
		r.TotalAccounts,
		r.EmptyAccounts,
		r.NetSOL,
		r.PriceUSD,
		r.NetUSD,
		r.DurationMs,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert scan record: %w", err)
	}
	return nil
}

// GetByTimeRange retrieves records scanned within [start, end] (inclusive), ordered by scanned_at ASC.
func (s *ScanLogStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.ScanRecord, error) {
	query := `
		SELECT scan_id, scanned_at, outcome, address_kind, total_accounts,
		       empty_accounts, net_sol, price_usd, net_usd, duration_ms, created_at
		FROM scan_log
		WHERE scanned_at >= $1 AND scanned_at <= $2
		ORDER BY scanned_at ASC, scan_id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query scan records: %w", err)
	}
	defer rows.Close()

	var result []*domain.ScanRecord
	for rows.Next() {
		r, err := scanScanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scan record: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan records: %w", err)
	}

	return result, nil
}

// Summarize aggregates records scanned within [start, end] (inclusive).
func (s *ScanLogStore) Summarize(ctx context.Context, start, end int64) (*domain.ScanSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE outcome = $3),
			COUNT(*) FILTER (WHERE outcome = $4),
			COUNT(*) FILTER (WHERE outcome = $5),
			COALESCE(SUM(empty_accounts), 0),
			COALESCE(SUM(net_sol), 0)
		FROM scan_log
		WHERE scanned_at >= $1 AND scanned_at <= $2
	`

	var summary domain.ScanSummary
	err := s.pool.QueryRow(ctx, query, start, end,
		string(domain.ScanOutcomeReclaimable),
		string(domain.ScanOutcomeClean),
		string(domain.ScanOutcomeChainError),
	).Scan(
		&summary.Scans,
		&summary.Reclaimable,
		&summary.Clean,
		&summary.ChainErrors,
		&summary.EmptyAccounts,
		&summary.NetSOL,
	)
	if err != nil {
		return nil, fmt.Errorf("summarize scan records: %w", err)
	}
	return &summary, nil
}

// scanScanRecord scans a single row into ScanRecord.
func scanScanRecord(row pgx.Row) (*domain.ScanRecord, error) {
	var r domain.ScanRecord
	var outcome string

	err := row.Scan(
		&r.ScanID,
		&r.ScannedAt,
		&outcome,
		&r.AddressKind,
		&r.TotalAccounts,
		&r.EmptyAccounts,
		&r.NetSOL,
		&r.PriceUSD,
		&r.NetUSD,
		&r.DurationMs,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Outcome = domain.ScanOutcome(outcome)
	return &r, nil
}
