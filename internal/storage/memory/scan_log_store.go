package memory

import (
	"context"
	"sort"
	"sync"

	"rent-reclaim-bot/internal/domain"
	"rent-reclaim-bot/internal/storage"
)

// ScanLogStore is an in-memory implementation of storage.ScanLogStore.
type ScanLogStore struct {
	mu      sync.RWMutex
	records []*domain.ScanRecord
	byID    map[string]struct{}
}

// NewScanLogStore creates a new in-memory scan log store.
func NewScanLogStore() *ScanLogStore {
	return &ScanLogStore{
		byID: make(map[string]struct{}),
	}
}

// Insert adds a new scan record. Returns ErrDuplicateKey if scan_id exists.
func (s *ScanLogStore) Insert(_ context.Context, r *domain.ScanRecord) error {
	if r == nil || r.ScanID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[r.ScanID]; exists {
		return storage.ErrDuplicateKey
	}

	recCopy := *r
	s.records = append(s.records, &recCopy)
	s.byID[r.ScanID] = struct{}{}
	return nil
}

// GetByTimeRange retrieves records scanned within [start, end] (inclusive), ordered by scanned_at ASC.
func (s *ScanLogStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ScanRecord
	for _, r := range s.records {
		if r.ScannedAt >= start && r.ScannedAt <= end {
			recCopy := *r
			result = append(result, &recCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ScannedAt < result[j].ScannedAt
	})

	return result, nil
}

// Summarize aggregates records scanned within [start, end] (inclusive).
func (s *ScanLogStore) Summarize(ctx context.Context, start, end int64) (*domain.ScanSummary, error) {
	records, err := s.GetByTimeRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	summary := &domain.ScanSummary{}
	for _, r := range records {
		summary.Scans++
		switch r.Outcome {
		case domain.ScanOutcomeReclaimable:
			summary.Reclaimable++
		case domain.ScanOutcomeClean:
			summary.Clean++
		case domain.ScanOutcomeChainError:
			summary.ChainErrors++
		}
		summary.EmptyAccounts += r.EmptyAccounts
		summary.NetSOL += r.NetSOL
	}
	return summary, nil
}

var _ storage.ScanLogStore = (*ScanLogStore)(nil)
