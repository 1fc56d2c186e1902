package memory

import (
	"context"
	"sort"
	"sync"

	"rent-reclaim-bot/internal/domain"
	"rent-reclaim-bot/internal/storage"
)

type snapshotKey struct {
	source      string
	fetchedAtMs int64
}

// PriceSnapshotStore is an in-memory implementation of storage.PriceSnapshotStore.
type PriceSnapshotStore struct {
	mu        sync.RWMutex
	snapshots []*domain.PriceSnapshot
	seen      map[snapshotKey]struct{}
}

// NewPriceSnapshotStore creates a new in-memory price snapshot store.
func NewPriceSnapshotStore() *PriceSnapshotStore {
	return &PriceSnapshotStore{
		seen: make(map[snapshotKey]struct{}),
	}
}

// Insert adds a new snapshot. Returns ErrDuplicateKey if (source, fetched_at_ms) exists.
func (s *PriceSnapshotStore) Insert(_ context.Context, snap *domain.PriceSnapshot) error {
	if snap == nil || snap.FetchedAtMs <= 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := snapshotKey{source: snap.Source, fetchedAtMs: snap.FetchedAtMs}
	if _, exists := s.seen[k]; exists {
		return storage.ErrDuplicateKey
	}

	snapCopy := *snap
	s.snapshots = append(s.snapshots, &snapCopy)
	s.seen[k] = struct{}{}
	return nil
}

// GetByTimeRange retrieves snapshots fetched within [start, end] (inclusive), ordered by fetched_at_ms ASC.
func (s *PriceSnapshotStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.PriceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceSnapshot
	for _, snap := range s.snapshots {
		if snap.FetchedAtMs >= start && snap.FetchedAtMs <= end {
			snapCopy := *snap
			result = append(result, &snapCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].FetchedAtMs < result[j].FetchedAtMs
	})

	return result, nil
}

var _ storage.PriceSnapshotStore = (*PriceSnapshotStore)(nil)
