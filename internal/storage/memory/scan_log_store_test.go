package memory

import (
	"context"
	"errors"
	"testing"

	"rent-reclaim-bot/internal/domain"
	"rent-reclaim-bot/internal/storage"
)

func TestScanLogStore_InsertAndGetByTimeRange(t *testing.T) {
	store := NewScanLogStore()
	ctx := context.Background()

	records := []*domain.ScanRecord{
		{ScanID: "scan-3", ScannedAt: 3000, Outcome: domain.ScanOutcomeClean},
		{ScanID: "scan-1", ScannedAt: 1000, Outcome: domain.ScanOutcomeReclaimable, EmptyAccounts: 3},
		{ScanID: "scan-2", ScannedAt: 2000, Outcome: domain.ScanOutcomeChainError},
	}
	for _, r := range records {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetByTimeRange(ctx, 1000, 2000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result))
	}
	if result[0].ScanID != "scan-1" || result[1].ScanID != "scan-2" {
		t.Errorf("unexpected order: %s, %s", result[0].ScanID, result[1].ScanID)
	}
}

func TestScanLogStore_InsertDuplicate(t *testing.T) {
	store := NewScanLogStore()
	ctx := context.Background()

	r := &domain.ScanRecord{ScanID: "scan-1", ScannedAt: 1000}
	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("first Insert failed: %v", err)
	}

	err := store.Insert(ctx, r)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestScanLogStore_InsertInvalid(t *testing.T) {
	store := NewScanLogStore()

	err := store.Insert(context.Background(), &domain.ScanRecord{})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestScanLogStore_ReturnsCopies(t *testing.T) {
	store := NewScanLogStore()
	ctx := context.Background()

	r := &domain.ScanRecord{ScanID: "scan-1", ScannedAt: 1000, EmptyAccounts: 2}
	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	r.EmptyAccounts = 99

	result, _ := store.GetByTimeRange(ctx, 0, 2000)
	if result[0].EmptyAccounts != 2 {
		t.Errorf("stored record mutated through caller pointer: %d", result[0].EmptyAccounts)
	}
}

func TestScanLogStore_Summarize(t *testing.T) {
	store := NewScanLogStore()
	ctx := context.Background()

	records := []*domain.ScanRecord{
		{ScanID: "a", ScannedAt: 1000, Outcome: domain.ScanOutcomeReclaimable, EmptyAccounts: 3, NetSOL: 0.00458838},
		{ScanID: "b", ScannedAt: 1500, Outcome: domain.ScanOutcomeReclaimable, EmptyAccounts: 1, NetSOL: 0.00152946},
		{ScanID: "c", ScannedAt: 2000, Outcome: domain.ScanOutcomeClean},
		{ScanID: "d", ScannedAt: 2500, Outcome: domain.ScanOutcomeChainError},
		{ScanID: "e", ScannedAt: 9000, Outcome: domain.ScanOutcomeReclaimable, EmptyAccounts: 10},
	}
	for _, r := range records {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	summary, err := store.Summarize(ctx, 0, 5000)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if summary.Scans != 4 {
		t.Errorf("Scans: got %d, want 4", summary.Scans)
	}
	if summary.Reclaimable != 2 || summary.Clean != 1 || summary.ChainErrors != 1 {
		t.Errorf("unexpected outcome split: %+v", summary)
	}
	if summary.EmptyAccounts != 4 {
		t.Errorf("EmptyAccounts: got %d, want 4", summary.EmptyAccounts)
	}
	if diff := summary.NetSOL - 0.00611784; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("NetSOL: got %v, want 0.00611784", summary.NetSOL)
	}
}
