package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rent-reclaim-bot/internal/domain"
	"rent-reclaim-bot/internal/storage"
	"rent-reclaim-bot/internal/storage/migrations"
	"rent-reclaim-bot/internal/storage/postgres"
)

func TestScanLogStore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewScanLogStore(pool)
	ctx := context.Background()

	t.Run("Insert and GetByTimeRange", func(t *testing.T) {
		records := []*domain.ScanRecord{
			{
				ScanID: "scan-a", ScannedAt: 1000, Outcome: domain.ScanOutcomeReclaimable,
				AddressKind: domain.AddressKindWallet, TotalAccounts: 5, EmptyAccounts: 3,
				NetSOL: 0.00458838, PriceUSD: 150, NetUSD: 0.688257, DurationMs: 120,
			},
			{
				ScanID: "scan-b", ScannedAt: 2000, Outcome: domain.ScanOutcomeClean,
				AddressKind: domain.AddressKindWallet, TotalAccounts: 2,
			},
			{
				ScanID: "scan-c", ScannedAt: 5000, Outcome: domain.ScanOutcomeChainError,
				AddressKind: domain.AddressKindOffCurve,
			},
		}
		for _, r := range records {
			require.NoError(t, store.Insert(ctx, r))
		}

		got, err := store.GetByTimeRange(ctx, 1000, 2000)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "scan-a", got[0].ScanID)
		assert.Equal(t, domain.ScanOutcomeReclaimable, got[0].Outcome)
		assert.Equal(t, 3, got[0].EmptyAccounts)
		assert.InDelta(t, 0.00458838, got[0].NetSOL, 1e-12)
		assert.Positive(t, got[0].CreatedAt)
		assert.Equal(t, "scan-b", got[1].ScanID)
	})

	t.Run("Insert duplicate", func(t *testing.T) {
		err := store.Insert(ctx, &domain.ScanRecord{
			ScanID: "scan-a", ScannedAt: 1000, Outcome: domain.ScanOutcomeClean,
		})
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	})

	t.Run("Insert invalid", func(t *testing.T) {
		assert.ErrorIs(t, store.Insert(ctx, nil), storage.ErrInvalidInput)
		assert.ErrorIs(t, store.Insert(ctx, &domain.ScanRecord{}), storage.ErrInvalidInput)
	})

	t.Run("Summarize", func(t *testing.T) {
		summary, err := store.Summarize(ctx, 0, 10000)
		require.NoError(t, err)
		assert.Equal(t, 3, summary.Scans)
		assert.Equal(t, 1, summary.Reclaimable)
		assert.Equal(t, 1, summary.Clean)
		assert.Equal(t, 1, summary.ChainErrors)
		assert.Equal(t, 3, summary.EmptyAccounts)
		assert.InDelta(t, 0.00458838, summary.NetSOL, 1e-12)
	})

	t.Run("Summarize empty range", func(t *testing.T) {
		summary, err := store.Summarize(ctx, 100000, 200000)
		require.NoError(t, err)
		assert.Zero(t, summary.Scans)
		assert.Zero(t, summary.NetSOL)
	})

	t.Run("Migrations are idempotent", func(t *testing.T) {
		require.NoError(t, migrations.RunPostgresMigrations(ctx, pool))
	})
}
