package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
	"vault-rewards/internal/storage/postgres"
)

func TestMiningConfigStore_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewMiningConfigStore(pool)
	ctx := context.Background()

	t.Run("LoadBeforeSave", func(t *testing.T) {
		_, err := store.Load(ctx)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		mint := "So11111111111111111111111111111111111111112"
		c := &domain.MiningConfig{
			InternalPrice: 0.5,
			TotalSupply:   1000,
			PoolTotal:     600,
			PoolRemaining: 600,
			TokenMint:     &mint,
			UpdatedAt:     1704067200000,
		}
		require.NoError(t, store.Save(ctx, c))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, 600.0, got.PoolTotal)
		require.Equal(t, 600.0, got.PoolRemaining)
		require.NotNil(t, got.TokenMint)
		require.Equal(t, mint, *got.TokenMint)
	})

	t.Run("SaveReplacesSingleton", func(t *testing.T) {
		c := &domain.MiningConfig{
			InternalPrice: 1.0,
			TotalSupply:   2000,
			PoolTotal:     1200,
			PoolRemaining: 1200,
			UpdatedAt:     1704153600000,
		}
		require.NoError(t, store.Save(ctx, c))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, 1200.0, got.PoolRemaining)
		require.Nil(t, got.TokenMint)
	})

	t.Run("ReservePoolFloorsAtZero", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &domain.MiningConfig{
			PoolTotal: 10, PoolRemaining: 10, UpdatedAt: 1,
		}))

		reserved, remaining, err := store.ReservePool(ctx, 4)
		require.NoError(t, err)
		require.Equal(t, 4.0, reserved)
		require.Equal(t, 6.0, remaining)

		reserved, remaining, err = store.ReservePool(ctx, 15)
		require.NoError(t, err)
		require.Equal(t, 6.0, reserved)
		require.Equal(t, 0.0, remaining)

		reserved, remaining, err = store.ReservePool(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, 0.0, reserved)
		require.Equal(t, 0.0, remaining)
	})

	t.Run("ReleasePoolCapsAtTotal", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &domain.MiningConfig{
			PoolTotal: 10, PoolRemaining: 10, UpdatedAt: 1,
		}))

		_, _, err := store.ReservePool(ctx, 4)
		require.NoError(t, err)

		remaining, err := store.ReleasePool(ctx, 4)
		require.NoError(t, err)
		require.Equal(t, 10.0, remaining)

		remaining, err = store.ReleasePool(ctx, 3)
		require.NoError(t, err)
		require.Equal(t, 10.0, remaining, "release must not push the balance past pool_total")
	})

	t.Run("ReservePoolConcurrent", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &domain.MiningConfig{
			PoolTotal: 100, PoolRemaining: 100, UpdatedAt: 1,
		}))

		const workers = 20
		results := make([]float64, workers)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				reserved, _, err := store.ReservePool(ctx, 7)
				if err != nil {
					t.Errorf("ReservePool failed: %v", err)
					return
				}
				results[i] = reserved
			}(i)
		}
		wg.Wait()

		var total float64
		for _, r := range results {
			total += r
		}
		require.Equal(t, 100.0, total, "sum of reservations must equal the pool exactly")

		got, err := store.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, 0.0, got.PoolRemaining)
	})

	t.Run("AddDistributed", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &domain.MiningConfig{
			PoolTotal: 600, PoolRemaining: 600, UpdatedAt: 1,
		}))

		require.NoError(t, store.AddDistributed(ctx, 5))
		require.NoError(t, store.AddDistributed(ctx, 2.5))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, 7.5, got.PoolDistributed)

		err = store.AddDistributed(ctx, -1)
		require.True(t, errors.Is(err, storage.ErrInvalidInput))
	})
}
