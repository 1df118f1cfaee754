package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
	"vault-rewards/internal/storage/postgres"
)

func TestClaimStore_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	vaults := postgres.NewVaultStore(pool)
	positions := postgres.NewPositionStore(pool)
	store := postgres.NewClaimStore(pool)
	ctx := context.Background()

	require.NoError(t, vaults.Insert(ctx, &domain.Vault{
		VaultID:        "vault-1",
		BaseRateBP:     1800,
		DurationMonths: 12,
		IsActive:       true,
	}))
	require.NoError(t, positions.Insert(ctx, &domain.Position{
		PositionID:     "pos-1",
		VaultID:        "vault-1",
		OwnerAddress:   "owner-1",
		PrincipalValue: 1000,
		Frequency:      domain.FrequencyMonthly,
		CreatedAt:      1704067200000,
	}))

	t.Run("AppendAndGet", func(t *testing.T) {
		c := &domain.ClaimRecord{
			ClaimID:         "claim-1",
			PositionID:      "pos-1",
			ClaimantAddress: "claimant-1",
			Amount:          25,
			PriceAtClaim:    0.5,
			Status:          domain.ClaimStatusPending,
			CreatedAt:       1704067200000,
		}
		require.NoError(t, store.Append(ctx, c))

		got, err := store.GetByID(ctx, "claim-1")
		require.NoError(t, err)
		require.Equal(t, domain.ClaimStatusPending, got.Status)
		require.Nil(t, got.ExternalRef)
		require.Nil(t, got.ConfirmedAt)

		require.ErrorIs(t, store.Append(ctx, c), storage.ErrDuplicateKey)
	})

	t.Run("ConfirmExactlyOnce", func(t *testing.T) {
		confirmed, err := store.Confirm(ctx, "claim-1", "tx-abc")
		require.NoError(t, err)
		require.Equal(t, domain.ClaimStatusConfirmed, confirmed.Status)
		require.NotNil(t, confirmed.ExternalRef)
		require.Equal(t, "tx-abc", *confirmed.ExternalRef)
		require.NotNil(t, confirmed.ConfirmedAt)

		// Duplicate settlement event must surface, not silently succeed.
		_, err = store.Confirm(ctx, "claim-1", "tx-abc")
		require.ErrorIs(t, err, storage.ErrNotFound)

		_, err = store.Confirm(ctx, "missing", "tx-abc")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ListByClaimantNewestFirst", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, &domain.ClaimRecord{
			ClaimID:         "claim-2",
			PositionID:      "pos-1",
			ClaimantAddress: "claimant-1",
			Amount:          5,
			Status:          domain.ClaimStatusPending,
			CreatedAt:       1704153600000,
		}))

		got, err := store.ListByClaimant(ctx, "claimant-1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, "claim-2", got[0].ClaimID)
	})
}
