package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

func TestRewardEventStore_AppendAndList(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRewardEventStore(conn)
	ctx := context.Background()

	// Rejects empty events.
	err := store.Append(ctx, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
	err = store.Append(ctx, &domain.RewardEvent{})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	// Out-of-order appends come back sorted by occurred_at.
	events := []*domain.RewardEvent{
		{PositionID: "pos-1", VaultID: "vault-1", AmountTokens: 5, AmountValue: 2.5, ElapsedDays: 1, PoolRemainingAfter: 595, OccurredAt: 2000},
		{PositionID: "pos-1", VaultID: "vault-1", AmountTokens: 10, AmountValue: 5, ElapsedDays: 2, PoolRemainingAfter: 585, OccurredAt: 1000},
		{PositionID: "pos-2", VaultID: "vault-2", AmountTokens: 3, AmountValue: 1.5, ElapsedDays: 1, PoolRemainingAfter: 582, OccurredAt: 3000},
	}
	for _, e := range events {
		require.NoError(t, store.Append(ctx, e))
	}

	got, err := store.ListByPosition(ctx, "pos-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1000), got[0].OccurredAt)
	assert.Equal(t, int64(2000), got[1].OccurredAt)
	assert.Equal(t, 10.0, got[0].AmountTokens)
	assert.Equal(t, int64(2), got[0].ElapsedDays)
	assert.Equal(t, 585.0, got[0].PoolRemainingAfter)

	got, err = store.ListByPosition(ctx, "pos-unknown")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRewardEventStore_TotalsByVault(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRewardEventStore(conn)
	ctx := context.Background()

	events := []*domain.RewardEvent{
		{PositionID: "pos-1", VaultID: "vault-a", AmountTokens: 5, AmountValue: 2.5, ElapsedDays: 1, PoolRemainingAfter: 595, OccurredAt: 1000},
		{PositionID: "pos-2", VaultID: "vault-a", AmountTokens: 7, AmountValue: 3.5, ElapsedDays: 1, PoolRemainingAfter: 588, OccurredAt: 2000},
		{PositionID: "pos-3", VaultID: "vault-b", AmountTokens: 2, AmountValue: 1, ElapsedDays: 1, PoolRemainingAfter: 586, OccurredAt: 3000},
	}
	for _, e := range events {
		require.NoError(t, store.Append(ctx, e))
	}

	totals, err := store.TotalsByVault(ctx)
	require.NoError(t, err)
	require.Len(t, totals, 2)

	assert.Equal(t, "vault-a", totals[0].VaultID)
	assert.Equal(t, int64(2), totals[0].EventCount)
	assert.Equal(t, 12.0, totals[0].TotalTokens)
	assert.Equal(t, 6.0, totals[0].TotalValue)

	assert.Equal(t, "vault-b", totals[1].VaultID)
	assert.Equal(t, int64(1), totals[1].EventCount)
	assert.Equal(t, 2.0, totals[1].TotalTokens)
}
