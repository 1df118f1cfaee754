package memory

import (
	"context"
	"testing"

	"vault-rewards/internal/domain"
)

func TestRewardEventStore_AppendAndList(t *testing.T) {
	store := NewRewardEventStore()
	ctx := context.Background()

	events := []*domain.RewardEvent{
		{PositionID: "pos-1", VaultID: "vault-1", AmountTokens: 5, AmountValue: 2.5, ElapsedDays: 1, OccurredAt: 200},
		{PositionID: "pos-1", VaultID: "vault-1", AmountTokens: 3, AmountValue: 1.5, ElapsedDays: 1, OccurredAt: 100},
		{PositionID: "pos-2", VaultID: "vault-2", AmountTokens: 7, AmountValue: 3.5, ElapsedDays: 2, OccurredAt: 150},
	}
	for _, e := range events {
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := store.ListByPosition(ctx, "pos-1")
	if err != nil {
		t.Fatalf("ListByPosition failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].OccurredAt != 100 || got[1].OccurredAt != 200 {
		t.Errorf("Events not ordered by occurred_at ASC: %+v", got)
	}
}

func TestRewardEventStore_TotalsByVault(t *testing.T) {
	store := NewRewardEventStore()
	ctx := context.Background()

	events := []*domain.RewardEvent{
		{PositionID: "pos-1", VaultID: "vault-1", AmountTokens: 5, AmountValue: 2.5, OccurredAt: 100},
		{PositionID: "pos-2", VaultID: "vault-1", AmountTokens: 3, AmountValue: 1.5, OccurredAt: 200},
		{PositionID: "pos-3", VaultID: "vault-2", AmountTokens: 7, AmountValue: 3.5, OccurredAt: 300},
	}
	for _, e := range events {
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	totals, err := store.TotalsByVault(ctx)
	if err != nil {
		t.Fatalf("TotalsByVault failed: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("len = %d, want 2", len(totals))
	}
	if totals[0].VaultID != "vault-1" || totals[0].EventCount != 2 || totals[0].TotalTokens != 8 {
		t.Errorf("vault-1 totals wrong: %+v", totals[0])
	}
	if totals[1].VaultID != "vault-2" || totals[1].TotalValue != 3.5 {
		t.Errorf("vault-2 totals wrong: %+v", totals[1])
	}
}
