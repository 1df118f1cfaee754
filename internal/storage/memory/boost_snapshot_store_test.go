package memory

import (
	"context"
	"errors"
	"testing"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

func TestBoostSnapshotStore_UpsertOverwrites(t *testing.T) {
	store := NewBoostSnapshotStore()
	ctx := context.Background()

	first := &domain.BoostSnapshot{
		PositionID:        "pos-1",
		CollateralBalance: 1000,
		DiscountedPrice:   0.02,
		CollateralValue:   20,
		DepositValue:      1000,
		ThresholdValue:    400,
		IsEligible:        false,
		CheckedAt:         100,
	}
	if err := store.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	second := *first
	second.CollateralBalance = 30000
	second.CollateralValue = 600
	second.IsEligible = true
	second.CheckedAt = 200
	if err := store.Upsert(ctx, &second); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.GetByPosition(ctx, "pos-1")
	if err != nil {
		t.Fatalf("GetByPosition failed: %v", err)
	}
	if !got.IsEligible || got.CheckedAt != 200 {
		t.Errorf("Latest snapshot not returned: %+v", got)
	}

	_, err = store.GetByPosition(ctx, "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
