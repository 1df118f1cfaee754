package memory

import (
	"context"
	"errors"
	"testing"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

func TestPriceQuoteStore_UpsertAndGet(t *testing.T) {
	store := NewPriceQuoteStore()
	ctx := context.Background()

	q := &domain.PriceQuote{
		Token:           "LAIKA",
		MarketPrice:     0.02,
		DiscountedPrice: 0.017,
		Source:          domain.QuoteSourceSpot,
		FetchedAt:       1704067200000,
	}
	if err := store.Upsert(ctx, q); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	q2 := *q
	q2.MarketPrice = 0.03
	q2.FetchedAt = 1704067260000
	if err := store.Upsert(ctx, &q2); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.GetByToken(ctx, "LAIKA")
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if got.MarketPrice != 0.03 {
		t.Errorf("MarketPrice = %f, want 0.03", got.MarketPrice)
	}

	_, err = store.GetByToken(ctx, "OTHER")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
