package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/jonboulle/clockwork"

	"vault-rewards/internal/storage/memory"
)

func newTestEvaluator(t *testing.T, src PriceSource) (*Evaluator, *memory.BoostSnapshotStore) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	cache := NewQuoteCache(src, nil, QuoteCacheOptions{Clock: clock})
	snapshots := memory.NewBoostSnapshotStore()
	return NewEvaluator(cache, snapshots, "LAIKA", clock), snapshots
}

func TestEvaluator_BelowThreshold(t *testing.T) {
	// 1000 tokens at a discounted 0.02 is 20, far short of the 400
	// required for a 1000 deposit.
	src := &fakeSource{spotPrice: 0.02 / 0.85}
	eval, _ := newTestEvaluator(t, src)

	r := eval.Evaluate(context.Background(), 1000, 1000)
	if r.IsEligible {
		t.Error("Expected ineligible")
	}
	if r.CollateralValue < 19.99 || r.CollateralValue > 20.01 {
		t.Errorf("CollateralValue = %f, want ~20", r.CollateralValue)
	}
	if r.RequiredValue != 400 {
		t.Errorf("RequiredValue = %f, want 400", r.RequiredValue)
	}
	if r.Shortfall < 379.99 || r.Shortfall > 380.01 {
		t.Errorf("Shortfall = %f, want ~380", r.Shortfall)
	}
}

func TestEvaluator_AtThreshold(t *testing.T) {
	src := &fakeSource{spotPrice: 0.2}
	eval, _ := newTestEvaluator(t, src)

	// required = 0.4 * 1000 = 400; pick a balance whose discounted value
	// lands exactly on it.
	balance := 400 / (0.2 * 0.85)
	r := eval.Evaluate(context.Background(), balance, 1000)
	if !r.IsEligible {
		t.Errorf("Expected eligible at exact threshold: %+v", r)
	}
	if r.Shortfall != 0 {
		t.Errorf("Shortfall = %f, want 0", r.Shortfall)
	}
}

func TestEvaluator_UnknownPriceIneligible(t *testing.T) {
	src := &fakeSource{spotErr: errors.New("upstream down")}
	eval, _ := newTestEvaluator(t, src)

	r := eval.Evaluate(context.Background(), 1_000_000, 100)
	if r.IsEligible {
		t.Error("Unknown price must be ineligible")
	}
	if r.PriceKnown {
		t.Error("PriceKnown should be false")
	}
}

func TestEvaluator_SnapshotIdempotent(t *testing.T) {
	src := &fakeSource{spotPrice: 0.02}
	eval, snapshots := newTestEvaluator(t, src)
	ctx := context.Background()

	r1, err := eval.Snapshot(ctx, "pos-1", 30000, 1000)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	r2, err := eval.Snapshot(ctx, "pos-1", 30000, 1000)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if r1.IsEligible != r2.IsEligible || r1.CollateralValue != r2.CollateralValue {
		t.Errorf("Repeated snapshots differ: %+v vs %+v", r1, r2)
	}

	snap, err := snapshots.GetByPosition(ctx, "pos-1")
	if err != nil {
		t.Fatalf("GetByPosition failed: %v", err)
	}
	if snap.IsEligible != r2.IsEligible {
		t.Errorf("Stored snapshot disagrees with result: %+v", snap)
	}
}
