package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

func TestMiningConfigStore_LoadBeforeSave(t *testing.T) {
	store := NewMiningConfigStore()
	ctx := context.Background()

	_, err := store.Load(ctx)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMiningConfigStore_SaveAndLoad(t *testing.T) {
	store := NewMiningConfigStore()
	ctx := context.Background()

	c := &domain.MiningConfig{
		InternalPrice: 0.5,
		TotalSupply:   1000,
		PoolTotal:     600,
		PoolRemaining: 600,
		UpdatedAt:     1704067200000,
	}

	if err := store.Save(ctx, c); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.PoolTotal != 600 || got.PoolRemaining != 600 {
		t.Errorf("Pool mismatch: got total=%f remaining=%f", got.PoolTotal, got.PoolRemaining)
	}

	// Mutating the returned copy must not affect the store.
	got.PoolRemaining = 0
	again, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if again.PoolRemaining != 600 {
		t.Errorf("Store mutated through returned copy: remaining=%f", again.PoolRemaining)
	}
}

func TestMiningConfigStore_ReservePool(t *testing.T) {
	store := NewMiningConfigStore()
	ctx := context.Background()

	err := store.Save(ctx, &domain.MiningConfig{PoolTotal: 10, PoolRemaining: 10})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Full reservation within balance.
	reserved, remaining, err := store.ReservePool(ctx, 4)
	if err != nil {
		t.Fatalf("ReservePool failed: %v", err)
	}
	if reserved != 4 || remaining != 6 {
		t.Errorf("got reserved=%f remaining=%f, want 4/6", reserved, remaining)
	}

	// Over-ask caps at remaining and floors at zero.
	reserved, remaining, err = store.ReservePool(ctx, 15)
	if err != nil {
		t.Fatalf("ReservePool failed: %v", err)
	}
	if reserved != 6 || remaining != 0 {
		t.Errorf("got reserved=%f remaining=%f, want 6/0", reserved, remaining)
	}

	// Exhausted pool reserves nothing.
	reserved, remaining, err = store.ReservePool(ctx, 1)
	if err != nil {
		t.Fatalf("ReservePool failed: %v", err)
	}
	if reserved != 0 || remaining != 0 {
		t.Errorf("got reserved=%f remaining=%f, want 0/0", reserved, remaining)
	}
}

func TestMiningConfigStore_ReleasePool(t *testing.T) {
	store := NewMiningConfigStore()
	ctx := context.Background()

	err := store.Save(ctx, &domain.MiningConfig{PoolTotal: 10, PoolRemaining: 10})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Release undoes a reservation exactly.
	if _, _, err := store.ReservePool(ctx, 4); err != nil {
		t.Fatalf("ReservePool failed: %v", err)
	}
	remaining, err := store.ReleasePool(ctx, 4)
	if err != nil {
		t.Fatalf("ReleasePool failed: %v", err)
	}
	if remaining != 10 {
		t.Errorf("remaining = %f, want 10", remaining)
	}

	// The balance caps at pool_total.
	remaining, err = store.ReleasePool(ctx, 3)
	if err != nil {
		t.Fatalf("ReleasePool failed: %v", err)
	}
	if remaining != 10 {
		t.Errorf("remaining = %f, want capped at 10", remaining)
	}

	if _, err := store.ReleasePool(ctx, -1); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestMiningConfigStore_ReservePoolConcurrent(t *testing.T) {
	store := NewMiningConfigStore()
	ctx := context.Background()

	err := store.Save(ctx, &domain.MiningConfig{PoolTotal: 100, PoolRemaining: 100})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	const workers = 50
	results := make([]float64, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reserved, _, err := store.ReservePool(ctx, 3)
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
	if total != 100 {
		t.Errorf("Total reserved %f, want exactly 100", total)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.PoolRemaining != 0 {
		t.Errorf("PoolRemaining = %f, want 0", got.PoolRemaining)
	}
}

func TestMiningConfigStore_AddDistributed(t *testing.T) {
	store := NewMiningConfigStore()
	ctx := context.Background()

	if err := store.AddDistributed(ctx, 5); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound before init, got %v", err)
	}

	err := store.Save(ctx, &domain.MiningConfig{PoolTotal: 600, PoolRemaining: 600})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.AddDistributed(ctx, 5); err != nil {
		t.Fatalf("AddDistributed failed: %v", err)
	}
	if err := store.AddDistributed(ctx, 2.5); err != nil {
		t.Fatalf("AddDistributed failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.PoolDistributed != 7.5 {
		t.Errorf("PoolDistributed = %f, want 7.5", got.PoolDistributed)
	}
}
