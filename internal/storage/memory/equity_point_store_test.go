package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"equity-lab/internal/domain"
	"equity-lab/internal/storage"
)

func point(account string, d int, equity float64) *domain.EquityPoint {
	return &domain.EquityPoint{
		AccountID: account,
		Date:      time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC),
		Balance:   equity,
		Equity:    equity,
	}
}

func TestEquityPointStore_ReplaceAndGet(t *testing.T) {
	store := NewEquityPointStore()
	ctx := context.Background()

	// Out-of-order input: store returns date ASC.
	err := store.ReplaceAccount(ctx, "acc1", []*domain.EquityPoint{
		point("acc1", 10, 10300),
		point("acc1", 1, 10000),
		point("acc1", 5, 10500),
	})
	if err != nil {
		t.Fatalf("ReplaceAccount failed: %v", err)
	}

	points, err := store.GetByAccountID(ctx, "acc1")
	if err != nil {
		t.Fatalf("GetByAccountID failed: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	for i := 1; i < len(points); i++ {
		if !points[i-1].Date.Before(points[i].Date) {
			t.Error("points must come back ordered by date ASC")
		}
	}
}

func TestEquityPointStore_ReplaceDropsOldSeries(t *testing.T) {
	store := NewEquityPointStore()
	ctx := context.Background()

	_ = store.ReplaceAccount(ctx, "acc1", []*domain.EquityPoint{point("acc1", 1, 100)})
	_ = store.ReplaceAccount(ctx, "acc1", []*domain.EquityPoint{point("acc1", 2, 200)})

	points, _ := store.GetByAccountID(ctx, "acc1")
	if len(points) != 1 || points[0].Equity != 200 {
		t.Errorf("replace must drop the previous series: got %+v", points)
	}
}

func TestEquityPointStore_RejectsForeignPoints(t *testing.T) {
	store := NewEquityPointStore()

	err := store.ReplaceAccount(context.Background(), "acc1", []*domain.EquityPoint{point("acc2", 1, 100)})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for mismatched account id, got %v", err)
	}
}

func TestEquityPointStore_EmptyAccount(t *testing.T) {
	store := NewEquityPointStore()

	points, err := store.GetByAccountID(context.Background(), "none")
	if err != nil {
		t.Fatalf("GetByAccountID failed: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("unknown account should yield empty series, got %d points", len(points))
	}
}
