package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-lab/internal/domain"
	"equity-lab/internal/storage"
)

func testEvent(eventID, accountID string, ts time.Time) *domain.DealEvent {
	return &domain.DealEvent{
		EventID:    eventID,
		AccountID:  accountID,
		Timestamp:  ts,
		Kind:       domain.KindSell,
		Entry:      domain.EntryClose,
		Symbol:     "EURUSD",
		Volume:     0.10,
		Price:      1.0850,
		Profit:     52.30,
		Commission: -0.70,
		Swap:       -0.15,
		StrategyID: ptr(int64(12345)),
	}
}

func TestEventStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEventStore(pool)

	ts := time.Date(2024, 1, 5, 14, 30, 0, 0, time.UTC)
	event := testEvent("ev1", "acc1", ts)

	err := store.Insert(ctx, event)
	require.NoError(t, err)

	events, err := store.GetByAccountID(ctx, "acc1")
	require.NoError(t, err)

	require.Len(t, events, 1)
	got := events[0]
	assert.Equal(t, event.EventID, got.EventID)
	assert.Equal(t, event.AccountID, got.AccountID)
	assert.True(t, got.Timestamp.Equal(ts))
	assert.Equal(t, event.Kind, got.Kind)
	assert.Equal(t, event.Entry, got.Entry)
	assert.Equal(t, event.Symbol, got.Symbol)
	assert.InDelta(t, event.Volume, got.Volume, 0.0001)
	assert.InDelta(t, event.Profit, got.Profit, 0.0001)
	assert.InDelta(t, event.Commission, got.Commission, 0.0001)
	assert.InDelta(t, event.Swap, got.Swap, 0.0001)
	require.NotNil(t, got.StrategyID)
	assert.Equal(t, int64(12345), *got.StrategyID)
}

func TestEventStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEventStore(pool)

	event := testEvent("dup1", "acc1", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))

	err := store.Insert(ctx, event)
	require.NoError(t, err)

	err = store.Insert(ctx, event)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestEventStore_InsertBulkAtomic(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEventStore(pool)

	base := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	err := store.Insert(ctx, testEvent("ev1", "acc1", base))
	require.NoError(t, err)

	// Batch contains a duplicate: nothing from the batch may land.
	err = store.InsertBulk(ctx, []*domain.DealEvent{
		testEvent("ev2", "acc1", base.Add(time.Hour)),
		testEvent("ev1", "acc1", base.Add(2*time.Hour)),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	events, err := store.GetByAccountID(ctx, "acc1")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestEventStore_GetByAccountID_Ordering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEventStore(pool)

	base := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	// Inserted out of order; two events share a timestamp.
	err := store.InsertBulk(ctx, []*domain.DealEvent{
		testEvent("ev-c", "acc1", base.Add(time.Hour)),
		testEvent("ev-a", "acc1", base),
		testEvent("ev-b", "acc1", base),
	})
	require.NoError(t, err)

	events, err := store.GetByAccountID(ctx, "acc1")
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, "ev-a", events[0].EventID)
	assert.Equal(t, "ev-b", events[1].EventID)
	assert.Equal(t, "ev-c", events[2].EventID)
}

func TestEventStore_GetByTimeRange_Inclusive(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEventStore(pool)

	base := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	err := store.InsertBulk(ctx, []*domain.DealEvent{
		testEvent("ev1", "acc1", base),
		testEvent("ev2", "acc1", base.Add(time.Hour)),
		testEvent("ev3", "acc1", base.Add(2*time.Hour)),
	})
	require.NoError(t, err)

	// Both boundaries are inclusive.
	events, err := store.GetByTimeRange(ctx, "acc1", base, base.Add(time.Hour))
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, "ev1", events[0].EventID)
	assert.Equal(t, "ev2", events[1].EventID)
}

func TestEventStore_AccountIsolation(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEventStore(pool)

	base := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Insert(ctx, testEvent("ev1", "acc1", base)))
	require.NoError(t, store.Insert(ctx, testEvent("ev2", "acc2", base)))

	events, err := store.GetByAccountID(ctx, "acc1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ev1", events[0].EventID)
}

func TestEventStore_ReplaceAccount(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEventStore(pool)

	base := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertBulk(ctx, []*domain.DealEvent{
		testEvent("old1", "acc1", base),
		testEvent("old2", "acc1", base.Add(time.Hour)),
	}))
	require.NoError(t, store.Insert(ctx, testEvent("other", "acc2", base)))

	err := store.ReplaceAccount(ctx, "acc1", []*domain.DealEvent{
		testEvent("new1", "acc1", base.Add(2*time.Hour)),
	})
	require.NoError(t, err)

	events, err := store.GetByAccountID(ctx, "acc1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "new1", events[0].EventID)

	// Other accounts stay untouched.
	other, err := store.GetByAccountID(ctx, "acc2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestEventStore_ListAccounts(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEventStore(pool)

	base := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Insert(ctx, testEvent("ev1", "acc2", base)))
	require.NoError(t, store.Insert(ctx, testEvent("ev2", "acc1", base)))
	require.NoError(t, store.Insert(ctx, testEvent("ev3", "acc1", base.Add(time.Hour))))

	accounts, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"acc1", "acc2"}, accounts)
}

func TestEventStore_NilStrategyID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEventStore(pool)

	ev := testEvent("manual", "acc1", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	ev.StrategyID = nil
	require.NoError(t, store.Insert(ctx, ev))

	events, err := store.GetByAccountID(ctx, "acc1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].StrategyID)
}
