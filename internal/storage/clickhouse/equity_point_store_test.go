package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-lab/internal/domain"
	"equity-lab/internal/storage"
)

func testPoint(account string, d int, equity float64) *domain.EquityPoint {
	return &domain.EquityPoint{
		AccountID: account,
		Date:      time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC),
		Balance:   equity,
		Equity:    equity,
		Volume:    0.5,
	}
}

func TestEquityPointStore_ReplaceAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEquityPointStore(conn)

	err := store.ReplaceAccount(ctx, "acc1", []*domain.EquityPoint{
		testPoint("acc1", 1, 10000),
		testPoint("acc1", 5, 10500),
		testPoint("acc1", 10, 10300),
	})
	require.NoError(t, err)

	points, err := store.GetByAccountID(ctx, "acc1")
	require.NoError(t, err)

	require.Len(t, points, 3)
	assert.Equal(t, "acc1", points[0].AccountID)
	assert.True(t, points[0].Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.InDelta(t, 10000, points[0].Equity, 0.0001)
	assert.InDelta(t, 10500, points[1].Equity, 0.0001)
	assert.InDelta(t, 10300, points[2].Equity, 0.0001)
	assert.InDelta(t, 0.5, points[0].Volume, 0.0001)
}

func TestEquityPointStore_ReplaceDropsOldSeries(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEquityPointStore(conn)

	require.NoError(t, store.ReplaceAccount(ctx, "acc1", []*domain.EquityPoint{
		testPoint("acc1", 1, 100),
		testPoint("acc1", 2, 200),
	}))
	require.NoError(t, store.ReplaceAccount(ctx, "acc1", []*domain.EquityPoint{
		testPoint("acc1", 3, 300),
	}))

	points, err := store.GetByAccountID(ctx, "acc1")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.InDelta(t, 300, points[0].Equity, 0.0001)
}

func TestEquityPointStore_AccountIsolation(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewEquityPointStore(conn)

	require.NoError(t, store.ReplaceAccount(ctx, "acc1", []*domain.EquityPoint{testPoint("acc1", 1, 100)}))
	require.NoError(t, store.ReplaceAccount(ctx, "acc2", []*domain.EquityPoint{testPoint("acc2", 1, 999)}))

	// Replacing acc1 must not touch acc2.
	require.NoError(t, store.ReplaceAccount(ctx, "acc1", nil))

	points, err := store.GetByAccountID(ctx, "acc2")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.InDelta(t, 999, points[0].Equity, 0.0001)
}

func TestEquityPointStore_RejectsForeignPoints(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEquityPointStore(conn)

	err := store.ReplaceAccount(context.Background(), "acc1", []*domain.EquityPoint{testPoint("acc2", 1, 100)})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
