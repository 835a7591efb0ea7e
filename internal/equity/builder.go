// Package equity reconstructs a chronological balance/equity series from
// a classified deal event stream.
package equity

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"equity-lab/internal/domain"
	"equity-lab/internal/ledger"
)

// ErrPrecondition indicates a broken caller contract, such as a live
// balance/equity snapshot with non-finite values. This is the one hard
// failure of the engine: it signals a broken upstream boundary, not a
// data-quality issue.
var ErrPrecondition = errors.New("precondition violated")

// emptySeriesLookback is the span of the flat two-point series emitted
// for accounts with no events.
const emptySeriesLookback = 30 * 24 * time.Hour

// Builder folds classified events into an equity point series.
type Builder struct {
	reconciler *ledger.Reconciler
	now        func() time.Time
}

// NewBuilder creates a builder using the wall clock.
func NewBuilder() *Builder {
	return &Builder{
		reconciler: ledger.NewReconciler(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
// The clock also drives the ledger inference fallback timestamp.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	b.reconciler = ledger.NewReconciler().WithClock(now)
	return b
}

// Build reconstructs the equity series for an account.
//
// Events are sorted by timestamp, stable on event id for ties. The fold
// seeds on the first Deposit; trade closes landing on the same calendar
// date coalesce into one point instead of appending duplicates. When the
// event set carries no deposit history the ledger inference synthesizes
// one before building. The final point always reflects the caller's live
// snapshot, so the last equity value equals snapshot.Equity exactly.
func (b *Builder) Build(events []domain.ClassifiedEvent, snapshot domain.AccountSnapshot) ([]domain.EquityPoint, error) {
	if !isFinite(snapshot.Balance) || !isFinite(snapshot.Equity) {
		return nil, fmt.Errorf("%w: non-finite balance/equity snapshot for account %s",
			ErrPrecondition, snapshot.AccountID)
	}

	today := dateOf(b.now())

	if len(events) == 0 {
		return []domain.EquityPoint{
			{AccountID: snapshot.AccountID, Date: dateOf(b.now().Add(-emptySeriesLookback)), Balance: snapshot.Balance, Equity: snapshot.Balance},
			{AccountID: snapshot.AccountID, Date: today, Balance: snapshot.Balance, Equity: snapshot.Equity},
		}, nil
	}

	sorted := make([]domain.ClassifiedEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		return sorted[i].EventID < sorted[j].EventID
	})

	if !hasDeposit(sorted) {
		state := b.reconciler.Reconcile(snapshot.AccountID, sorted, snapshot.Balance)
		if dep, ok := ledger.SyntheticDeposit(state); ok {
			sorted = append([]domain.ClassifiedEvent{dep}, sorted...)
		}
	}

	var (
		points         []domain.EquityPoint
		runningBalance float64
		runningEquity  float64
		started        bool
	)

	upsert := func(date time.Time, volume float64) {
		if n := len(points); n > 0 && points[n-1].Date.Equal(date) {
			points[n-1].Balance = runningBalance
			points[n-1].Equity = runningEquity
			points[n-1].Volume += volume
			return
		}
		points = append(points, domain.EquityPoint{
			AccountID: snapshot.AccountID,
			Date:      date,
			Balance:   runningBalance,
			Equity:    runningEquity,
			Volume:    volume,
		})
	}

	for i := range sorted {
		e := &sorted[i]
		switch e.Category {
		case domain.CategoryDeposit:
			if !started {
				runningBalance = e.Profit
				runningEquity = e.Profit
				started = true
			} else {
				runningBalance += e.Profit
				runningEquity = runningBalance
			}
			upsert(dateOf(e.Timestamp), 0)
		case domain.CategoryWithdrawal:
			if !started {
				continue
			}
			runningBalance += e.Profit // profit is negative for withdrawals
			runningEquity = runningBalance
			upsert(dateOf(e.Timestamp), 0)
		case domain.CategoryTradeClose:
			if !started {
				continue
			}
			// Equity coincides with balance at trade-close granularity;
			// intraday floating equity is not reconstructed historically.
			runningBalance += e.RealizedPL()
			runningEquity = runningBalance
			upsert(dateOf(e.Timestamp), e.Volume)
		}
	}

	if n := len(points); n > 0 && points[n-1].Date.Equal(today) {
		points[n-1].Balance = snapshot.Balance
		points[n-1].Equity = snapshot.Equity
	} else {
		points = append(points, domain.EquityPoint{
			AccountID: snapshot.AccountID,
			Date:      today,
			Balance:   snapshot.Balance,
			Equity:    snapshot.Equity,
		})
	}

	return points, nil
}

// hasDeposit reports whether any observed deposit exists in the stream.
func hasDeposit(events []domain.ClassifiedEvent) bool {
	for i := range events {
		if events[i].Category == domain.CategoryDeposit {
			return true
		}
	}
	return false
}

// dateOf truncates a timestamp to its UTC calendar day.
func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
