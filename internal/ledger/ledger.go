// Package ledger reconciles capital movements against trading activity
// for a single account.
package ledger

import (
	"time"

	"equity-lab/internal/domain"
)

// inferredLookback is the synthetic deposit age used when an account has
// no events at all.
const inferredLookback = 30 * 24 * time.Hour

// Reconciler computes capital ledger state from classified events.
type Reconciler struct {
	now func() time.Time // injectable clock for deterministic output
}

// NewReconciler creates a reconciler using the wall clock.
func NewReconciler() *Reconciler {
	return &Reconciler{now: func() time.Time { return time.Now().UTC() }}
}

// WithClock sets a custom clock function for deterministic output.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

// Reconcile sums deposits, withdrawals and realized trading P&L, and
// infers an initial capital baseline when no usable deposit history
// exists. currentBalance is the live balance snapshot for the account.
//
// The inference path is best-effort: the result carries Inferred=true so
// callers can distinguish observed from estimated capital, and the
// estimated amount is folded into the deposit tallies as a synthetic
// deposit dated at the earliest known event (or 30 days before now when
// the event set is empty).
func (r *Reconciler) Reconcile(accountID string, events []domain.ClassifiedEvent, currentBalance float64) domain.CapitalLedgerState {
	state := domain.CapitalLedgerState{AccountID: accountID}

	var earliest time.Time
	for i := range events {
		e := &events[i]
		if earliest.IsZero() || e.Timestamp.Before(earliest) {
			earliest = e.Timestamp
		}

		switch e.Category {
		case domain.CategoryDeposit:
			state.TotalDeposits += e.Profit
		case domain.CategoryWithdrawal:
			state.TotalWithdrawals += -e.Profit
		case domain.CategoryTradeClose, domain.CategoryAdjustment:
			state.RealizedTradingPL += e.RealizedPL()
		}
	}

	state.NetDeposits = state.TotalDeposits - state.TotalWithdrawals

	if state.NetDeposits <= 0 {
		capital := currentBalance - state.RealizedTradingPL
		if capital < 0 {
			capital = 0
		}

		at := earliest
		if at.IsZero() {
			at = r.now().Add(-inferredLookback)
		}

		state.Inferred = true
		state.InferredInitialCapital = capital
		state.InferredAt = at
		state.TotalDeposits += capital
		state.NetDeposits += capital
	}

	state.RealPL = currentBalance - state.NetDeposits
	if state.NetDeposits != 0 {
		state.RealPLPercentage = state.RealPL / state.NetDeposits * 100
	}

	return state
}

// SyntheticDeposit materializes the inferred initial capital as a deposit
// event so the equity curve builder can seed its running state. Returns
// false when the state holds no inference.
func SyntheticDeposit(state domain.CapitalLedgerState) (domain.ClassifiedEvent, bool) {
	if !state.Inferred {
		return domain.ClassifiedEvent{}, false
	}
	return domain.ClassifiedEvent{
		DealEvent: domain.DealEvent{
			EventID:   "synthetic-deposit-" + state.AccountID,
			AccountID: state.AccountID,
			Timestamp: state.InferredAt,
			Kind:      domain.KindBalance,
			Entry:     domain.EntryNone,
			Profit:    state.InferredInitialCapital,
		},
		Category:  domain.CategoryDeposit,
		Synthetic: true,
	}, true
}
