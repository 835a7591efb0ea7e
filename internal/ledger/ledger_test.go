package ledger

import (
	"math"
	"testing"
	"time"

	"equity-lab/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func deposit(id string, d int, amount float64) domain.ClassifiedEvent {
	return domain.ClassifiedEvent{
		DealEvent: domain.DealEvent{EventID: id, AccountID: "acc", Timestamp: day(d), Kind: domain.KindBalance, Profit: amount},
		Category:  domain.CategoryDeposit,
	}
}

func withdrawal(id string, d int, amount float64) domain.ClassifiedEvent {
	return domain.ClassifiedEvent{
		DealEvent: domain.DealEvent{EventID: id, AccountID: "acc", Timestamp: day(d), Kind: domain.KindBalance, Profit: -amount},
		Category:  domain.CategoryWithdrawal,
	}
}

func tradeClose(id string, d int, profit float64) domain.ClassifiedEvent {
	return domain.ClassifiedEvent{
		DealEvent: domain.DealEvent{EventID: id, AccountID: "acc", Timestamp: day(d), Kind: domain.KindBuy, Entry: domain.EntryClose, Profit: profit},
		Category:  domain.CategoryTradeClose,
	}
}

func TestReconcile_BasicScenario(t *testing.T) {
	// Deposit(+10000, day 1), TradeClose(+500, day 5), TradeClose(-200, day 10)
	events := []domain.ClassifiedEvent{
		deposit("e1", 1, 10000),
		tradeClose("e2", 5, 500),
		tradeClose("e3", 10, -200),
	}

	state := NewReconciler().Reconcile("acc", events, 10300)

	if state.NetDeposits != 10000 {
		t.Errorf("NetDeposits: got %f, want 10000", state.NetDeposits)
	}
	if state.RealizedTradingPL != 300 {
		t.Errorf("RealizedTradingPL: got %f, want 300", state.RealizedTradingPL)
	}
	if state.RealPL != 300 {
		t.Errorf("RealPL: got %f, want 300", state.RealPL)
	}
	if math.Abs(state.RealPLPercentage-3.0) > 1e-9 {
		t.Errorf("RealPLPercentage: got %f, want 3.0", state.RealPLPercentage)
	}
	if state.Inferred {
		t.Error("Inferred should be false with observed deposits")
	}
}

func TestReconcile_NetDepositsRoundTrip(t *testing.T) {
	events := []domain.ClassifiedEvent{
		deposit("e1", 1, 5000),
		deposit("e2", 3, 2500),
		withdrawal("e3", 7, 1000),
		withdrawal("e4", 9, 499.5),
	}

	state := NewReconciler().Reconcile("acc", events, 6000.5)

	if state.TotalDeposits != 7500 {
		t.Errorf("TotalDeposits: got %f, want 7500", state.TotalDeposits)
	}
	if state.TotalWithdrawals != 1499.5 {
		t.Errorf("TotalWithdrawals: got %f, want 1499.5", state.TotalWithdrawals)
	}
	if state.NetDeposits != state.TotalDeposits-state.TotalWithdrawals {
		t.Errorf("NetDeposits invariant broken: %f != %f - %f",
			state.NetDeposits, state.TotalDeposits, state.TotalWithdrawals)
	}
}

func TestReconcile_AdjustmentsCountTowardRealizedPL(t *testing.T) {
	events := []domain.ClassifiedEvent{
		deposit("e1", 1, 1000),
		{
			DealEvent: domain.DealEvent{EventID: "e2", AccountID: "acc", Timestamp: day(2), Kind: domain.KindDividend, Profit: 15},
			Category:  domain.CategoryAdjustment,
		},
		tradeClose("e3", 3, 85),
	}

	state := NewReconciler().Reconcile("acc", events, 1100)

	if state.RealizedTradingPL != 100 {
		t.Errorf("RealizedTradingPL should include adjustments: got %f, want 100", state.RealizedTradingPL)
	}
	// Adjustments must not land in deposit tallies.
	if state.TotalDeposits != 1000 {
		t.Errorf("TotalDeposits: got %f, want 1000", state.TotalDeposits)
	}
}

func TestReconcile_InfersInitialCapital(t *testing.T) {
	// No deposit history, only trade closes.
	events := []domain.ClassifiedEvent{
		tradeClose("e1", 5, 500),
		tradeClose("e2", 10, -200),
	}

	state := NewReconciler().Reconcile("acc", events, 10300)

	if !state.Inferred {
		t.Fatal("expected Inferred=true without deposit history")
	}
	// 10300 - 300 = 10000
	if state.InferredInitialCapital != 10000 {
		t.Errorf("InferredInitialCapital: got %f, want 10000", state.InferredInitialCapital)
	}
	if !state.InferredAt.Equal(day(5)) {
		t.Errorf("InferredAt should be earliest event time: got %v, want %v", state.InferredAt, day(5))
	}
	if state.NetDeposits != 10000 {
		t.Errorf("synthetic deposit should fold into NetDeposits: got %f, want 10000", state.NetDeposits)
	}
	if state.RealPL != 300 {
		t.Errorf("RealPL after inference: got %f, want 300", state.RealPL)
	}
}

func TestReconcile_InferredCapitalNeverNegative(t *testing.T) {
	events := []domain.ClassifiedEvent{
		tradeClose("e1", 1, 600),
	}

	// Balance below realized P&L: 100 - 600 = -500, floored at 0.
	state := NewReconciler().Reconcile("acc", events, 100)

	if !state.Inferred {
		t.Fatal("expected Inferred=true")
	}
	if state.InferredInitialCapital != 0 {
		t.Errorf("InferredInitialCapital should floor at 0: got %f", state.InferredInitialCapital)
	}
}

func TestReconcile_EmptyEvents(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	r := NewReconciler().WithClock(func() time.Time { return now })

	state := r.Reconcile("acc", nil, 1000)

	if !state.Inferred {
		t.Fatal("expected Inferred=true for an empty event set")
	}
	if state.InferredInitialCapital != 1000 {
		t.Errorf("InferredInitialCapital: got %f, want 1000", state.InferredInitialCapital)
	}
	want := now.Add(-30 * 24 * time.Hour)
	if !state.InferredAt.Equal(want) {
		t.Errorf("InferredAt should be 30 days before now: got %v, want %v", state.InferredAt, want)
	}
	// RealPL percentage must not divide by zero anywhere on this path.
	if state.RealPL != 0 {
		t.Errorf("RealPL: got %f, want 0", state.RealPL)
	}
}

func TestReconcile_ZeroNetDepositsNoDivideByZero(t *testing.T) {
	state := NewReconciler().Reconcile("acc", nil, 0)

	if state.RealPLPercentage != 0 {
		t.Errorf("RealPLPercentage must be 0 when NetDeposits is 0: got %f", state.RealPLPercentage)
	}
	if math.IsNaN(state.RealPLPercentage) || math.IsInf(state.RealPLPercentage, 0) {
		t.Error("RealPLPercentage must never be NaN/Inf")
	}
}

func TestSyntheticDeposit(t *testing.T) {
	events := []domain.ClassifiedEvent{tradeClose("e1", 5, 500)}
	state := NewReconciler().Reconcile("acc", events, 10500)

	dep, ok := SyntheticDeposit(state)
	if !ok {
		t.Fatal("expected a synthetic deposit for inferred state")
	}
	if dep.Category != domain.CategoryDeposit {
		t.Errorf("synthetic event category: got %s, want %s", dep.Category, domain.CategoryDeposit)
	}
	if !dep.Synthetic {
		t.Error("synthetic deposit must carry Synthetic=true")
	}
	if dep.Profit != 10000 {
		t.Errorf("synthetic deposit amount: got %f, want 10000", dep.Profit)
	}

	observed := NewReconciler().Reconcile("acc", []domain.ClassifiedEvent{deposit("e1", 1, 100)}, 100)
	if _, ok := SyntheticDeposit(observed); ok {
		t.Error("observed deposit history must not produce a synthetic deposit")
	}
}
