// Package attribution groups closed trades by their automated strategy
// identifier and scores each group independently of the equity series.
package attribution

import (
	"time"

	"equity-lab/internal/domain"
)

const (
	// profitFactorCap is the sentinel returned when gross profit exists
	// with zero gross loss. Kept a finite named constant so serialized
	// output never carries Infinity. Ratios with a real gross loss are
	// clamped below it, so the sentinel always ranks strictly highest.
	profitFactorCap = 9999.0

	// activeWindow bounds how far back the last trade may lie for a
	// strategy to count as active.
	activeWindow = 7 * 24 * time.Hour
)

// Attributor accumulates per-strategy performance from TradeClose events.
type Attributor struct {
	now func() time.Time // injectable clock for deterministic output
}

// NewAttributor creates an attributor using the wall clock.
func NewAttributor() *Attributor {
	return &Attributor{now: func() time.Time { return time.Now().UTC() }}
}

// WithClock sets a custom clock function for deterministic output.
func (a *Attributor) WithClock(now func() time.Time) *Attributor {
	a.now = now
	return a
}

// Attribute groups TradeClose events by strategy id. Events without a
// strategy id are excluded entirely rather than grouped under a synthetic
// key; every other category is ignored.
func (a *Attributor) Attribute(events []domain.ClassifiedEvent) map[int64]*domain.StrategyPerformance {
	result := make(map[int64]*domain.StrategyPerformance)

	for i := range events {
		e := &events[i]
		if e.Category != domain.CategoryTradeClose || e.StrategyID == nil {
			continue
		}

		perf, ok := result[*e.StrategyID]
		if !ok {
			perf = &domain.StrategyPerformance{
				AccountID:  e.AccountID,
				StrategyID: *e.StrategyID,
				FirstTrade: e.Timestamp,
				LastTrade:  e.Timestamp,
			}
			result[*e.StrategyID] = perf
		}

		pl := e.RealizedPL()
		perf.Trades++
		perf.PnL += pl
		if pl > 0 {
			perf.Wins++
			perf.GrossProfit += pl
		} else {
			perf.Losses++
			perf.GrossLoss += -pl
		}

		if e.Timestamp.Before(perf.FirstTrade) {
			perf.FirstTrade = e.Timestamp
		}
		if e.Timestamp.After(perf.LastTrade) {
			perf.LastTrade = e.Timestamp
		}
	}

	now := a.now()
	for _, perf := range result {
		perf.WinRate = float64(perf.Wins) / float64(perf.Trades) * 100
		perf.ProfitFactor = profitFactor(perf.GrossProfit, perf.GrossLoss)
		perf.Active = now.Sub(perf.LastTrade) <= activeWindow
	}

	return result
}

// profitFactor returns gross profit over gross loss, the capped sentinel
// when only profit exists, and 0 when both sides are zero. A ratio with
// nonzero gross loss clamps just below the sentinel so the sentinel
// stays strictly above every real ratio.
func profitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss == 0 {
		if grossProfit > 0 {
			return profitFactorCap
		}
		return 0
	}
	pf := grossProfit / grossLoss
	if pf >= profitFactorCap {
		pf = profitFactorCap - 1
	}
	return pf
}
