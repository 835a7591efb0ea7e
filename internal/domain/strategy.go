package domain

import "time"

// StrategyPerformance accumulates per-strategy statistics strictly from
// TradeClose events. Events without a strategy identifier are excluded
// from attribution entirely.
type StrategyPerformance struct {
	AccountID  string
	StrategyID int64

	Trades int
	Wins   int
	Losses int

	GrossProfit float64 // sum of positive realized P&L
	GrossLoss   float64 // sum of negative realized P&L, absolute
	PnL         float64

	WinRate      float64 // wins / trades * 100
	ProfitFactor float64 // GrossProfit / GrossLoss, capped sentinel on zero loss

	FirstTrade time.Time
	LastTrade  time.Time

	// Active is set when the last trade falls within the activity window
	// of the evaluation time.
	Active bool
}
