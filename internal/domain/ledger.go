package domain

import "time"

// CapitalLedgerState separates capital movements from trading activity
// for one account. All derived fields are recomputable from the event set.
type CapitalLedgerState struct {
	AccountID string

	TotalDeposits    float64 // sum of Deposit amounts
	TotalWithdrawals float64 // sum of Withdrawal amounts, absolute
	NetDeposits      float64 // TotalDeposits - TotalWithdrawals

	// RealizedTradingPL sums realized P&L of TradeClose and Adjustment
	// events.
	RealizedTradingPL float64

	// RealPL is currentBalance - NetDeposits; RealPLPercentage is zero
	// when NetDeposits is zero.
	RealPL           float64
	RealPLPercentage float64

	// Inferred is set when no usable deposit history existed and the
	// initial capital had to be estimated from the balance snapshot.
	// Callers should treat inferred capital as best-effort, not observed.
	Inferred               bool
	InferredInitialCapital float64
	InferredAt             time.Time // timestamp of the synthetic deposit
}
