package domain

import "time"

// EquityPoint is one entry of the reconstructed equity/balance series.
// Date is truncated to the UTC calendar day; same-day trade closes are
// coalesced into a single point.
type EquityPoint struct {
	AccountID string
	Date      time.Time // UTC midnight of the calendar day
	Balance   float64
	Equity    float64
	Volume    float64 // accumulated traded volume for the day
}

// AccountSnapshot is the live balance/equity pair supplied by the caller.
// Equity includes unrealized P&L of currently open positions.
type AccountSnapshot struct {
	AccountID string
	Balance   float64
	Equity    float64
	TakenAt   time.Time
}
