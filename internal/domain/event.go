package domain

import "time"

// EventKind identifies the ledger record type as reported by the trading
// platform. Balance movements and trade fills share the same deal stream.
type EventKind string

const (
	KindBuy        EventKind = "BUY"
	KindSell       EventKind = "SELL"
	KindBalance    EventKind = "BALANCE"
	KindCredit     EventKind = "CREDIT"
	KindCharge     EventKind = "CHARGE"
	KindCorrection EventKind = "CORRECTION"
	KindBonus      EventKind = "BONUS"
	KindCommission EventKind = "COMMISSION"
	KindInterest   EventKind = "INTEREST"
	KindDividend   EventKind = "DIVIDEND"
	KindTax        EventKind = "TAX"
)

// EntryFlag marks whether a trade event opens or closes a position.
// Non-trade kinds carry EntryNone.
type EntryFlag string

const (
	EntryOpen  EntryFlag = "OPEN"
	EntryClose EntryFlag = "CLOSE"
	EntryNone  EntryFlag = "NONE"
)

// DealEvent is one immutable ledger or trade record for an account.
// Events are never mutated after classification; re-ingesting the same
// EventID must not double-count (storage enforces uniqueness).
type DealEvent struct {
	EventID   string    // unique, stable sort key on timestamp ties
	AccountID string    // owning account
	Timestamp time.Time // UTC
	Kind      EventKind
	Entry     EntryFlag

	// Trade fields, zero for non-trade kinds.
	Symbol string
	Volume float64
	Price  float64

	// Signed monetary amounts.
	Profit     float64
	Commission float64
	Swap       float64

	// StrategyID identifies the automated strategy that generated the
	// event. Nil means manual or unattributed.
	StrategyID *int64
}

// RealizedPL returns the realized P&L component of the event.
func (e *DealEvent) RealizedPL() float64 {
	return e.Profit + e.Commission + e.Swap
}

// Category is the classification assigned to a DealEvent.
type Category string

const (
	CategoryDeposit    Category = "DEPOSIT"
	CategoryWithdrawal Category = "WITHDRAWAL"
	CategoryTradeOpen  Category = "TRADE_OPEN"
	CategoryTradeClose Category = "TRADE_CLOSE"
	CategoryAdjustment Category = "ADJUSTMENT"
)

// ClassifiedEvent is a DealEvent plus its category tag.
type ClassifiedEvent struct {
	DealEvent
	Category Category

	// Synthetic marks events fabricated by capital inference rather than
	// observed in the ledger.
	Synthetic bool
}
