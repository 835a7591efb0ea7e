// Package ingestion consumes the broker's deal feed and persists events.
package ingestion

import "context"

// FeedMessage is one message from the deal feed. Exactly one payload
// field is set, matching Type.
type FeedMessage struct {
	Type     string           `json:"type"` // "deal" or "snapshot"
	Deal     *DealPayload     `json:"deal,omitempty"`
	Snapshot *SnapshotPayload `json:"snapshot,omitempty"`
}

// DealPayload is the wire form of a single deal event.
type DealPayload struct {
	EventID     string  `json:"event_id"` // may be empty, derived then
	AccountID   string  `json:"account_id"`
	TimestampMs int64   `json:"timestamp_ms"`
	Kind        string  `json:"kind"`
	Entry       string  `json:"entry"`
	Symbol      string  `json:"symbol"`
	Volume      float64 `json:"volume"`
	Price       float64 `json:"price"`
	Profit      float64 `json:"profit"`
	Commission  float64 `json:"commission"`
	Swap        float64 `json:"swap"`
	StrategyID  *int64  `json:"strategy_id,omitempty"`
}

// SnapshotPayload is the wire form of a live balance/equity snapshot.
type SnapshotPayload struct {
	AccountID   string  `json:"account_id"`
	Balance     float64 `json:"balance"`
	Equity      float64 `json:"equity"`
	TimestampMs int64   `json:"timestamp_ms"`
}

// FeedSource delivers deal feed messages. Implemented by FeedClient; the
// runner only depends on this so tests can drive it with a fake.
type FeedSource interface {
	Subscribe(ctx context.Context, accounts []string) (<-chan FeedMessage, error)
}
