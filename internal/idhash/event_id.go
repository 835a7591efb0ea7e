package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"equity-lab/internal/domain"
)

// ComputeEventID computes a deterministic event_id using SHA256.
// Formula: SHA256(account_id|timestamp_ms|kind|symbol|volume|profit)
// Returns hex-encoded hash (64 characters).
//
// Feeds that do not carry a native deal identifier get one assigned from
// this, so replaying the same feed never duplicates the event log.
func ComputeEventID(
	accountID string,
	timestampMs int64,
	kind domain.EventKind,
	symbol string,
	volume float64,
	profit float64,
) string {
	data := fmt.Sprintf("%s|%d|%s|%s|%.8f|%.8f",
		accountID,
		timestampMs,
		string(kind),
		symbol,
		volume,
		profit,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
