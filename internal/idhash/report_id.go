package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// ComputeReportID computes a deterministic report_id using SHA256.
// Formula: SHA256(account_id|generated_at_ms|window_days)
// Returns a base58-encoded hash, short enough for file names and URLs.
func ComputeReportID(accountID string, generatedAtMs int64, windowDays int) string {
	data := fmt.Sprintf("%s|%d|%d", accountID, generatedAtMs, windowDays)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}
