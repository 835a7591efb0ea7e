package reporting

import (
	"time"

	"equity-lab/internal/domain"
)

// AccountReport is the full performance picture for one account,
// recomputed from the event log on every run.
type AccountReport struct {
	// Metadata
	ReportID    string
	AccountID   string
	GeneratedAt time.Time
	EventCount  int
	WindowDays  int

	// Live snapshot the reconstruction was anchored to.
	Snapshot domain.AccountSnapshot

	// Capital ledger: deposits and withdrawals separated from trading.
	Ledger domain.CapitalLedgerState

	// Equity is the full reconstructed daily series; Display is the
	// downsampled series for charting.
	Equity  []domain.EquityPoint
	Display []domain.EquityPoint

	// Risk metrics over the full series.
	Metrics domain.MetricsSnapshot

	// Rolling windowed metrics over daily P&L.
	Rolling domain.RollingSeries

	// Strategies sorted by strategy id.
	Strategies []*domain.StrategyPerformance
}
