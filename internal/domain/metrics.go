package domain

// MetricsSnapshot holds risk-adjusted performance metrics derived from an
// equity series. Snapshots are recomputed on demand and never persisted as
// a source of truth.
type MetricsSnapshot struct {
	AccountID string

	MaxDrawdown     float64 // absolute decline from peak
	MaxDrawdownPct  float64 // percentage recorded at the same index
	CurrentDrawdown float64 // decline of the last point from its peak

	Sharpe  float64
	Sortino float64
	Calmar  float64

	VolatilityAnnualized float64
}

// RollingSeries holds windowed metrics aligned to the input date axis.
// Entry i corresponds to input index i+Window-1; series are empty when the
// input is shorter than the window.
type RollingSeries struct {
	Window      int
	Sharpe      []float64
	Volatility  []float64
	MaxDrawdown []float64
}
