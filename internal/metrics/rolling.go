package metrics

import (
	"errors"
	"math"

	"equity-lab/internal/domain"
)

// ErrInsufficientData describes a rolling window larger than the
// available series. Rolling signals the condition with an empty result
// rather than returning an error; the sentinel exists so callers that
// want to surface the condition have a stable value to report.
var ErrInsufficientData = errors.New("insufficient data for requested window")

// Rolling recomputes the metrics core over a sliding window of daily P&L
// values. Each window is computed independently from scratch; this is the
// documented behavior and keeps windows comparable across the axis, so no
// incremental shortcut is taken. Entry i of the output corresponds to
// input index i+window-1.
//
// A series shorter than the window yields empty output, not an error.
func Rolling(dailyPnL []float64, window int) domain.RollingSeries {
	series := domain.RollingSeries{Window: window}
	if window <= 0 || len(dailyPnL) < window {
		return series
	}

	n := len(dailyPnL) - window + 1
	series.Sharpe = make([]float64, n)
	series.Volatility = make([]float64, n)
	series.MaxDrawdown = make([]float64, n)

	for i := 0; i < n; i++ {
		slice := dailyPnL[i : i+window]

		mean := meanOf(slice)
		stddev := sampleStddev(slice, mean)

		series.Volatility[i] = stddev * math.Sqrt(tradingDaysPerYear)
		if stddev > 0 {
			series.Sharpe[i] = mean / stddev * math.Sqrt(tradingDaysPerYear)
		}
		series.MaxDrawdown[i] = cumulativeMaxDrawdown(slice)
	}

	return series
}

// cumulativeMaxDrawdown peak-tracks the running sum of a P&L slice,
// returning the worst peak-to-trough decline within it.
func cumulativeMaxDrawdown(pnl []float64) float64 {
	cumulative := 0.0
	peak := 0.0
	maxDD := 0.0
	for _, v := range pnl {
		cumulative += v
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// DailyPnL converts an equity series into day-over-day P&L differences,
// the input shape the rolling engine expects.
func DailyPnL(points []domain.EquityPoint) []float64 {
	if len(points) < 2 {
		return nil
	}
	pnl := make([]float64, len(points)-1)
	for i := 1; i < len(points); i++ {
		pnl[i-1] = points[i].Equity - points[i-1].Equity
	}
	return pnl
}
