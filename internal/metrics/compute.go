// Package metrics derives risk-adjusted performance statistics from an
// equity point series. It is the single consolidation point for drawdown
// and ratio math: every call site delegates here instead of reimplementing
// the formulas.
package metrics

import (
	"math"

	"equity-lab/internal/domain"
)

const (
	// tradingDaysPerYear is the standard annualization base.
	tradingDaysPerYear = 252

	// sortinoNoDownsideFactor scales Sharpe into a Sortino stand-in when
	// a series has zero negative returns. This is a documented
	// approximation carried over from the observable behavior of the
	// original reports, not a statistical identity.
	sortinoNoDownsideFactor = 1.5

	// minYearsTraded floors the annualization horizon so short histories
	// do not blow up the Calmar ratio.
	minYearsTraded = 0.01
)

// Compute derives a full metrics snapshot from an ordered equity series.
// Every ratio degrades to 0 on a zero denominator; the result never
// carries NaN or Inf.
func Compute(points []domain.EquityPoint) domain.MetricsSnapshot {
	snap := domain.MetricsSnapshot{}
	if len(points) == 0 {
		return snap
	}
	snap.AccountID = points[0].AccountID

	equities := make([]float64, len(points))
	for i := range points {
		equities[i] = points[i].Equity
	}

	maxDD, maxDDPct, currentDD := drawdowns(equities)
	snap.MaxDrawdown = maxDD
	snap.MaxDrawdownPct = maxDDPct
	snap.CurrentDrawdown = currentDD

	returns := dailyReturns(equities)
	mean := meanOf(returns)
	stddev := sampleStddev(returns, mean)

	snap.VolatilityAnnualized = stddev * math.Sqrt(tradingDaysPerYear)

	if stddev > 0 {
		snap.Sharpe = mean / stddev * math.Sqrt(tradingDaysPerYear)
	}

	snap.Sortino = sortino(returns, mean, snap.Sharpe)
	snap.Calmar = calmar(equities, maxDDPct)

	return snap
}

// drawdowns walks the series once, tracking the running peak. The max
// drawdown percentage is recorded at the index of the max absolute
// drawdown, not maximized independently.
func drawdowns(equities []float64) (maxDD, maxDDPct, currentDD float64) {
	peak := 0.0
	for _, eq := range equities {
		if eq > peak {
			peak = eq
		}
		dd := peak - eq
		if dd > maxDD {
			maxDD = dd
			if peak > 0 {
				maxDDPct = dd / peak * 100
			}
		}
		currentDD = dd
	}
	return maxDD, maxDDPct, currentDD
}

// dailyReturns computes simple returns between adjacent points. A zero
// or negative prior equity yields a zero return rather than a division
// blow-up.
func dailyReturns(equities []float64) []float64 {
	if len(equities) < 2 {
		return nil
	}
	returns := make([]float64, len(equities)-1)
	for i := 1; i < len(equities); i++ {
		if equities[i-1] > 0 {
			returns[i-1] = (equities[i] - equities[i-1]) / equities[i-1]
		}
	}
	return returns
}

// sortino mirrors Sharpe with downside deviation as the denominator.
// The downside deviation uses the population formula over only the
// negative returns. With zero negative returns the documented fallback
// applies instead of a true statistical value.
func sortino(returns []float64, mean, sharpe float64) float64 {
	var sumSq float64
	negatives := 0
	for _, r := range returns {
		if r < 0 {
			sumSq += r * r
			negatives++
		}
	}
	if negatives == 0 {
		return sharpe * sortinoNoDownsideFactor
	}
	downside := math.Sqrt(sumSq / float64(negatives))
	if downside == 0 {
		return 0
	}
	return mean / downside * math.Sqrt(tradingDaysPerYear)
}

// calmar relates annualized return to max drawdown percentage, both in
// percent so the ratio stays dimensionless.
func calmar(equities []float64, maxDDPct float64) float64 {
	if maxDDPct == 0 || len(equities) < 2 {
		return 0
	}
	initial := equities[0]
	if initial <= 0 {
		return 0
	}
	netProfit := equities[len(equities)-1] - initial
	yearsTraded := float64(len(equities)) / tradingDaysPerYear
	if yearsTraded < minYearsTraded {
		yearsTraded = minYearsTraded
	}
	annualizedReturnPct := netProfit / initial * 100 / yearsTraded
	return annualizedReturnPct / maxDDPct
}

// meanOf returns the arithmetic mean, 0 for an empty slice.
func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStddev uses the Bessel-corrected n-1 denominator, 0 when fewer
// than two samples exist.
func sampleStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}
