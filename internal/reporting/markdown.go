package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders an account report as Markdown string.
func RenderMarkdown(r *AccountReport) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Account %s Performance Report\n\n", r.AccountID))
	sb.WriteString(fmt.Sprintf("Report ID: %s\n\n", r.ReportID))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Events: %d | Equity points: %d | Rolling window: %d days\n\n",
		r.EventCount, len(r.Equity), r.WindowDays))

	// Capital Ledger
	sb.WriteString("## Capital Ledger\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Deposits | %.2f |\n", r.Ledger.TotalDeposits))
	sb.WriteString(fmt.Sprintf("| Total Withdrawals | %.2f |\n", r.Ledger.TotalWithdrawals))
	sb.WriteString(fmt.Sprintf("| Net Deposits | %.2f |\n", r.Ledger.NetDeposits))
	sb.WriteString(fmt.Sprintf("| Realized Trading P&L | %.2f |\n", r.Ledger.RealizedTradingPL))
	sb.WriteString(fmt.Sprintf("| Real P&L | %.2f |\n", r.Ledger.RealPL))
	sb.WriteString(fmt.Sprintf("| Real P&L %% | %.2f |\n", r.Ledger.RealPLPercentage))
	sb.WriteString("\n")

	if r.Ledger.Inferred {
		sb.WriteString(fmt.Sprintf("**Note:** no deposit history was found; initial capital estimated as %.2f.\n\n",
			r.Ledger.InferredInitialCapital))
	}

	// Risk Metrics
	sb.WriteString("## Risk Metrics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %.2f |\n", r.Metrics.MaxDrawdown))
	sb.WriteString(fmt.Sprintf("| Max Drawdown %% | %.2f |\n", r.Metrics.MaxDrawdownPct))
	sb.WriteString(fmt.Sprintf("| Current Drawdown | %.2f |\n", r.Metrics.CurrentDrawdown))
	sb.WriteString(fmt.Sprintf("| Sharpe | %.4f |\n", r.Metrics.Sharpe))
	sb.WriteString(fmt.Sprintf("| Sortino | %.4f |\n", r.Metrics.Sortino))
	sb.WriteString(fmt.Sprintf("| Calmar | %.4f |\n", r.Metrics.Calmar))
	sb.WriteString(fmt.Sprintf("| Annualized Volatility | %.4f |\n", r.Metrics.VolatilityAnnualized))
	sb.WriteString("\n")

	// Equity Curve (display series)
	sb.WriteString("## Equity Curve\n\n")
	if len(r.Display) > 0 {
		sb.WriteString("| Date | Balance | Equity | Volume |\n")
		sb.WriteString("|------|---------|--------|--------|\n")
		for _, p := range r.Display {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f |\n",
				p.Date.Format("2006-01-02"), p.Balance, p.Equity, p.Volume))
		}
	} else {
		sb.WriteString("No equity points available.\n")
	}
	sb.WriteString("\n")

	// Strategy Performance
	sb.WriteString("## Strategy Performance\n\n")
	if len(r.Strategies) > 0 {
		sb.WriteString("| Strategy | Trades | Wins | Losses | WinRate | PnL | ProfitFactor | Active |\n")
		sb.WriteString("|----------|--------|------|--------|---------|-----|--------------|--------|\n")
		for _, s := range r.Strategies {
			active := "no"
			if s.Active {
				active = "yes"
			}
			sb.WriteString(fmt.Sprintf("| %d | %d | %d | %d | %.2f | %.2f | %.2f | %s |\n",
				s.StrategyID, s.Trades, s.Wins, s.Losses, s.WinRate, s.PnL, s.ProfitFactor, active))
		}
	} else {
		sb.WriteString("No attributed trades.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
