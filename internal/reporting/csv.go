package reporting

import (
	"fmt"
	"strings"

	"equity-lab/internal/domain"
)

// RenderEquityCSV renders the equity series as CSV string.
func RenderEquityCSV(points []domain.EquityPoint) string {
	var sb strings.Builder

	sb.WriteString("date,balance,equity,volume\n")

	for _, p := range points {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f\n",
			p.Date.Format("2006-01-02"),
			p.Balance,
			p.Equity,
			p.Volume,
		))
	}

	return sb.String()
}

// RenderStrategyCSV renders strategy performance rows as CSV string.
func RenderStrategyCSV(rows []*domain.StrategyPerformance) string {
	var sb strings.Builder

	sb.WriteString("strategy_id,trades,wins,losses,win_rate,gross_profit,gross_loss,pnl,profit_factor,first_trade,last_trade,active\n")

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%d,%d,%d,%d,%.6f,%.6f,%.6f,%.6f,%.6f,%s,%s,%t\n",
			r.StrategyID,
			r.Trades,
			r.Wins,
			r.Losses,
			r.WinRate,
			r.GrossProfit,
			r.GrossLoss,
			r.PnL,
			r.ProfitFactor,
			r.FirstTrade.Format("2006-01-02T15:04:05Z"),
			r.LastTrade.Format("2006-01-02T15:04:05Z"),
			r.Active,
		))
	}

	return sb.String()
}
