package clickhouse

import (
	"context"
	"fmt"
	"time"

	"equity-lab/internal/domain"
	"equity-lab/internal/storage"
)

// StrategyPerformanceStore implements storage.StrategyPerformanceStore
// using ClickHouse.
type StrategyPerformanceStore struct {
	conn *Conn
}

// NewStrategyPerformanceStore creates a new StrategyPerformanceStore.
func NewStrategyPerformanceStore(conn *Conn) *StrategyPerformanceStore {
	return &StrategyPerformanceStore{conn: conn}
}

// Compile-time interface check.
var _ storage.StrategyPerformanceStore = (*StrategyPerformanceStore)(nil)

// ReplaceAccount removes stored rows for an account and writes the given
// set.
func (s *StrategyPerformanceStore) ReplaceAccount(ctx context.Context, accountID string, rows []*domain.StrategyPerformance) error {
	if accountID == "" {
		return storage.ErrInvalidInput
	}
	for _, r := range rows {
		if r == nil || r.AccountID != accountID {
			return storage.ErrInvalidInput
		}
	}

	if err := s.conn.Exec(ctx, `DELETE FROM strategy_performance WHERE account_id = ?`, accountID); err != nil {
		return fmt.Errorf("delete strategy performance: %w", err)
	}

	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO strategy_performance (
			account_id, strategy_id, trades, wins, losses,
			gross_profit, gross_loss, pnl, win_rate, profit_factor,
			first_trade, last_trade, active
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			r.AccountID, r.StrategyID,
			uint32(r.Trades), uint32(r.Wins), uint32(r.Losses),
			r.GrossProfit, r.GrossLoss, r.PnL, r.WinRate, r.ProfitFactor,
			r.FirstTrade, r.LastTrade, r.Active,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByAccountID retrieves rows for an account, ordered by strategy_id ASC.
func (s *StrategyPerformanceStore) GetByAccountID(ctx context.Context, accountID string) ([]*domain.StrategyPerformance, error) {
	query := `
		SELECT account_id, strategy_id, trades, wins, losses,
		       gross_profit, gross_loss, pnl, win_rate, profit_factor,
		       first_trade, last_trade, active
		FROM strategy_performance
		WHERE account_id = ?
		ORDER BY strategy_id ASC
	`

	rows, err := s.conn.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("query strategy performance: %w", err)
	}
	defer rows.Close()

	return scanStrategyPerformance(rows)
}

// scanStrategyPerformance scans multiple rows into a slice.
func scanStrategyPerformance(rows chRows) ([]*domain.StrategyPerformance, error) {
	var result []*domain.StrategyPerformance

	for rows.Next() {
		var (
			r                    domain.StrategyPerformance
			trades, wins, losses uint32
			first, last          time.Time
		)

		err := rows.Scan(
			&r.AccountID, &r.StrategyID, &trades, &wins, &losses,
			&r.GrossProfit, &r.GrossLoss, &r.PnL, &r.WinRate, &r.ProfitFactor,
			&first, &last, &r.Active,
		)
		if err != nil {
			return nil, fmt.Errorf("scan strategy performance row: %w", err)
		}

		r.Trades = int(trades)
		r.Wins = int(wins)
		r.Losses = int(losses)
		r.FirstTrade = first.UTC()
		r.LastTrade = last.UTC()
		result = append(result, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strategy performance rows: %w", err)
	}

	return result, nil
}
