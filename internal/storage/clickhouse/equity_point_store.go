package clickhouse

import (
	"context"
	"fmt"
	"time"

	"equity-lab/internal/domain"
	"equity-lab/internal/storage"
)

// EquityPointStore implements storage.EquityPointStore using ClickHouse.
// Series are bulk-replaced per account: a lightweight delete clears the
// previous series before the batch insert.
type EquityPointStore struct {
	conn *Conn
}

// NewEquityPointStore creates a new EquityPointStore.
func NewEquityPointStore(conn *Conn) *EquityPointStore {
	return &EquityPointStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EquityPointStore = (*EquityPointStore)(nil)

// ReplaceAccount removes the stored series for an account and writes the
// given points.
func (s *EquityPointStore) ReplaceAccount(ctx context.Context, accountID string, points []*domain.EquityPoint) error {
	if accountID == "" {
		return storage.ErrInvalidInput
	}
	for _, p := range points {
		if p == nil || p.AccountID != accountID {
			return storage.ErrInvalidInput
		}
	}

	if err := s.conn.Exec(ctx, `DELETE FROM equity_points WHERE account_id = ?`, accountID); err != nil {
		return fmt.Errorf("delete equity points: %w", err)
	}

	if len(points) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO equity_points (
			account_id, date, balance, equity, volume
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.AccountID, p.Date, p.Balance, p.Equity, p.Volume,
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

// GetByAccountID retrieves the series, ordered by date ASC.
func (s *EquityPointStore) GetByAccountID(ctx context.Context, accountID string) ([]*domain.EquityPoint, error) {
	query := `
		SELECT account_id, date, balance, equity, volume
		FROM equity_points
		WHERE account_id = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("query equity points: %w", err)
	}
	defer rows.Close()

	return scanEquityPoints(rows)
}

// scanEquityPoints scans multiple rows into a slice of EquityPoint.
func scanEquityPoints(rows chRows) ([]*domain.EquityPoint, error) {
	var points []*domain.EquityPoint

	for rows.Next() {
		var p domain.EquityPoint
		var date time.Time

		err := rows.Scan(
			&p.AccountID, &date, &p.Balance, &p.Equity, &p.Volume,
		)
		if err != nil {
			return nil, fmt.Errorf("scan equity point row: %w", err)
		}

		p.Date = date.UTC()
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate equity point rows: %w", err)
	}

	return points, nil
}
