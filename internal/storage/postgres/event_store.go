package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"equity-lab/internal/domain"
	"equity-lab/internal/storage"
)

// EventStore implements storage.EventStore using PostgreSQL.
type EventStore struct {
	pool *Pool
}

// NewEventStore creates a new EventStore.
func NewEventStore(pool *Pool) *EventStore {
	return &EventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

const insertEventQuery = `
	INSERT INTO deal_events (
		event_id, account_id, timestamp, kind, entry,
		symbol, volume, price, profit, commission, swap, strategy_id
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
func (s *EventStore) Insert(ctx context.Context, e *domain.DealEvent) error {
	_, err := s.pool.Exec(ctx, insertEventQuery,
		e.EventID,
		e.AccountID,
		e.Timestamp,
		string(e.Kind),
		string(e.Entry),
		e.Symbol,
		e.Volume,
		e.Price,
		e.Profit,
		e.Commission,
		e.Swap,
		e.StrategyID,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert deal event: %w", err)
	}
	return nil
}

// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
func (s *EventStore) InsertBulk(ctx context.Context, events []*domain.DealEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range events {
		_, err := tx.Exec(ctx, insertEventQuery,
			e.EventID,
			e.AccountID,
			e.Timestamp,
			string(e.Kind),
			string(e.Entry),
			e.Symbol,
			e.Volume,
			e.Price,
			e.Profit,
			e.Commission,
			e.Swap,
			e.StrategyID,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert deal event in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByAccountID retrieves all events for an account, ordered by
// timestamp ASC, event_id ASC.
func (s *EventStore) GetByAccountID(ctx context.Context, accountID string) ([]*domain.DealEvent, error) {
	query := `
		SELECT event_id, account_id, timestamp, kind, entry,
		       symbol, volume, price, profit, commission, swap, strategy_id
		FROM deal_events
		WHERE account_id = $1
		ORDER BY timestamp ASC, event_id ASC
	`

	rows, err := s.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("get deal events by account: %w", err)
	}
	defer rows.Close()

	return scanDealEvents(rows)
}

// GetByTimeRange retrieves events for an account within [start, end] (inclusive).
func (s *EventStore) GetByTimeRange(ctx context.Context, accountID string, start, end time.Time) ([]*domain.DealEvent, error) {
	query := `
		SELECT event_id, account_id, timestamp, kind, entry,
		       symbol, volume, price, profit, commission, swap, strategy_id
		FROM deal_events
		WHERE account_id = $1 AND timestamp >= $2 AND timestamp <= $3
		ORDER BY timestamp ASC, event_id ASC
	`

	rows, err := s.pool.Query(ctx, query, accountID, start, end)
	if err != nil {
		return nil, fmt.Errorf("get deal events by time range: %w", err)
	}
	defer rows.Close()

	return scanDealEvents(rows)
}

// ReplaceAccount atomically removes all events of an account and inserts
// the given set.
func (s *EventStore) ReplaceAccount(ctx context.Context, accountID string, events []*domain.DealEvent) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM deal_events WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("delete deal events: %w", err)
	}

	for _, e := range events {
		_, err := tx.Exec(ctx, insertEventQuery,
			e.EventID,
			e.AccountID,
			e.Timestamp,
			string(e.Kind),
			string(e.Entry),
			e.Symbol,
			e.Volume,
			e.Price,
			e.Profit,
			e.Commission,
			e.Swap,
			e.StrategyID,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert deal event in replace: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// ListAccounts returns all account ids present in the log, sorted.
func (s *EventStore) ListAccounts(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT account_id
		FROM deal_events
		ORDER BY account_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan account id: %w", err)
		}
		accounts = append(accounts, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account rows: %w", err)
	}

	return accounts, nil
}

// scanDealEvents scans multiple rows into a slice of DealEvent.
func scanDealEvents(rows pgx.Rows) ([]*domain.DealEvent, error) {
	var events []*domain.DealEvent

	for rows.Next() {
		var (
			e     domain.DealEvent
			kind  string
			entry string
		)

		err := rows.Scan(
			&e.EventID,
			&e.AccountID,
			&e.Timestamp,
			&kind,
			&entry,
			&e.Symbol,
			&e.Volume,
			&e.Price,
			&e.Profit,
			&e.Commission,
			&e.Swap,
			&e.StrategyID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan deal event row: %w", err)
		}

		e.Kind = domain.EventKind(kind)
		e.Entry = domain.EntryFlag(entry)
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deal event rows: %w", err)
	}

	return events, nil
}
