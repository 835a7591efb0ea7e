package storage

import (
	"context"
	"time"

	"equity-lab/internal/domain"
)

// EventStore provides access to the append-only deal event log.
type EventStore interface {
	// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
	Insert(ctx context.Context, e *domain.DealEvent) error

	// InsertBulk adds multiple events atomically. Fails entire batch on
	// any duplicate.
	InsertBulk(ctx context.Context, events []*domain.DealEvent) error

	// GetByAccountID retrieves all events for an account, ordered by
	// timestamp ASC, event_id ASC.
	GetByAccountID(ctx context.Context, accountID string) ([]*domain.DealEvent, error)

	// GetByTimeRange retrieves events for an account within [start, end]
	// (inclusive), same ordering as GetByAccountID.
	GetByTimeRange(ctx context.Context, accountID string, start, end time.Time) ([]*domain.DealEvent, error)

	// ReplaceAccount atomically removes all events of an account and
	// inserts the given set. Used for full re-imports; derived data is
	// recomputed from the new event set afterwards.
	ReplaceAccount(ctx context.Context, accountID string, events []*domain.DealEvent) error

	// ListAccounts returns all account ids present in the log, sorted.
	ListAccounts(ctx context.Context) ([]string, error)
}

// SnapshotStore holds the latest live balance/equity pair per account.
type SnapshotStore interface {
	// Put stores or replaces the snapshot for an account.
	Put(ctx context.Context, s *domain.AccountSnapshot) error

	// GetByAccountID retrieves the snapshot. Returns ErrNotFound if the
	// account has none.
	GetByAccountID(ctx context.Context, accountID string) (*domain.AccountSnapshot, error)
}

// EquityPointStore persists reconstructed equity series for display
// callers. Series are bulk-replaced per account, never patched.
type EquityPointStore interface {
	// ReplaceAccount removes the stored series for an account and writes
	// the given points.
	ReplaceAccount(ctx context.Context, accountID string, points []*domain.EquityPoint) error

	// GetByAccountID retrieves the series, ordered by date ASC.
	GetByAccountID(ctx context.Context, accountID string) ([]*domain.EquityPoint, error)
}

// StrategyPerformanceStore persists per-strategy attribution results.
type StrategyPerformanceStore interface {
	// ReplaceAccount removes stored rows for an account and writes the
	// given set.
	ReplaceAccount(ctx context.Context, accountID string, rows []*domain.StrategyPerformance) error

	// GetByAccountID retrieves rows for an account, ordered by
	// strategy_id ASC.
	GetByAccountID(ctx context.Context, accountID string) ([]*domain.StrategyPerformance, error)
}
