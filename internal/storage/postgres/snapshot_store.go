package postgres

import (
	"context"
	"fmt"

	"equity-lab/internal/domain"
	"equity-lab/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using PostgreSQL.
type SnapshotStore struct {
	pool *Pool
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(pool *Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Put stores or replaces the snapshot for an account.
func (s *SnapshotStore) Put(ctx context.Context, snap *domain.AccountSnapshot) error {
	query := `
		INSERT INTO account_snapshots (account_id, balance, equity, taken_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id) DO UPDATE
		SET balance = EXCLUDED.balance,
		    equity = EXCLUDED.equity,
		    taken_at = EXCLUDED.taken_at
	`

	_, err := s.pool.Exec(ctx, query, snap.AccountID, snap.Balance, snap.Equity, snap.TakenAt)
	if err != nil {
		return fmt.Errorf("put account snapshot: %w", err)
	}
	return nil
}

// GetByAccountID retrieves the snapshot. Returns ErrNotFound if the
// account has none.
func (s *SnapshotStore) GetByAccountID(ctx context.Context, accountID string) (*domain.AccountSnapshot, error) {
	query := `
		SELECT account_id, balance, equity, taken_at
		FROM account_snapshots
		WHERE account_id = $1
	`

	var snap domain.AccountSnapshot
	err := s.pool.QueryRow(ctx, query, accountID).Scan(
		&snap.AccountID,
		&snap.Balance,
		&snap.Equity,
		&snap.TakenAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get account snapshot: %w", err)
	}

	return &snap, nil
}
