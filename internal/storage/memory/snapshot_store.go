package memory

import (
	"context"
	"sync"

	"equity-lab/internal/domain"
	"equity-lab/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.AccountSnapshot // keyed by account_id
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		data: make(map[string]*domain.AccountSnapshot),
	}
}

// Put stores or replaces the snapshot for an account.
func (s *SnapshotStore) Put(_ context.Context, snap *domain.AccountSnapshot) error {
	if snap == nil || snap.AccountID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *snap
	s.data[snap.AccountID] = &cp
	return nil
}

// GetByAccountID retrieves the snapshot. Returns ErrNotFound if the
// account has none.
func (s *SnapshotStore) GetByAccountID(_ context.Context, accountID string) (*domain.AccountSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, exists := s.data[accountID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	cp := *snap
	return &cp, nil
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)
