package memory

import (
	"context"
	"sort"
	"sync"

	"equity-lab/internal/domain"
	"equity-lab/internal/storage"
)

// EquityPointStore is an in-memory implementation of
// storage.EquityPointStore.
type EquityPointStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.EquityPoint // keyed by account_id
}

// NewEquityPointStore creates a new in-memory equity point store.
func NewEquityPointStore() *EquityPointStore {
	return &EquityPointStore{
		data: make(map[string][]*domain.EquityPoint),
	}
}

// ReplaceAccount removes the stored series for an account and writes the
// given points.
func (s *EquityPointStore) ReplaceAccount(_ context.Context, accountID string, points []*domain.EquityPoint) error {
	if accountID == "" {
		return storage.ErrInvalidInput
	}
	for _, p := range points {
		if p == nil || p.AccountID != accountID {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]*domain.EquityPoint, len(points))
	for i, p := range points {
		cp := *p
		copied[i] = &cp
	}
	sort.Slice(copied, func(i, j int) bool {
		return copied[i].Date.Before(copied[j].Date)
	})

	s.data[accountID] = copied
	return nil
}

// GetByAccountID retrieves the series, ordered by date ASC.
func (s *EquityPointStore) GetByAccountID(_ context.Context, accountID string) ([]*domain.EquityPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.data[accountID]
	result := make([]*domain.EquityPoint, len(stored))
	for i, p := range stored {
		cp := *p
		result[i] = &cp
	}
	return result, nil
}

var _ storage.EquityPointStore = (*EquityPointStore)(nil)
