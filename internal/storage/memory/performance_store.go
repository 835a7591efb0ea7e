package memory

import (
	"context"
	"sort"
	"sync"

	"equity-lab/internal/domain"
	"equity-lab/internal/storage"
)

// StrategyPerformanceStore is an in-memory implementation of
// storage.StrategyPerformanceStore.
type StrategyPerformanceStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.StrategyPerformance // keyed by account_id
}

// NewStrategyPerformanceStore creates a new in-memory performance store.
func NewStrategyPerformanceStore() *StrategyPerformanceStore {
	return &StrategyPerformanceStore{
		data: make(map[string][]*domain.StrategyPerformance),
	}
}

// ReplaceAccount removes stored rows for an account and writes the given
// set.
func (s *StrategyPerformanceStore) ReplaceAccount(_ context.Context, accountID string, rows []*domain.StrategyPerformance) error {
	if accountID == "" {
		return storage.ErrInvalidInput
	}
	for _, r := range rows {
		if r == nil || r.AccountID != accountID {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]*domain.StrategyPerformance, len(rows))
	for i, r := range rows {
		cp := *r
		copied[i] = &cp
	}
	sort.Slice(copied, func(i, j int) bool {
		return copied[i].StrategyID < copied[j].StrategyID
	})

	s.data[accountID] = copied
	return nil
}

// GetByAccountID retrieves rows for an account, ordered by strategy_id
// ASC.
func (s *StrategyPerformanceStore) GetByAccountID(_ context.Context, accountID string) ([]*domain.StrategyPerformance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.data[accountID]
	result := make([]*domain.StrategyPerformance, len(stored))
	for i, r := range stored {
		cp := *r
		result[i] = &cp
	}
	return result, nil
}

var _ storage.StrategyPerformanceStore = (*StrategyPerformanceStore)(nil)
