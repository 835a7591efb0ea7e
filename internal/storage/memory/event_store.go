package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"equity-lab/internal/domain"
	"equity-lab/internal/storage"
)

// EventStore is an in-memory implementation of storage.EventStore.
type EventStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DealEvent // keyed by event_id
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		data: make(map[string]*domain.DealEvent),
	}
}

// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
func (s *EventStore) Insert(_ context.Context, e *domain.DealEvent) error {
	if e == nil || e.EventID == "" || e.AccountID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.EventID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *e
	s.data[e.EventID] = &cp
	return nil
}

// InsertBulk adds multiple events atomically. Fails entire batch on any
// duplicate.
func (s *EventStore) InsertBulk(_ context.Context, events []*domain.DealEvent) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates.
	batchKeys := make(map[string]struct{}, len(events))
	for _, e := range events {
		if e == nil || e.EventID == "" || e.AccountID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[e.EventID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[e.EventID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[e.EventID] = struct{}{}
	}

	for _, e := range events {
		cp := *e
		s.data[e.EventID] = &cp
	}
	return nil
}

// GetByAccountID retrieves all events for an account, ordered by
// timestamp ASC, event_id ASC.
func (s *EventStore) GetByAccountID(_ context.Context, accountID string) ([]*domain.DealEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DealEvent
	for _, e := range s.data {
		if e.AccountID == accountID {
			cp := *e
			result = append(result, &cp)
		}
	}

	sortEvents(result)
	return result, nil
}

// GetByTimeRange retrieves events for an account within [start, end].
func (s *EventStore) GetByTimeRange(_ context.Context, accountID string, start, end time.Time) ([]*domain.DealEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DealEvent
	for _, e := range s.data {
		if e.AccountID != accountID {
			continue
		}
		if e.Timestamp.Before(start) || e.Timestamp.After(end) {
			continue
		}
		cp := *e
		result = append(result, &cp)
	}

	sortEvents(result)
	return result, nil
}

// ReplaceAccount atomically swaps all events of an account for the given
// set.
func (s *EventStore) ReplaceAccount(_ context.Context, accountID string, events []*domain.DealEvent) error {
	if accountID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(events))
	for _, e := range events {
		if e == nil || e.EventID == "" || e.AccountID != accountID {
			return storage.ErrInvalidInput
		}
		if _, exists := batchKeys[e.EventID]; exists {
			return storage.ErrDuplicateKey
		}
		// An id held by another account collides on the global key, the
		// same way the primary key rejects it in the SQL store.
		if existing, exists := s.data[e.EventID]; exists && existing.AccountID != accountID {
			return storage.ErrDuplicateKey
		}
		batchKeys[e.EventID] = struct{}{}
	}

	for id, e := range s.data {
		if e.AccountID == accountID {
			delete(s.data, id)
		}
	}
	for _, e := range events {
		cp := *e
		s.data[e.EventID] = &cp
	}
	return nil
}

// ListAccounts returns all account ids present in the log, sorted.
func (s *EventStore) ListAccounts(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, e := range s.data {
		seen[e.AccountID] = struct{}{}
	}

	accounts := make([]string, 0, len(seen))
	for id := range seen {
		accounts = append(accounts, id)
	}
	sort.Strings(accounts)
	return accounts, nil
}

func sortEvents(events []*domain.DealEvent) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.Before(events[j].Timestamp)
		}
		return events[i].EventID < events[j].EventID
	})
}

var _ storage.EventStore = (*EventStore)(nil)
