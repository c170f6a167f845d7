package memory

import (
	"context"
	"sort"
	"sync"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/storage"
)

type exclusionKey struct {
	accountID       int64
	targetAccountID int64
}

// ExclusionStore is an in-memory implementation of storage.ExclusionStore.
type ExclusionStore struct {
	mu   sync.RWMutex
	data map[exclusionKey]*domain.Exclusion
}

// NewExclusionStore creates a new in-memory exclusion store.
func NewExclusionStore() *ExclusionStore {
	return &ExclusionStore{
		data: make(map[exclusionKey]*domain.Exclusion),
	}
}

// Insert records an exclusion. Returns ErrDuplicateKey if the pair exists.
func (s *ExclusionStore) Insert(_ context.Context, e *domain.Exclusion) error {
	if e == nil || e.AccountID <= 0 || e.TargetAccountID <= 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := exclusionKey{e.AccountID, e.TargetAccountID}
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	exclusionCopy := *e
	s.data[key] = &exclusionCopy
	return nil
}

// Exists reports whether targetAccountID is excluded for accountID.
func (s *ExclusionStore) Exists(_ context.Context, accountID, targetAccountID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.data[exclusionKey{accountID, targetAccountID}]
	return exists, nil
}

// GetTargets retrieves all excluded target ids for accountID, ordered by id ASC.
func (s *ExclusionStore) GetTargets(_ context.Context, accountID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []int64
	for key := range s.data {
		if key.accountID == accountID {
			result = append(result, key.targetAccountID)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result, nil
}

// Count returns the number of stored exclusions.
func (s *ExclusionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Verify interface compliance at compile time.
var _ storage.ExclusionStore = (*ExclusionStore)(nil)
