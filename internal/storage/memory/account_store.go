package memory

import (
	"context"
	"sync"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/storage"
)

// AccountStore is an in-memory implementation of storage.AccountStore.
type AccountStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.Account // keyed by id
}

// NewAccountStore creates a new in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		data: make(map[int64]*domain.Account),
	}
}

// Insert adds a new account. Returns ErrDuplicateKey if id or (username, domain) exists.
func (s *AccountStore) Insert(_ context.Context, a *domain.Account) error {
	if a == nil || a.ID <= 0 || a.Username == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.ID]; exists {
		return storage.ErrDuplicateKey
	}
	for _, existing := range s.data {
		if existing.Username == a.Username && existing.Domain == a.Domain {
			return storage.ErrDuplicateKey
		}
	}

	// Store a copy to prevent external mutation
	accountCopy := *a
	s.data[a.ID] = &accountCopy
	return nil
}

// GetByID retrieves an account by its ID. Returns ErrNotFound if not exists.
func (s *AccountStore) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	accountCopy := *a
	return &accountCopy, nil
}

// FindByUsernames retrieves live local accounts by username, in argument order.
func (s *AccountStore) FindByUsernames(_ context.Context, usernames []string) ([]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Account
	for _, username := range usernames {
		for _, a := range s.data {
			if a.Domain == "" && a.Username == username && a.IsLive() {
				accountCopy := *a
				result = append(result, &accountCopy)
				break
			}
		}
	}
	return result, nil
}

// BulkResolve retrieves live accounts for ids in one lookup.
func (s *AccountStore) BulkResolve(_ context.Context, ids []int64) (map[int64]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[int64]*domain.Account, len(ids))
	for _, id := range ids {
		a, exists := s.data[id]
		if !exists || !a.IsLive() {
			continue
		}
		accountCopy := *a
		result[id] = &accountCopy
	}
	return result, nil
}

// Suspend marks an account as suspended. Returns ErrNotFound if not exists.
func (s *AccountStore) Suspend(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}
	a.Suspended = true
	return nil
}

// Verify interface compliance at compile time.
var _ storage.AccountStore = (*AccountStore)(nil)
