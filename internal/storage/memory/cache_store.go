package memory

import (
	"context"
	"sync"
	"time"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/storage"
)

type cacheItem struct {
	entry     []domain.RankedCandidate
	expiresAt time.Time
}

// CacheStore is an in-memory implementation of storage.CacheStore with per-entry expiry.
type CacheStore struct {
	mu   sync.RWMutex
	data map[string]cacheItem
	now  func() time.Time
}

// NewCacheStore creates a new in-memory cache store using the wall clock.
func NewCacheStore() *CacheStore {
	return NewCacheStoreWithClock(time.Now)
}

// NewCacheStoreWithClock creates a cache store that reads time from now.
func NewCacheStoreWithClock(now func() time.Time) *CacheStore {
	return &CacheStore{
		data: make(map[string]cacheItem),
		now:  now,
	}
}

// Get returns the entry for key if present and unexpired.
func (s *CacheStore) Get(_ context.Context, key string) ([]domain.RankedCandidate, bool, error) {
	s.mu.RLock()
	item, exists := s.data[key]
	s.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}
	if !s.now().Before(item.expiresAt) {
		s.mu.Lock()
		// Entry may have been replaced while unlocked
		if current, ok := s.data[key]; ok && current.expiresAt.Equal(item.expiresAt) {
			delete(s.data, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}

	return copyEntry(item.entry), true, nil
}

// Set stores entry under key, replacing any prior entry.
func (s *CacheStore) Set(_ context.Context, key string, entry []domain.RankedCandidate, ttl time.Duration) error {
	if key == "" || ttl <= 0 {
		return storage.ErrInvalidInput
	}

	item := cacheItem{
		entry:     copyEntry(entry),
		expiresAt: s.now().Add(ttl),
	}

	s.mu.Lock()
	s.data[key] = item
	s.mu.Unlock()
	return nil
}

// Delete removes the entry for key.
func (s *CacheStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (s *CacheStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func copyEntry(entry []domain.RankedCandidate) []domain.RankedCandidate {
	out := make([]domain.RankedCandidate, len(entry))
	for i, c := range entry {
		sources := make(domain.TagSet, len(c.Sources))
		copy(sources, c.Sources)
		out[i] = domain.RankedCandidate{AccountID: c.AccountID, Sources: sources}
	}
	return out
}

// Verify interface compliance at compile time.
var _ storage.CacheStore = (*CacheStore)(nil)
