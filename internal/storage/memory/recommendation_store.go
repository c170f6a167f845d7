package memory

import (
	"context"
	"sort"
	"sync"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/storage"
)

// RecommendationStore is an in-memory implementation of storage.RecommendationStore.
type RecommendationStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.FollowRecommendation // keyed by account_id
}

// NewRecommendationStore creates a new in-memory recommendation store.
func NewRecommendationStore() *RecommendationStore {
	return &RecommendationStore{
		data: make(map[int64]*domain.FollowRecommendation),
	}
}

// Upsert inserts or replaces the recommendation for r.AccountID.
func (s *RecommendationStore) Upsert(_ context.Context, r *domain.FollowRecommendation) error {
	if r == nil || r.AccountID <= 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recCopy := *r
	s.data[r.AccountID] = &recCopy
	return nil
}

// Top retrieves up to limit recommendations, ordered by rank DESC, account id ASC.
func (s *RecommendationStore) Top(_ context.Context, limit int) ([]*domain.FollowRecommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.FollowRecommendation, 0, len(s.data))
	for _, r := range s.data {
		recCopy := *r
		result = append(result, &recCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Rank != result[j].Rank {
			return result[i].Rank > result[j].Rank
		}
		return result[i].AccountID < result[j].AccountID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.RecommendationStore = (*RecommendationStore)(nil)
