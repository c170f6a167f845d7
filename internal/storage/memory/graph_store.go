package memory

import (
	"context"
	"sort"
	"sync"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/storage"
)

type follow struct {
	target     int64
	followedAt int64
}

// GraphStore is an in-memory implementation of storage.GraphStore.
type GraphStore struct {
	mu      sync.RWMutex
	follows map[int64][]follow // keyed by follower id
}

// NewGraphStore creates a new in-memory follow graph.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		follows: make(map[int64][]follow),
	}
}

// Follow records that accountID follows targetAccountID. Repeated follows are ignored.
func (s *GraphStore) Follow(_ context.Context, accountID, targetAccountID, followedAt int64) error {
	if accountID <= 0 || targetAccountID <= 0 || accountID == targetAccountID {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.follows[accountID] {
		if f.target == targetAccountID {
			return nil
		}
	}
	s.follows[accountID] = append(s.follows[accountID], follow{target: targetAccountID, followedAt: followedAt})
	return nil
}

// Following retrieves ids followed by accountID, most recent first.
func (s *GraphStore) Following(_ context.Context, accountID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.followingLocked(accountID), nil
}

// FriendsOfFriends scores accounts by how many of accountID's follows follow them.
func (s *GraphStore) FriendsOfFriends(_ context.Context, accountID int64, limit int) ([]domain.ScoredAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	following := s.followingLocked(accountID)
	known := toSet(following)

	scores := make(map[int64]int64)
	for _, friend := range following {
		for _, f := range s.follows[friend] {
			if f.target == accountID {
				continue
			}
			if _, ok := known[f.target]; ok {
				continue
			}
			scores[f.target]++
		}
	}

	return rankScores(scores, limit), nil
}

// SimilarToRecentlyFollowed scores accounts co-followed with accountID's most recent follows.
func (s *GraphStore) SimilarToRecentlyFollowed(_ context.Context, accountID int64, recent, limit int) ([]domain.ScoredAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	following := s.followingLocked(accountID)
	known := toSet(following)
	if recent > 0 && len(following) > recent {
		following = following[:recent]
	}
	anchors := toSet(following)

	scores := make(map[int64]int64)
	for follower, fs := range s.follows {
		if follower == accountID || !followsAny(fs, anchors) {
			continue
		}
		for _, f := range fs {
			if f.target == accountID {
				continue
			}
			if _, ok := known[f.target]; ok {
				continue
			}
			scores[f.target]++
		}
	}

	return rankScores(scores, limit), nil
}

func (s *GraphStore) followingLocked(accountID int64) []int64 {
	fs := make([]follow, len(s.follows[accountID]))
	copy(fs, s.follows[accountID])

	// Sort by followed_at DESC, target ASC
	sort.Slice(fs, func(i, j int) bool {
		if fs[i].followedAt != fs[j].followedAt {
			return fs[i].followedAt > fs[j].followedAt
		}
		return fs[i].target < fs[j].target
	})

	result := make([]int64, len(fs))
	for i, f := range fs {
		result[i] = f.target
	}
	return result
}

func followsAny(fs []follow, anchors map[int64]struct{}) bool {
	for _, f := range fs {
		if _, ok := anchors[f.target]; ok {
			return true
		}
	}
	return false
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// rankScores orders scores by score DESC, account id ASC and applies limit.
func rankScores(scores map[int64]int64, limit int) []domain.ScoredAccount {
	result := make([]domain.ScoredAccount, 0, len(scores))
	for id, score := range scores {
		result = append(result, domain.ScoredAccount{AccountID: id, Score: score})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].AccountID < result[j].AccountID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// Verify interface compliance at compile time.
var _ storage.GraphStore = (*GraphStore)(nil)
