package storage

import (
	"context"
	"time"

	"account-suggestions/internal/domain"
)

// AccountStore provides access to accounts storage.
type AccountStore interface {
	// Insert adds a new account. Returns ErrDuplicateKey if id or (username, domain) exists.
	Insert(ctx context.Context, a *domain.Account) error

	// GetByID retrieves an account by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id int64) (*domain.Account, error)

	// FindByUsernames retrieves live local accounts by username, in argument order.
	// Unknown usernames are skipped.
	FindByUsernames(ctx context.Context, usernames []string) ([]*domain.Account, error)

	// BulkResolve retrieves live accounts for ids in one lookup.
	// Ids that are missing or suspended are absent from the result.
	BulkResolve(ctx context.Context, ids []int64) (map[int64]*domain.Account, error)
}

// ExclusionStore provides access to follow_recommendation_mutes storage.
type ExclusionStore interface {
	// Insert records an exclusion. Returns ErrDuplicateKey if the pair exists.
	Insert(ctx context.Context, e *domain.Exclusion) error

	// Exists reports whether targetAccountID is excluded for accountID.
	Exists(ctx context.Context, accountID, targetAccountID int64) (bool, error)

	// GetTargets retrieves all excluded target ids for accountID, ordered by id ASC.
	GetTargets(ctx context.Context, accountID int64) ([]int64, error)
}

// GraphStore provides access to the follow graph.
type GraphStore interface {
	// Follow records that accountID follows targetAccountID at followedAt (ms).
	// Following an account twice is a no-op.
	Follow(ctx context.Context, accountID, targetAccountID, followedAt int64) error

	// Following retrieves ids followed by accountID, most recent first.
	Following(ctx context.Context, accountID int64) ([]int64, error)

	// FriendsOfFriends retrieves accounts followed by accounts that accountID follows,
	// scored by how many of them follow it. Excludes accountID and accounts it already follows.
	// Ordered by score DESC, account id ASC.
	FriendsOfFriends(ctx context.Context, accountID int64, limit int) ([]domain.ScoredAccount, error)

	// SimilarToRecentlyFollowed retrieves accounts co-followed with the `recent` most
	// recent follows of accountID, scored by co-follow count. Excludes accountID and
	// accounts it already follows. Ordered by score DESC, account id ASC.
	SimilarToRecentlyFollowed(ctx context.Context, accountID int64, recent, limit int) ([]domain.ScoredAccount, error)
}

// RecommendationStore provides access to follow_recommendations storage.
type RecommendationStore interface {
	// Upsert inserts or replaces the global recommendation for an account.
	Upsert(ctx context.Context, r *domain.FollowRecommendation) error

	// Top retrieves up to limit recommendations, ordered by rank DESC, account id ASC.
	Top(ctx context.Context, limit int) ([]*domain.FollowRecommendation, error)
}

// CacheStore holds cached suggestion lists keyed by cache key.
// Set replaces the whole entry; readers never observe a partial entry.
type CacheStore interface {
	// Get returns the live entry for key. ok is false on miss or expiry.
	Get(ctx context.Context, key string) (entry []domain.RankedCandidate, ok bool, err error)

	// Set stores entry under key, replacing any prior entry, expiring after ttl.
	Set(ctx context.Context, key string, entry []domain.RankedCandidate, ttl time.Duration) error

	// Delete removes the entry for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
