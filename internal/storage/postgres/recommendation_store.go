package postgres

import (
	"context"
	"fmt"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/storage"
)

// RecommendationStore implements storage.RecommendationStore using PostgreSQL.
type RecommendationStore struct {
	pool *Pool
}

// NewRecommendationStore creates a new RecommendationStore.
func NewRecommendationStore(pool *Pool) *RecommendationStore {
	return &RecommendationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RecommendationStore = (*RecommendationStore)(nil)

// Upsert inserts or replaces the recommendation for r.AccountID.
// Returns ErrNotFound if the account does not exist.
func (s *RecommendationStore) Upsert(ctx context.Context, r *domain.FollowRecommendation) error {
	if r == nil || r.AccountID <= 0 {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO follow_recommendations (account_id, rank, reason)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE SET
			rank = EXCLUDED.rank,
			reason = EXCLUDED.reason
	`

	if _, err := s.pool.Exec(ctx, query, r.AccountID, r.Rank, string(r.Reason)); err != nil {
		if isForeignKeyError(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("upsert follow recommendation: %w", err)
	}
	return nil
}

// Top retrieves up to limit recommendations, ordered by rank DESC, account id ASC.
func (s *RecommendationStore) Top(ctx context.Context, limit int) ([]*domain.FollowRecommendation, error) {
	query := `
		SELECT account_id, rank, reason
		FROM follow_recommendations
		ORDER BY rank DESC, account_id ASC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, nullableLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("get top follow recommendations: %w", err)
	}
	defer rows.Close()

	var result []*domain.FollowRecommendation
	for rows.Next() {
		var r domain.FollowRecommendation
		var reason string
		if err := rows.Scan(&r.AccountID, &r.Rank, &reason); err != nil {
			return nil, fmt.Errorf("scan follow recommendation row: %w", err)
		}
		r.Reason = domain.Tag(reason)
		result = append(result, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate follow recommendation rows: %w", err)
	}

	return result, nil
}
