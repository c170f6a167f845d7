package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/storage"
)

// GraphStore implements storage.GraphStore using PostgreSQL.
type GraphStore struct {
	pool *Pool
}

// NewGraphStore creates a new GraphStore.
func NewGraphStore(pool *Pool) *GraphStore {
	return &GraphStore{pool: pool}
}

// Compile-time interface check.
var _ storage.GraphStore = (*GraphStore)(nil)

// Follow records that accountID follows targetAccountID. Repeated follows are ignored.
// Returns ErrNotFound if either account does not exist.
func (s *GraphStore) Follow(ctx context.Context, accountID, targetAccountID, followedAt int64) error {
	if accountID <= 0 || targetAccountID <= 0 || accountID == targetAccountID {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO follows (account_id, target_account_id, followed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, target_account_id) DO NOTHING
	`

	if _, err := s.pool.Exec(ctx, query, accountID, targetAccountID, followedAt); err != nil {
		if isForeignKeyError(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("insert follow: %w", err)
	}
	return nil
}

// Following retrieves ids followed by accountID, most recent first.
func (s *GraphStore) Following(ctx context.Context, accountID int64) ([]int64, error) {
	query := `
		SELECT target_account_id
		FROM follows
		WHERE account_id = $1
		ORDER BY followed_at DESC, target_account_id ASC
	`

	rows, err := s.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("get following: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// FriendsOfFriends scores accounts by how many of accountID's follows follow them.
func (s *GraphStore) FriendsOfFriends(ctx context.Context, accountID int64, limit int) ([]domain.ScoredAccount, error) {
	query := `
		SELECT f2.target_account_id, COUNT(*) AS score
		FROM follows f1
		JOIN follows f2 ON f2.account_id = f1.target_account_id
		WHERE f1.account_id = $1
		  AND f2.target_account_id <> $1
		  AND NOT EXISTS (
			SELECT 1 FROM follows known
			WHERE known.account_id = $1 AND known.target_account_id = f2.target_account_id
		  )
		GROUP BY f2.target_account_id
		ORDER BY score DESC, f2.target_account_id ASC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, accountID, nullableLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("get friends of friends: %w", err)
	}
	defer rows.Close()

	return scanScored(rows)
}

// SimilarToRecentlyFollowed scores accounts co-followed with accountID's most recent follows.
func (s *GraphStore) SimilarToRecentlyFollowed(ctx context.Context, accountID int64, recent, limit int) ([]domain.ScoredAccount, error) {
	query := `
		WITH recent AS (
			SELECT target_account_id
			FROM follows
			WHERE account_id = $1
			ORDER BY followed_at DESC, target_account_id ASC
			LIMIT $2
		)
		SELECT f2.target_account_id, COUNT(DISTINCT f1.account_id) AS score
		FROM follows f1
		JOIN follows f2 ON f2.account_id = f1.account_id
		WHERE f1.target_account_id IN (SELECT target_account_id FROM recent)
		  AND f1.account_id <> $1
		  AND f2.target_account_id <> $1
		  AND NOT EXISTS (
			SELECT 1 FROM follows known
			WHERE known.account_id = $1 AND known.target_account_id = f2.target_account_id
		  )
		GROUP BY f2.target_account_id
		ORDER BY score DESC, f2.target_account_id ASC
		LIMIT $3
	`

	rows, err := s.pool.Query(ctx, query, accountID, nullableLimit(recent), nullableLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("get similar to recently followed: %w", err)
	}
	defer rows.Close()

	return scanScored(rows)
}

// scanIDs scans single-column id rows.
func scanIDs(rows pgx.Rows) ([]int64, error) {
	var ids []int64

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id row: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate id rows: %w", err)
	}

	return ids, nil
}

// scanScored scans (account_id, score) rows.
func scanScored(rows pgx.Rows) ([]domain.ScoredAccount, error) {
	var result []domain.ScoredAccount

	for rows.Next() {
		var sa domain.ScoredAccount
		if err := rows.Scan(&sa.AccountID, &sa.Score); err != nil {
			return nil, fmt.Errorf("scan scored row: %w", err)
		}
		result = append(result, sa)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scored rows: %w", err)
	}

	return result, nil
}
