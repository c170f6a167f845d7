package postgres

import (
	"context"
	"fmt"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/storage"
)

// ExclusionStore implements storage.ExclusionStore using PostgreSQL.
type ExclusionStore struct {
	pool *Pool
}

// NewExclusionStore creates a new ExclusionStore.
func NewExclusionStore(pool *Pool) *ExclusionStore {
	return &ExclusionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ExclusionStore = (*ExclusionStore)(nil)

// Insert records an exclusion. Returns ErrDuplicateKey if the pair exists.
func (s *ExclusionStore) Insert(ctx context.Context, e *domain.Exclusion) error {
	if e == nil || e.AccountID <= 0 || e.TargetAccountID <= 0 {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO follow_recommendation_mutes (account_id, target_account_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, target_account_id) DO NOTHING
	`

	tag, err := s.pool.Exec(ctx, query, e.AccountID, e.TargetAccountID, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert exclusion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrDuplicateKey
	}
	return nil
}

// Exists reports whether targetAccountID is excluded for accountID.
func (s *ExclusionStore) Exists(ctx context.Context, accountID, targetAccountID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM follow_recommendation_mutes
			WHERE account_id = $1 AND target_account_id = $2
		)
	`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, accountID, targetAccountID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check exclusion: %w", err)
	}
	return exists, nil
}

// GetTargets retrieves all excluded target ids for accountID, ordered by id ASC.
func (s *ExclusionStore) GetTargets(ctx context.Context, accountID int64) ([]int64, error) {
	query := `
		SELECT target_account_id
		FROM follow_recommendation_mutes
		WHERE account_id = $1
		ORDER BY target_account_id ASC
	`

	rows, err := s.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("get exclusion targets: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}
