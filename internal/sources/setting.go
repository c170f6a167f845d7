package sources

import (
	"context"
	"fmt"

	"account-suggestions/internal/domain"
)

// SettingSource suggests operator-featured accounts in configuration order.
type SettingSource struct {
	usernames []string
	filter    *filter
	limit     int
}

// Name returns the source name.
func (s *SettingSource) Name() string { return "setting" }

// Get resolves the featured usernames and returns the ones the account may follow.
func (s *SettingSource) Get(ctx context.Context, account *domain.Account) ([]domain.Candidate, error) {
	if len(s.usernames) == 0 {
		return nil, nil
	}

	found, err := s.filter.accounts.FindByUsernames(ctx, s.usernames)
	if err != nil {
		return nil, fmt.Errorf("find featured accounts: %w", err)
	}

	ids := make([]int64, len(found))
	for i, a := range found {
		ids[i] = a.ID
	}

	ids, err = s.filter.apply(ctx, account, ids, s.limit)
	if err != nil {
		return nil, err
	}
	return candidates(ids, domain.TagFeatured), nil
}
