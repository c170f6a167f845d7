package sources

import (
	"context"
	"fmt"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/storage"
)

// GlobalSource suggests the instance-wide top ranked accounts. Each candidate is
// tagged with the reason stored alongside its rank.
type GlobalSource struct {
	recommendations storage.RecommendationStore
	filter          *filter
	limit           int
}

// Name returns the source name.
func (s *GlobalSource) Name() string { return "global" }

// Get returns global recommendations in rank order.
func (s *GlobalSource) Get(ctx context.Context, account *domain.Account) ([]domain.Candidate, error) {
	reasons := make(map[int64]domain.Tag)
	ids, err := s.filter.collect(ctx, account, s.limit, func(ctx context.Context, n int) ([]int64, error) {
		recs, err := s.recommendations.Top(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("top recommendations: %w", err)
		}
		ids := make([]int64, len(recs))
		for i, r := range recs {
			ids[i] = r.AccountID
			reason := r.Reason
			if reason == "" {
				reason = domain.TagMostFollowed
			}
			reasons[r.AccountID] = reason
		}
		return ids, nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Candidate, len(ids))
	for i, id := range ids {
		out[i] = domain.Candidate{AccountID: id, Tags: domain.TagsOf(reasons[id])}
	}
	return out, nil
}
