package sources

import (
	"context"
	"fmt"

	"account-suggestions/internal/domain"
)

// DefaultRecentFollows is how many recent follows seed the similarity search.
const DefaultRecentFollows = 5

// SimilarProfilesSource suggests accounts commonly followed together with the
// account's most recent follows.
type SimilarProfilesSource struct {
	filter *filter
	recent int
	limit  int
}

// Name returns the source name.
func (s *SimilarProfilesSource) Name() string { return "similar_profiles" }

// Get returns co-followed accounts ranked by co-follow count.
func (s *SimilarProfilesSource) Get(ctx context.Context, account *domain.Account) ([]domain.Candidate, error) {
	ids, err := s.filter.collect(ctx, account, s.limit, func(ctx context.Context, n int) ([]int64, error) {
		scored, err := s.filter.graph.SimilarToRecentlyFollowed(ctx, account.ID, s.recent, n)
		if err != nil {
			return nil, fmt.Errorf("similar to recently followed: %w", err)
		}
		return scoredIDs(scored), nil
	})
	if err != nil {
		return nil, err
	}
	return candidates(ids, domain.TagSimilarToRecentlyFollowed), nil
}
