package sources

import (
	"context"
	"fmt"

	"account-suggestions/internal/domain"
)

// FriendsOfFriendsSource suggests accounts followed by the accounts one follows,
// most shared first.
type FriendsOfFriendsSource struct {
	filter *filter
	limit  int
}

// Name returns the source name.
func (s *FriendsOfFriendsSource) Name() string { return "friends_of_friends" }

// Get returns friends of friends ranked by mutual follow count.
func (s *FriendsOfFriendsSource) Get(ctx context.Context, account *domain.Account) ([]domain.Candidate, error) {
	ids, err := s.filter.collect(ctx, account, s.limit, func(ctx context.Context, n int) ([]int64, error) {
		scored, err := s.filter.graph.FriendsOfFriends(ctx, account.ID, n)
		if err != nil {
			return nil, fmt.Errorf("friends of friends: %w", err)
		}
		return scoredIDs(scored), nil
	})
	if err != nil {
		return nil, err
	}
	return candidates(ids, domain.TagFriendsOfFriends), nil
}
