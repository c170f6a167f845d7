package sources

import (
	"account-suggestions/internal/storage"
	"account-suggestions/internal/suggestions"
)

// Deps holds the stores the sources read from.
type Deps struct {
	Accounts        storage.AccountStore
	Graph           storage.GraphStore
	Exclusions      storage.ExclusionStore
	Recommendations storage.RecommendationStore
}

// Config tunes the sources.
type Config struct {
	// FeaturedUsernames are local usernames the operator wants suggested first.
	FeaturedUsernames []string
	// Limit caps each source's output; <= 0 uses DefaultLimit.
	Limit int
	// RecentFollows seeds SimilarProfilesSource; <= 0 uses DefaultRecentFollows.
	RecentFollows int
}

// Default returns the sources in their fixed order: setting, friends of friends,
// similar profiles, global.
func Default(deps Deps, cfg Config) []suggestions.Source {
	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	recent := cfg.RecentFollows
	if recent <= 0 {
		recent = DefaultRecentFollows
	}

	f := &filter{
		accounts:   deps.Accounts,
		graph:      deps.Graph,
		exclusions: deps.Exclusions,
	}

	return []suggestions.Source{
		&SettingSource{usernames: cfg.FeaturedUsernames, filter: f, limit: limit},
		&FriendsOfFriendsSource{filter: f, limit: limit},
		&SimilarProfilesSource{filter: f, recent: recent, limit: limit},
		&GlobalSource{recommendations: deps.Recommendations, filter: f, limit: limit},
	}
}
