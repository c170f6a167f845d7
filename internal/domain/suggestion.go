package domain

// Candidate is a single (account id, tags) tuple returned by a candidate source.
type Candidate struct {
	AccountID int64
	Tags      RawTags
}

// RankedCandidate is one element of a cached suggestion list:
// a deduplicated account id with every tag that proposed it.
type RankedCandidate struct {
	AccountID int64  `json:"account_id"`
	Sources   TagSet `json:"sources"`
}

// Suggestion is a resolved account together with the sources that proposed it.
type Suggestion struct {
	Account *Account
	Sources TagSet
}

// Exclusion records that TargetAccountID must not be suggested to AccountID again.
// Corresponds to follow_recommendation_mutes table in PostgreSQL.
type Exclusion struct {
	AccountID       int64
	TargetAccountID int64
	CreatedAt       int64 // Unix timestamp in milliseconds
}

// FollowRecommendation is a globally ranked account for the global source.
// Corresponds to follow_recommendations table in PostgreSQL.
type FollowRecommendation struct {
	AccountID int64
	Rank      float64
	Reason    Tag // TagMostFollowed or TagMostInteractions
}

// ScoredAccount is an account id with a source-specific score.
type ScoredAccount struct {
	AccountID int64
	Score     int64
}
