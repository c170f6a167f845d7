package suggestions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-suggestions/internal/domain"
)

var alice = &domain.Account{ID: 100, Username: "alice"}

func TestRegenerate_OneCandidatePerSource(t *testing.T) {
	agg := NewAggregator(AggregatorOptions{Sources: []Source{
		&staticSource{name: "fof", candidates: tagged(domain.TagFriendsOfFriends, 1)},
		&staticSource{name: "similar", candidates: tagged(domain.TagSimilarToRecentlyFollowed, 2)},
		&staticSource{name: "global", candidates: tagged(domain.TagMostFollowed, 3)},
		&staticSource{name: "empty"},
	}})

	got, err := agg.Regenerate(context.Background(), alice)
	require.NoError(t, err)

	assert.Equal(t, []domain.RankedCandidate{
		{AccountID: 1, Sources: domain.TagSet{domain.TagFriendsOfFriends}},
		{AccountID: 2, Sources: domain.TagSet{domain.TagSimilarToRecentlyFollowed}},
		{AccountID: 3, Sources: domain.TagSet{domain.TagMostFollowed}},
	}, got)
}

func TestRegenerate_UnionsTagsAndKeepsFirstSeenPosition(t *testing.T) {
	agg := NewAggregator(AggregatorOptions{Sources: []Source{
		&staticSource{name: "a", candidates: tagged("a", 1, 2)},
		&staticSource{name: "b", candidates: tagged("b", 3, 1)},
		&staticSource{name: "c", candidates: tagged("c", 2, 1)},
	}})

	got, err := agg.Regenerate(context.Background(), alice)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, idsOf(got))
	assert.Equal(t, domain.NewTagSet("a", "b", "c"), got[0].Sources)
	assert.Equal(t, domain.NewTagSet("a", "c"), got[1].Sources)
	assert.Equal(t, domain.NewTagSet("b"), got[2].Sources)
}

func TestRegenerate_CapsAtBatchSize(t *testing.T) {
	ids := make([]int64, 50)
	for i := range ids {
		ids[i] = int64(1000 + i)
	}
	agg := NewAggregator(AggregatorOptions{Sources: []Source{
		&staticSource{name: "setting"},
		&staticSource{name: "global", candidates: tagged(domain.TagMostFollowed, ids...)},
	}})

	got, err := agg.Regenerate(context.Background(), alice)
	require.NoError(t, err)

	require.Len(t, got, DefaultBatchSize)
	assert.Equal(t, ids[:DefaultBatchSize], idsOf(got))
	assert.Equal(t, DefaultBatchSize, agg.BatchSize())
}

func TestRegenerate_CustomBatchSize(t *testing.T) {
	agg := NewAggregator(AggregatorOptions{
		BatchSize: 2,
		Sources:   []Source{&staticSource{name: "g", candidates: tagged("g", 5, 6, 7)}},
	})

	got, err := agg.Regenerate(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6}, idsOf(got))
}

func TestRegenerate_FailuresContributeNothing(t *testing.T) {
	panicking := SourceFunc{SourceName: "panics", Fn: func(context.Context, *domain.Account) ([]domain.Candidate, error) {
		panic("index out of range")
	}}
	malformed := &staticSource{name: "malformed", candidates: []domain.Candidate{
		{AccountID: 7, Tags: domain.ParseRawTags(nil)},
		{AccountID: 8, Tags: domain.ParseRawTags("global")},
		{AccountID: 9, Tags: domain.ParseRawTags([]string{})},
		{AccountID: 10, Tags: domain.ParseRawTags([]any{"similar", 3})},
		{AccountID: 2, Tags: domain.ParseRawTags([]string{"extra"})},
	}}

	agg := NewAggregator(AggregatorOptions{Sources: []Source{
		&staticSource{name: "broken", err: errors.New("index unavailable")},
		panicking,
		malformed,
		&staticSource{name: "valid", candidates: tagged(domain.TagMostFollowed, 1, 2)},
	}})

	got, err := agg.Regenerate(context.Background(), alice)
	require.NoError(t, err)

	// 7-10 only ever had unusable tags; 2 keeps its early position.
	assert.Equal(t, []int64{2, 1}, idsOf(got))
	assert.Equal(t, domain.NewTagSet("extra", domain.TagMostFollowed), got[0].Sources)
}

func TestRegenerate_SlowSourceTimesOut(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	// Ignores ctx on purpose.
	stuck := SourceFunc{SourceName: "stuck", Fn: func(context.Context, *domain.Account) ([]domain.Candidate, error) {
		<-release
		return tagged("late", 99), nil
	}}

	agg := NewAggregator(AggregatorOptions{
		SourceTimeout: 20 * time.Millisecond,
		Sources: []Source{
			stuck,
			&staticSource{name: "valid", candidates: tagged("ok", 1)},
		},
	})

	start := time.Now()
	got, err := agg.Regenerate(context.Background(), alice)
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, idsOf(got))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRegenerate_OpenBreakerSkipsSource(t *testing.T) {
	broken := &staticSource{name: "broken", err: errors.New("down")}
	valid := &staticSource{name: "valid", candidates: tagged("ok", 1)}

	agg := NewAggregator(AggregatorOptions{
		Sources: []Source{broken, valid},
		Breaker: &BreakerSettings{FailureThreshold: 2, OpenTimeout: time.Hour},
	})

	for i := 0; i < 5; i++ {
		got, err := agg.Regenerate(context.Background(), alice)
		require.NoError(t, err)
		assert.Equal(t, []int64{1}, idsOf(got))
	}

	assert.Equal(t, int32(2), broken.calls.Load(), "breaker should stop calling after threshold")
	assert.Equal(t, int32(5), valid.calls.Load())
}

func TestRegenerate_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg := NewAggregator(AggregatorOptions{Sources: []Source{
		&staticSource{name: "valid", candidates: tagged("ok", 1)},
	}})

	_, err := agg.Regenerate(ctx, alice)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegenerate_NoSources(t *testing.T) {
	got, err := NewAggregator(AggregatorOptions{}).Regenerate(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMerge_SkipsNonPositiveIDs(t *testing.T) {
	got := Merge(
		[]domain.Candidate{{AccountID: 0, Tags: domain.TagsOf("a")}, {AccountID: -3, Tags: domain.TagsOf("a")}},
		tagged("b", 4),
	)
	assert.Equal(t, []int64{4}, idsOf(got))
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "timeout", failureReason(ErrSourceTimeout))
	assert.Equal(t, "panic", failureReason(ErrSourcePanic))
	assert.Equal(t, "canceled", failureReason(context.Canceled))
	assert.Equal(t, "error", failureReason(errors.New("x")))
}
