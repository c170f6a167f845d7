package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/storage"
)

func TestRecommendationStore_UpsertAndTop(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedAccounts(t, NewAccountStore(pool), 1, 2, 3)
	store := NewRecommendationStore(pool)

	require.NoError(t, store.Upsert(ctx, &domain.FollowRecommendation{AccountID: 1, Rank: 0.5, Reason: domain.TagMostFollowed}))
	require.NoError(t, store.Upsert(ctx, &domain.FollowRecommendation{AccountID: 2, Rank: 0.9, Reason: domain.TagMostInteractions}))
	require.NoError(t, store.Upsert(ctx, &domain.FollowRecommendation{AccountID: 3, Rank: 0.5, Reason: domain.TagMostFollowed}))
	require.NoError(t, store.Upsert(ctx, &domain.FollowRecommendation{AccountID: 1, Rank: 0.1, Reason: domain.TagMostInteractions}))

	got, err := store.Top(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, int64(2), got[0].AccountID)
	assert.Equal(t, domain.TagMostInteractions, got[0].Reason)
	assert.Equal(t, int64(3), got[1].AccountID)
	assert.Equal(t, int64(1), got[2].AccountID)
	assert.Equal(t, domain.TagMostInteractions, got[2].Reason)

	top, err := store.Top(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)

	err = store.Upsert(ctx, &domain.FollowRecommendation{AccountID: 99, Rank: 1, Reason: domain.TagMostFollowed})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
