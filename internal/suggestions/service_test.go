package suggestions

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/observability"
	"account-suggestions/internal/storage"
	"account-suggestions/internal/storage/memory"
)

type serviceFixture struct {
	svc        *Service
	accounts   *memory.AccountStore
	exclusions *memory.ExclusionStore
	cache      *memory.CacheStore
}

func newServiceFixture(t *testing.T, sources []Source, accountIDs ...int64) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		accounts:   seededAccounts(t, accountIDs...),
		exclusions: memory.NewExclusionStore(),
		cache:      memory.NewCacheStore(),
	}
	f.svc = New(Options{
		Sources:    sources,
		Accounts:   f.accounts,
		Exclusions: f.exclusions,
		CacheStore: f.cache,
	})
	return f
}

func TestService_EmptySourcesGiveEmptyResult(t *testing.T) {
	f := newServiceFixture(t, []Source{&staticSource{name: "a"}, &staticSource{name: "b"}})

	got := f.svc.Get(context.Background(), alice, 10, 0)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestService_ThreeSourcesPlusEmpty(t *testing.T) {
	f := newServiceFixture(t, []Source{
		&staticSource{name: "fof", candidates: tagged(domain.TagFriendsOfFriends, 1)},
		&staticSource{name: "similar", candidates: tagged(domain.TagSimilarToRecentlyFollowed, 2)},
		&staticSource{name: "global", candidates: tagged(domain.TagMostFollowed, 3)},
		&staticSource{name: "setting"},
	}, 1, 2, 3)

	got := f.svc.Get(context.Background(), alice, 3, 0)

	require.Equal(t, []int64{1, 2, 3}, suggestionIDs(got))
	assert.Equal(t, domain.TagSet{domain.TagFriendsOfFriends}, got[0].Sources)
	assert.Equal(t, domain.TagSet{domain.TagSimilarToRecentlyFollowed}, got[1].Sources)
	assert.Equal(t, domain.TagSet{domain.TagMostFollowed}, got[2].Sources)
}

func TestService_ConsecutivePagesAreDisjoint(t *testing.T) {
	src := &staticSource{name: "global", candidates: tagged(domain.TagMostFollowed, 1, 2, 3, 4, 5)}
	f := newServiceFixture(t, []Source{src}, 1, 2, 3, 4, 5)

	page1 := f.svc.Get(context.Background(), alice, 2, 0)
	page2 := f.svc.Get(context.Background(), alice, 2, 2)
	page3 := f.svc.Get(context.Background(), alice, 2, 4)

	assert.Equal(t, []int64{1, 2}, suggestionIDs(page1))
	assert.Equal(t, []int64{3, 4}, suggestionIDs(page2))
	assert.Equal(t, []int64{5}, suggestionIDs(page3))
	assert.Equal(t, int32(1), src.calls.Load(), "pages come from one cached entry")
}

func TestService_ResultNeverExceedsBatchSize(t *testing.T) {
	ids := make([]int64, 50)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	f := newServiceFixture(t, []Source{
		&staticSource{name: "global", candidates: tagged(domain.TagMostFollowed, ids...)},
	}, ids...)

	got := f.svc.Get(context.Background(), alice, 50, 0)
	assert.Len(t, got, DefaultBatchSize)
}

func TestService_AbsentAccountsDropOnlyTheirID(t *testing.T) {
	f := newServiceFixture(t, []Source{
		&staticSource{name: "fof", candidates: tagged(domain.TagFriendsOfFriends, 1, 2, 3)},
		&staticSource{name: "global", candidates: tagged(domain.TagMostFollowed, 3)},
	}, 1, 3)

	got := f.svc.Get(context.Background(), alice, 10, 0)

	require.Equal(t, []int64{1, 3}, suggestionIDs(got))
	assert.Equal(t, domain.NewTagSet(domain.TagFriendsOfFriends), got[0].Sources)
	assert.Equal(t, domain.NewTagSet(domain.TagFriendsOfFriends, domain.TagMostFollowed), got[1].Sources)
}

func TestService_ConcurrentGetsFanOutOnce(t *testing.T) {
	fof := &staticSource{name: "fof", candidates: tagged(domain.TagFriendsOfFriends, 1)}
	global := &staticSource{name: "global", candidates: tagged(domain.TagMostFollowed, 2)}
	f := newServiceFixture(t, []Source{fof, global}, 1, 2)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := f.svc.Get(context.Background(), alice, 10, 0)
			assert.Equal(t, []int64{1, 2}, suggestionIDs(got))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fof.calls.Load())
	assert.Equal(t, int32(1), global.calls.Load())
}

func TestService_RemoveHidesTargetOnNextGet(t *testing.T) {
	var f *serviceFixture
	src := SourceFunc{SourceName: "global", Fn: func(ctx context.Context, account *domain.Account) ([]domain.Candidate, error) {
		excluded, err := f.exclusions.GetTargets(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		skip := make(map[int64]bool, len(excluded))
		for _, id := range excluded {
			skip[id] = true
		}
		var out []domain.Candidate
		for _, id := range []int64{1, 2, 3} {
			if !skip[id] {
				out = append(out, domain.Candidate{AccountID: id, Tags: domain.TagsOf(domain.TagMostFollowed)})
			}
		}
		return out, nil
	}}
	f = newServiceFixture(t, []Source{src}, 1, 2, 3)

	require.Equal(t, []int64{1, 2, 3}, suggestionIDs(f.svc.Get(context.Background(), alice, 10, 0)))

	require.NoError(t, f.svc.Remove(context.Background(), alice, 2))
	require.NoError(t, f.svc.Remove(context.Background(), alice, 2))

	assert.Equal(t, []int64{1, 3}, suggestionIDs(f.svc.Get(context.Background(), alice, 10, 0)))
	assert.Equal(t, 1, f.exclusions.Count())
}

func TestService_RemoveRequiresAccount(t *testing.T) {
	f := newServiceFixture(t, nil)
	assert.ErrorIs(t, f.svc.Remove(context.Background(), nil, 2), storage.ErrInvalidInput)
}

func TestService_GetWithoutAccount(t *testing.T) {
	f := newServiceFixture(t, []Source{&staticSource{name: "a", candidates: tagged("a", 1)}}, 1)
	assert.Empty(t, f.svc.Get(context.Background(), nil, 10, 0))
}

func TestService_RefreshDropsCachedEntry(t *testing.T) {
	src := &staticSource{name: "global", candidates: tagged(domain.TagMostFollowed, 1)}
	f := newServiceFixture(t, []Source{src}, 1)

	f.svc.Get(context.Background(), alice, 10, 0)
	require.Equal(t, 1, f.cache.Len())

	require.NoError(t, f.svc.Refresh(context.Background(), alice.ID))
	assert.Equal(t, 0, f.cache.Len())

	f.svc.Get(context.Background(), alice, 10, 0)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestService_NegativeArgumentsClamp(t *testing.T) {
	f := newServiceFixture(t, []Source{
		&staticSource{name: "global", candidates: tagged(domain.TagMostFollowed, 1, 2)},
	}, 1, 2)

	assert.Empty(t, f.svc.Get(context.Background(), alice, -5, 0))
	assert.Equal(t, []int64{1}, suggestionIDs(f.svc.Get(context.Background(), alice, 1, -5)))
}

func TestService_RemoveAbsorbsPersistenceFailure(t *testing.T) {
	src := &staticSource{name: "global", candidates: tagged(domain.TagMostFollowed, 1)}
	cache := memory.NewCacheStore()
	svc := New(Options{
		Sources:    []Source{src},
		Accounts:   seededAccounts(t, 1),
		Exclusions: brokenExclusionStore{},
		CacheStore: cache,
	})
	failed := testutil.ToFloat64(observability.DefaultMetrics.ExclusionsRecorded.WithLabelValues("failed"))

	svc.Get(context.Background(), alice, 10, 0)
	assert.NoError(t, svc.Remove(context.Background(), alice, 1))

	assert.Equal(t, failed+1, testutil.ToFloat64(observability.DefaultMetrics.ExclusionsRecorded.WithLabelValues("failed")))
	assert.Equal(t, 1, cache.Len(), "nothing recorded, cached entry kept")
}
