package suggestions

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/storage/memory"
)

// staticSource returns fixed candidates and counts calls.
type staticSource struct {
	name       string
	candidates []domain.Candidate
	err        error
	calls      atomic.Int32
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Get(_ context.Context, _ *domain.Account) ([]domain.Candidate, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

// tagged builds one candidate per id carrying tag.
func tagged(tag domain.Tag, ids ...int64) []domain.Candidate {
	out := make([]domain.Candidate, len(ids))
	for i, id := range ids {
		out[i] = domain.Candidate{AccountID: id, Tags: domain.TagsOf(tag)}
	}
	return out
}

func idsOf(entry []domain.RankedCandidate) []int64 {
	out := make([]int64, len(entry))
	for i, c := range entry {
		out[i] = c.AccountID
	}
	return out
}

func suggestionIDs(s []domain.Suggestion) []int64 {
	out := make([]int64, len(s))
	for i, sug := range s {
		out[i] = sug.Account.ID
	}
	return out
}

// countingRegenerator returns a fixed entry, optionally blocking until released.
type countingRegenerator struct {
	entry   []domain.RankedCandidate
	err     error
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *countingRegenerator) Regenerate(_ context.Context, _ *domain.Account) ([]domain.RankedCandidate, error) {
	r.calls.Add(1)
	if r.started != nil {
		r.once.Do(func() { close(r.started) })
	}
	if r.release != nil {
		<-r.release
	}
	return r.entry, r.err
}

var errBackend = errors.New("backend unavailable")

// failingCacheStore fails the configured operations.
type failingCacheStore struct {
	failGet, failSet, failDelete bool
	sets                         atomic.Int32
}

func (s *failingCacheStore) Get(context.Context, string) ([]domain.RankedCandidate, bool, error) {
	if s.failGet {
		return nil, false, errBackend
	}
	return nil, false, nil
}

func (s *failingCacheStore) Set(context.Context, string, []domain.RankedCandidate, time.Duration) error {
	s.sets.Add(1)
	if s.failSet {
		return errBackend
	}
	return nil
}

func (s *failingCacheStore) Delete(context.Context, string) error {
	if s.failDelete {
		return errBackend
	}
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1704067200, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// ctxCacheStore refuses writes under a done context, like a network-backed store.
type ctxCacheStore struct {
	*memory.CacheStore
}

func (s ctxCacheStore) Set(ctx context.Context, key string, entry []domain.RankedCandidate, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.CacheStore.Set(ctx, key, entry, ttl)
}
