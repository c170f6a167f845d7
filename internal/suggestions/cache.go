package suggestions

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/logger"
	"account-suggestions/internal/observability"
	"account-suggestions/internal/storage"
)

// DefaultCacheTTL is how long a regenerated entry is served.
const DefaultCacheTTL = 15 * time.Minute

const keyPrefix = "follow_recommendations/"

// Key returns the cache key for an account.
func Key(accountID int64) string {
	return keyPrefix + strconv.FormatInt(accountID, 10)
}

// CacheOptions contains configuration for creating a Cache.
type CacheOptions struct {
	Store       storage.CacheStore
	Regenerator Regenerator
	TTL         time.Duration // <= 0 uses DefaultCacheTTL
	Logger      *logger.Logger
}

// flight tracks one in-progress regeneration so Invalidate can mark it stale.
type flight struct {
	stale bool
}

// Cache serves suggestion entries, regenerating at most once per account at a time.
type Cache struct {
	store       storage.CacheStore
	regenerator Regenerator
	ttl         time.Duration
	log         *logger.Logger

	group singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
}

// NewCache creates a suggestion cache.
func NewCache(opts CacheOptions) *Cache {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		store:       opts.Store,
		regenerator: opts.Regenerator,
		ttl:         ttl,
		log:         logger.OrNop(opts.Logger).With("component", "cache"),
		flights:     make(map[string]*flight),
	}
}

// TTL returns the entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the live entry for account, regenerating it on a miss.
// Backend errors are logged and never returned: a read error counts as a miss and
// a write error still returns the fresh entry.
func (c *Cache) Get(ctx context.Context, account *domain.Account) []domain.RankedCandidate {
	key := Key(account.ID)

	if entry, ok := c.lookup(ctx, key); ok {
		observability.RecordCacheLookup(true)
		return entry
	}
	observability.RecordCacheLookup(false)

	v, _, shared := c.group.Do(key, func() (any, error) {
		// Waiters share this flight; the caller that started it going away must not
		// cancel the fan-out or the write for the rest.
		flightCtx := context.WithoutCancel(ctx)

		// Another flight may have filled the entry while we waited.
		if entry, ok := c.lookup(flightCtx, key); ok {
			return entry, nil
		}
		return c.regenerate(flightCtx, key, account), nil
	})

	entry, _ := v.([]domain.RankedCandidate)
	if shared {
		return cloneEntry(entry)
	}
	return entry
}

// Invalidate drops the cached entry for accountID. A regeneration already in
// progress for that account will not persist its result.
func (c *Cache) Invalidate(ctx context.Context, accountID int64) error {
	key := Key(accountID)

	c.mu.Lock()
	if f, ok := c.flights[key]; ok {
		f.stale = true
	}
	c.mu.Unlock()
	c.group.Forget(key)

	observability.RecordCacheInvalidation()
	if err := c.store.Delete(ctx, key); err != nil {
		observability.RecordCacheStoreError("delete")
		return err
	}
	return nil
}

func (c *Cache) lookup(ctx context.Context, key string) ([]domain.RankedCandidate, bool) {
	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		observability.RecordCacheStoreError("get")
		c.log.Warn("cache read failed, regenerating", "key", key, "error", err)
		return nil, false
	}
	return entry, ok
}

// regenerate runs under the flight's context, which outlives any single caller.
// A Regenerator error means the result is incomplete; it is returned but not stored.
func (c *Cache) regenerate(ctx context.Context, key string, account *domain.Account) []domain.RankedCandidate {
	f := c.begin(key)
	defer c.end(key, f)

	entry, err := c.regenerator.Regenerate(ctx, account)
	if err != nil {
		c.log.Warn("regeneration incomplete, not caching", "key", key, "error", err)
		return entry
	}

	if c.isStale(f) {
		return entry
	}
	if err := c.store.Set(ctx, key, entry, c.ttl); err != nil {
		observability.RecordCacheStoreError("set")
		c.log.Warn("cache write failed", "key", key, "error", err)
		return entry
	}
	// Invalidated while writing: remove what we just stored.
	if c.isStale(f) {
		if err := c.store.Delete(ctx, key); err != nil {
			observability.RecordCacheStoreError("delete")
			c.log.Warn("cache delete of stale entry failed", "key", key, "error", err)
		}
	}
	return entry
}

func (c *Cache) begin(key string) *flight {
	f := &flight{}
	c.mu.Lock()
	c.flights[key] = f
	c.mu.Unlock()
	return f
}

func (c *Cache) end(key string, f *flight) {
	c.mu.Lock()
	if c.flights[key] == f {
		delete(c.flights, key)
	}
	c.mu.Unlock()
}

func (c *Cache) isStale(f *flight) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return f.stale
}

func cloneEntry(entry []domain.RankedCandidate) []domain.RankedCandidate {
	if entry == nil {
		return nil
	}
	out := make([]domain.RankedCandidate, len(entry))
	for i, c := range entry {
		sources := make(domain.TagSet, len(c.Sources))
		copy(sources, c.Sources)
		out[i] = domain.RankedCandidate{AccountID: c.AccountID, Sources: sources}
	}
	return out
}
