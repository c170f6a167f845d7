// Package redis stores cached suggestion lists in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/storage"
)

// CacheStore implements storage.CacheStore on Redis strings.
// Each entry is one JSON value written with SET ... EX, so replacement is atomic.
type CacheStore struct {
	rdb    goredis.UniversalClient
	prefix string
}

// Options configures a Redis connection.
type Options struct {
	Addr        string
	Password    string
	DB          int
	KeyPrefix   string
	DialTimeout time.Duration
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, opts Options) (*goredis.Client, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	dialTimeout := opts.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: dialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewCacheStore creates a CacheStore. prefix is prepended to every key.
func NewCacheStore(rdb goredis.UniversalClient, prefix string) *CacheStore {
	return &CacheStore{rdb: rdb, prefix: prefix}
}

// Compile-time interface check.
var _ storage.CacheStore = (*CacheStore)(nil)

// Get returns the entry for key if present. Redis enforces expiry.
func (s *CacheStore) Get(ctx context.Context, key string) ([]domain.RankedCandidate, bool, error) {
	raw, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var entry []domain.RankedCandidate
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	for i := range entry {
		entry[i].Sources = domain.NewTagSet(entry[i].Sources...)
	}
	return entry, true, nil
}

// Set stores entry under key with ttl, replacing any prior entry.
func (s *CacheStore) Set(ctx context.Context, key string, entry []domain.RankedCandidate, ttl time.Duration) error {
	if key == "" || ttl <= 0 {
		return storage.ErrInvalidInput
	}
	if entry == nil {
		entry = []domain.RankedCandidate{}
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, s.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes the entry for key.
func (s *CacheStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
