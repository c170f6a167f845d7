package main

import (
	"context"
	"fmt"

	"account-suggestions/internal/logger"
	"account-suggestions/internal/storage"
	"account-suggestions/internal/storage/memory"
	pgstore "account-suggestions/internal/storage/postgres"
	redisstore "account-suggestions/internal/storage/redis"
)

// stores holds all storage implementations.
type stores struct {
	accounts        storage.AccountStore
	graph           storage.GraphStore
	exclusions      storage.ExclusionStore
	recommendations storage.RecommendationStore
	cache           storage.CacheStore

	// pool is nil in memory mode.
	pool *pgstore.Pool
}

// createStores creates all required stores.
func createStores(ctx context.Context, cfg config, log *logger.Logger) (*stores, func(), error) {
	if cfg.useMemory {
		log.Debug("using in-memory storage")
		return &stores{
			accounts:        memory.NewAccountStore(),
			graph:           memory.NewGraphStore(),
			exclusions:      memory.NewExclusionStore(),
			recommendations: memory.NewRecommendationStore(),
			cache:           memory.NewCacheStore(),
		}, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, cfg.postgresDSN, 0)
	if err != nil {
		return nil, nil, err
	}

	st := &stores{
		accounts:        pgstore.NewAccountStore(pool),
		graph:           pgstore.NewGraphStore(pool),
		exclusions:      pgstore.NewExclusionStore(pool),
		recommendations: pgstore.NewRecommendationStore(pool),
		pool:            pool,
	}

	// Redis is optional; without it entries live in process memory.
	if cfg.redisAddr == "" {
		log.Warn("no --redis-addr, caching suggestions in process memory")
		st.cache = memory.NewCacheStore()
		return st, pool.Close, nil
	}

	rdb, err := redisstore.NewClient(ctx, redisstore.Options{
		Addr:     cfg.redisAddr,
		Password: cfg.redisPassword,
	})
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	st.cache = redisstore.NewCacheStore(rdb, "")

	cleanup := func() {
		_ = rdb.Close()
		pool.Close()
	}
	return st, cleanup, nil
}
