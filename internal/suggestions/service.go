package suggestions

import (
	"context"
	"time"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/logger"
	"account-suggestions/internal/observability"
	"account-suggestions/internal/storage"
)

// Service is the public entry point for follow suggestions.
type Service struct {
	cache    *Cache
	resolver *Resolver
	sink     *ExclusionSink
	log      *logger.Logger
}

// Options contains configuration for wiring a Service from its collaborators.
type Options struct {
	// Sources in declared order. Order decides first-seen position after merge.
	Sources []Source

	Accounts   storage.AccountStore
	Exclusions storage.ExclusionStore
	CacheStore storage.CacheStore

	BatchSize     int              // <= 0 uses DefaultBatchSize
	CacheTTL      time.Duration    // <= 0 uses DefaultCacheTTL
	SourceTimeout time.Duration    // <= 0 disables
	Breaker       *BreakerSettings // nil disables

	Logger *logger.Logger
}

// New builds the aggregator, cache, resolver and exclusion sink and returns a Service.
func New(opts Options) *Service {
	aggregator := NewAggregator(AggregatorOptions{
		Sources:       opts.Sources,
		BatchSize:     opts.BatchSize,
		SourceTimeout: opts.SourceTimeout,
		Breaker:       opts.Breaker,
		Logger:        opts.Logger,
	})
	cache := NewCache(CacheOptions{
		Store:       opts.CacheStore,
		Regenerator: aggregator,
		TTL:         opts.CacheTTL,
		Logger:      opts.Logger,
	})
	return NewService(
		cache,
		NewResolver(opts.Accounts, opts.Logger),
		NewExclusionSink(opts.Exclusions, cache, opts.Logger),
		opts.Logger,
	)
}

// NewService creates a Service from already built components.
func NewService(cache *Cache, resolver *Resolver, sink *ExclusionSink, log *logger.Logger) *Service {
	return &Service{
		cache:    cache,
		resolver: resolver,
		sink:     sink,
		log:      logger.OrNop(log).With("component", "service"),
	}
}

// Get returns up to limit suggestions for account starting at offset.
// It never fails; degraded paths return fewer or no suggestions.
func (s *Service) Get(ctx context.Context, account *domain.Account, limit, offset int) []domain.Suggestion {
	observability.RecordRequest("get")
	if account == nil {
		return []domain.Suggestion{}
	}

	entry := s.cache.Get(ctx, account)
	result := s.resolver.Resolve(ctx, entry, limit, offset)

	observability.RecordSuggestionsServed(len(result))
	return result
}

// Remove excludes targetAccountID from account's future suggestions and drops the
// cached entry so the next Get reflects it. Like Get it never fails on backend
// trouble: a write that cannot be persisted is logged and counted. The only error
// is ErrInvalidInput for a nil account.
func (s *Service) Remove(ctx context.Context, account *domain.Account, targetAccountID int64) error {
	observability.RecordRequest("remove")
	if account == nil {
		return storage.ErrInvalidInput
	}
	if err := s.sink.Exclude(ctx, account.ID, targetAccountID); err != nil {
		observability.RecordExclusionFailure()
		s.log.Error("exclusion not recorded",
			"account_id", account.ID,
			"target_account_id", targetAccountID,
			"error", err,
		)
	}
	return nil
}

// Refresh drops the cached entry for accountID.
func (s *Service) Refresh(ctx context.Context, accountID int64) error {
	observability.RecordRequest("refresh")
	return s.cache.Invalidate(ctx, accountID)
}
