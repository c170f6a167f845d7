package suggestions

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/logger"
	"account-suggestions/internal/observability"
)

const (
	// DefaultBatchSize is the maximum number of distinct candidates kept per regeneration.
	DefaultBatchSize = 40

	// DefaultSourceTimeout bounds a single source call.
	DefaultSourceTimeout = 5 * time.Second
)

var (
	// ErrSourceTimeout is returned when a source does not answer within the timeout.
	ErrSourceTimeout = errors.New("source timed out")

	// ErrSourcePanic is returned when a source panics.
	ErrSourcePanic = errors.New("source panicked")
)

// Regenerator produces a fresh suggestion list for an account.
type Regenerator interface {
	Regenerate(ctx context.Context, account *domain.Account) ([]domain.RankedCandidate, error)
}

// BreakerSettings configures the per-source circuit breaker.
type BreakerSettings struct {
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before a trial call.
	OpenTimeout time.Duration
	// Interval resets failure counts while closed; 0 never resets.
	Interval time.Duration
}

// DefaultBreakerSettings trips after 5 consecutive failures and retries after 30s.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		Interval:         time.Minute,
	}
}

// AggregatorOptions contains configuration for creating an Aggregator.
type AggregatorOptions struct {
	Sources       []Source
	BatchSize     int              // <= 0 uses DefaultBatchSize
	SourceTimeout time.Duration    // <= 0 disables the per-call timeout
	Breaker       *BreakerSettings // nil disables circuit breaking
	Logger        *logger.Logger
}

// Aggregator fans out to every source and merges the results.
type Aggregator struct {
	sources       []Source
	breakers      []*gobreaker.CircuitBreaker[[]domain.Candidate]
	batchSize     int
	sourceTimeout time.Duration
	log           *logger.Logger
}

// NewAggregator creates an aggregator over a fixed, ordered list of sources.
func NewAggregator(opts AggregatorOptions) *Aggregator {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	a := &Aggregator{
		sources:       append([]Source(nil), opts.Sources...),
		batchSize:     batchSize,
		sourceTimeout: opts.SourceTimeout,
		log:           logger.OrNop(opts.Logger).With("component", "aggregator"),
	}

	if opts.Breaker != nil {
		a.breakers = make([]*gobreaker.CircuitBreaker[[]domain.Candidate], len(a.sources))
		for i, src := range a.sources {
			a.breakers[i] = newBreaker(src.Name(), *opts.Breaker, a.log)
		}
	}

	return a
}

func newBreaker(name string, cfg BreakerSettings, log *logger.Logger) *gobreaker.CircuitBreaker[[]domain.Candidate] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}
	return gobreaker.NewCircuitBreaker[[]domain.Candidate](gobreaker.Settings{
		Name:     name,
		Interval: cfg.Interval,
		Timeout:  cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// The caller giving up is not the source's fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("source circuit breaker state changed", "source", name, "from", from.String(), "to", to.String())
		},
	})
}

// BatchSize returns the cap applied to merged results.
func (a *Aggregator) BatchSize() int {
	return a.batchSize
}

// Regenerate calls every source in order and returns the merged, capped list.
// Failing sources contribute nothing. The error is non-nil only when ctx ended
// during the fan-out, in which case the partial result must not be cached.
func (a *Aggregator) Regenerate(ctx context.Context, account *domain.Account) ([]domain.RankedCandidate, error) {
	start := time.Now()
	m := newMerger()

	for i, src := range a.sources {
		candidates, err := a.call(ctx, i, account)
		if err != nil {
			reason := failureReason(err)
			observability.RecordSourceFailure(src.Name(), reason)
			a.log.Warn("source failed, treating as empty",
				"source", src.Name(),
				"account_id", account.ID,
				"reason", reason,
				"error", err,
			)
			continue
		}
		m.add(candidates)
	}

	merged := m.result()
	observability.RecordRegeneration(time.Since(start).Seconds(), len(merged))

	if len(merged) > a.batchSize {
		merged = merged[:a.batchSize]
	}

	a.log.Debug("regenerated suggestions",
		"account_id", account.ID,
		"candidates", len(merged),
		"duration", time.Since(start),
	)

	if err := ctx.Err(); err != nil {
		return merged, err
	}
	return merged, nil
}

// call invokes source i with the timeout and breaker applied.
func (a *Aggregator) call(ctx context.Context, i int, account *domain.Account) ([]domain.Candidate, error) {
	src := a.sources[i]
	start := time.Now()
	defer func() {
		observability.RecordSourceCall(src.Name(), time.Since(start).Seconds())
	}()

	callCtx := ctx
	if a.sourceTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.sourceTimeout)
		defer cancel()
	}

	run := func() ([]domain.Candidate, error) {
		return invoke(callCtx, src, account)
	}
	if a.breakers != nil {
		return a.breakers[i].Execute(run)
	}
	return run()
}

type sourceResult struct {
	candidates []domain.Candidate
	err        error
}

// invoke runs the source in its own goroutine so that a source ignoring ctx
// cannot block the fan-out past the deadline.
func invoke(ctx context.Context, src Source, account *domain.Account) ([]domain.Candidate, error) {
	done := make(chan sourceResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- sourceResult{err: fmt.Errorf("%w: %v", ErrSourcePanic, r)}
			}
		}()
		candidates, err := src.Get(ctx, account)
		done <- sourceResult{candidates: candidates, err: err}
	}()

	select {
	case res := <-done:
		return res.candidates, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrSourceTimeout
		}
		return nil, ctx.Err()
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	case errors.Is(err, ErrSourceTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrSourcePanic):
		return "panic"
	default:
		return "error"
	}
}
