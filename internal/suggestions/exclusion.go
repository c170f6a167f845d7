package suggestions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/logger"
	"account-suggestions/internal/observability"
	"account-suggestions/internal/storage"
)

// Invalidator drops cached suggestions for an account.
type Invalidator interface {
	Invalidate(ctx context.Context, accountID int64) error
}

// ExclusionSink records that a target must never be suggested to an account again.
type ExclusionSink struct {
	store       storage.ExclusionStore
	invalidator Invalidator
	now         func() time.Time
	log         *logger.Logger
}

// NewExclusionSink creates a sink. invalidator may be nil, in which case cached
// entries keep showing the target until they expire.
func NewExclusionSink(store storage.ExclusionStore, invalidator Invalidator, log *logger.Logger) *ExclusionSink {
	return &ExclusionSink{
		store:       store,
		invalidator: invalidator,
		now:         time.Now,
		log:         logger.OrNop(log).With("component", "exclusion_sink"),
	}
}

// Exclude records the pair. Recording an existing pair succeeds without a second
// record. Only persistence failures are returned; a failed invalidation is logged.
func (s *ExclusionSink) Exclude(ctx context.Context, accountID, targetAccountID int64) error {
	err := s.store.Insert(ctx, &domain.Exclusion{
		AccountID:       accountID,
		TargetAccountID: targetAccountID,
		CreatedAt:       s.now().UnixMilli(),
	})
	switch {
	case err == nil:
		observability.RecordExclusion(true)
	case errors.Is(err, storage.ErrDuplicateKey):
		observability.RecordExclusion(false)
	default:
		return fmt.Errorf("record exclusion: %w", err)
	}

	if s.invalidator == nil {
		return nil
	}
	if err := s.invalidator.Invalidate(ctx, accountID); err != nil {
		s.log.Warn("invalidate after exclusion failed",
			"account_id", accountID,
			"target_account_id", targetAccountID,
			"error", err,
		)
	}
	return nil
}
