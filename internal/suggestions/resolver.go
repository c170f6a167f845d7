package suggestions

import (
	"context"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/logger"
	"account-suggestions/internal/observability"
	"account-suggestions/internal/storage"
)

// Resolver hydrates a cached entry into suggestions. It holds no state.
type Resolver struct {
	accounts storage.AccountStore
	log      *logger.Logger
}

// NewResolver creates a resolver backed by an account store.
func NewResolver(accounts storage.AccountStore, log *logger.Logger) *Resolver {
	return &Resolver{
		accounts: accounts,
		log:      logger.OrNop(log).With("component", "resolver"),
	}
}

// Window returns entry[offset:offset+limit], clamping negative arguments to zero.
func Window(entry []domain.RankedCandidate, limit, offset int) []domain.RankedCandidate {
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(entry) || limit == 0 {
		return nil
	}
	end := offset + limit
	if end > len(entry) || end < offset {
		end = len(entry)
	}
	return entry[offset:end]
}

// Resolve windows entry, resolves the remaining ids in one lookup and returns
// suggestions in entry order. Ids without a live account are dropped.
func (r *Resolver) Resolve(ctx context.Context, entry []domain.RankedCandidate, limit, offset int) []domain.Suggestion {
	window := Window(entry, limit, offset)
	if len(window) == 0 {
		return []domain.Suggestion{}
	}

	ids := make([]int64, len(window))
	for i, c := range window {
		ids[i] = c.AccountID
	}

	accounts, err := r.accounts.BulkResolve(ctx, ids)
	if err != nil {
		r.log.Error("bulk resolve failed", "ids", len(ids), "error", err)
		return []domain.Suggestion{}
	}

	result := make([]domain.Suggestion, 0, len(window))
	for _, c := range window {
		account, ok := accounts[c.AccountID]
		if !ok || account == nil {
			continue
		}
		sources := make(domain.TagSet, len(c.Sources))
		copy(sources, c.Sources)
		result = append(result, domain.Suggestion{Account: account, Sources: sources})
	}

	if dropped := len(window) - len(result); dropped > 0 {
		observability.RecordUnresolved(dropped)
		r.log.Debug("dropped unresolved candidates", "dropped", dropped)
	}

	return result
}
