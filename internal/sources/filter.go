package sources

import (
	"context"
	"fmt"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/storage"
)

// DefaultLimit caps the number of candidates a single source returns.
const DefaultLimit = 200

// maxFetch bounds how far a source widens its store query while refilling.
const maxFetch = 10000

// filter removes ids the account must not be offered: itself, accounts it
// already follows, its exclusions and accounts that opted out of discovery.
type filter struct {
	accounts   storage.AccountStore
	graph      storage.GraphStore
	exclusions storage.ExclusionStore
}

// fetchFunc returns up to n ranked ids from a store; n <= 0 means no cap.
type fetchFunc func(ctx context.Context, n int) ([]int64, error)

// collect queries fetch until limit ids survive the filter or the store runs dry.
// The first query asks for limit plus every id known to be skipped; each refill
// doubles it, since undiscoverable accounts are only found after resolving.
func (f *filter) collect(ctx context.Context, account *domain.Account, limit int, fetch fetchFunc) ([]int64, error) {
	skip, err := f.skipSet(ctx, account)
	if err != nil {
		return nil, err
	}

	n := 0
	if limit > 0 {
		n = limit + len(skip)
	}
	for {
		ids, err := fetch(ctx, n)
		if err != nil {
			return nil, err
		}
		out, err := f.keep(ctx, ids, skip, limit)
		if err != nil {
			return nil, err
		}
		if n <= 0 || len(out) >= limit || len(ids) < n || n >= maxFetch {
			return out, nil
		}
		n = min(n*2, maxFetch)
	}
}

// apply filters a fixed id list, keeping input order, capped at limit.
func (f *filter) apply(ctx context.Context, account *domain.Account, ids []int64, limit int) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	skip, err := f.skipSet(ctx, account)
	if err != nil {
		return nil, err
	}
	return f.keep(ctx, ids, skip, limit)
}

func (f *filter) skipSet(ctx context.Context, account *domain.Account) (map[int64]struct{}, error) {
	skip := map[int64]struct{}{account.ID: {}}

	following, err := f.graph.Following(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("load following: %w", err)
	}
	for _, id := range following {
		skip[id] = struct{}{}
	}

	excluded, err := f.exclusions.GetTargets(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("load exclusions: %w", err)
	}
	for _, id := range excluded {
		skip[id] = struct{}{}
	}
	return skip, nil
}

// keep returns ids not in skip that resolve to discoverable live accounts.
func (f *filter) keep(ctx context.Context, ids []int64, skip map[int64]struct{}, limit int) ([]int64, error) {
	pending := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := skip[id]; !ok {
			pending = append(pending, id)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	live, err := f.accounts.BulkResolve(ctx, pending)
	if err != nil {
		return nil, fmt.Errorf("resolve candidates: %w", err)
	}

	out := make([]int64, 0, len(pending))
	for _, id := range pending {
		a, ok := live[id]
		if !ok || !a.Discoverable {
			continue
		}
		out = append(out, id)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func candidates(ids []int64, tag domain.Tag) []domain.Candidate {
	out := make([]domain.Candidate, len(ids))
	for i, id := range ids {
		out[i] = domain.Candidate{AccountID: id, Tags: domain.TagsOf(tag)}
	}
	return out
}

func scoredIDs(scored []domain.ScoredAccount) []int64 {
	ids := make([]int64, len(scored))
	for i, s := range scored {
		ids[i] = s.AccountID
	}
	return ids
}
