package suggestions

import (
	"context"

	"account-suggestions/internal/domain"
)

// Source produces follow candidates for an account.
// The order of the returned slice is the source's ranking.
// Get must be safe to call repeatedly and must not have side effects beyond reads.
type Source interface {
	Name() string
	Get(ctx context.Context, account *domain.Account) ([]domain.Candidate, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc struct {
	SourceName string
	Fn         func(ctx context.Context, account *domain.Account) ([]domain.Candidate, error)
}

// Name returns the source name.
func (f SourceFunc) Name() string { return f.SourceName }

// Get calls the wrapped function.
func (f SourceFunc) Get(ctx context.Context, account *domain.Account) ([]domain.Candidate, error) {
	return f.Fn(ctx, account)
}
