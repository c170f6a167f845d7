package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/logger"
	"account-suggestions/internal/storage"
)

// fixture is the seed file format.
type fixture struct {
	Accounts []struct {
		ID           int64  `json:"id"`
		Username     string `json:"username"`
		Domain       string `json:"domain"`
		DisplayName  string `json:"display_name"`
		Discoverable bool   `json:"discoverable"`
		Suspended    bool   `json:"suspended"`
		CreatedAt    int64  `json:"created_at"`
	} `json:"accounts"`
	Follows []struct {
		AccountID       int64 `json:"account_id"`
		TargetAccountID int64 `json:"target_account_id"`
		FollowedAt      int64 `json:"followed_at"`
	} `json:"follows"`
	Recommendations []struct {
		AccountID int64   `json:"account_id"`
		Rank      float64 `json:"rank"`
		Reason    string  `json:"reason"`
	} `json:"recommendations"`
}

// seedCounts reports how many rows a seed run wrote.
type seedCounts struct {
	Accounts        int
	Skipped         int
	Follows         int
	Recommendations int
}

func seedFromFile(ctx context.Context, st *stores, path string, log *logger.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	counts, err := seed(ctx, st, f)
	if err != nil {
		return fmt.Errorf("seed %s: %w", path, err)
	}
	log.Info("seed loaded",
		"file", path,
		"accounts", counts.Accounts,
		"skipped_accounts", counts.Skipped,
		"follows", counts.Follows,
		"recommendations", counts.Recommendations,
	)
	return nil
}

// seed loads a fixture. Accounts that already exist are skipped so seeding can be repeated.
func seed(ctx context.Context, st *stores, r io.Reader) (seedCounts, error) {
	var fx fixture
	if err := json.NewDecoder(r).Decode(&fx); err != nil {
		return seedCounts{}, fmt.Errorf("decode fixture: %w", err)
	}

	var counts seedCounts
	for _, a := range fx.Accounts {
		err := st.accounts.Insert(ctx, &domain.Account{
			ID:           a.ID,
			Username:     a.Username,
			Domain:       a.Domain,
			DisplayName:  a.DisplayName,
			Discoverable: a.Discoverable,
			Suspended:    a.Suspended,
			CreatedAt:    a.CreatedAt,
		})
		switch {
		case err == nil:
			counts.Accounts++
		case errors.Is(err, storage.ErrDuplicateKey):
			counts.Skipped++
		default:
			return counts, fmt.Errorf("insert account %d: %w", a.ID, err)
		}
	}

	for _, f := range fx.Follows {
		if err := st.graph.Follow(ctx, f.AccountID, f.TargetAccountID, f.FollowedAt); err != nil {
			return counts, fmt.Errorf("follow %d -> %d: %w", f.AccountID, f.TargetAccountID, err)
		}
		counts.Follows++
	}

	for _, rec := range fx.Recommendations {
		if err := st.recommendations.Upsert(ctx, &domain.FollowRecommendation{
			AccountID: rec.AccountID,
			Rank:      rec.Rank,
			Reason:    domain.Tag(rec.Reason),
		}); err != nil {
			return counts, fmt.Errorf("upsert recommendation %d: %w", rec.AccountID, err)
		}
		counts.Recommendations++
	}

	return counts, nil
}
