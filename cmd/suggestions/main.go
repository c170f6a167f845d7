// Package main provides the account suggestions command:
// - migrate: apply embedded PostgreSQL migrations
// - seed: load accounts, follows and global recommendations from a JSON fixture
// - get / remove / refresh: call the suggestion service for one account
// - serve: expose /health and /metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	json "github.com/goccy/go-json"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/logger"
	"account-suggestions/internal/sources"
	"account-suggestions/internal/storage"
	"account-suggestions/internal/storage/migrations"
	"account-suggestions/internal/suggestions"
)

// config holds global flags shared by every subcommand.
type config struct {
	postgresDSN   string
	redisAddr     string
	redisPassword string
	useMemory     bool
	seedFile      string
	featured      []string
	batchSize     int
	cacheTTL      time.Duration
	sourceTimeout time.Duration
	sourceLimit   int
	logMode       string
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	cfg := config{}
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	redisAddr := flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "Redis address for the suggestion cache")
	redisPassword := flag.String("redis-password", os.Getenv("REDIS_PASSWORD"), "Redis password")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL and Redis")
	seedFile := flag.String("seed", "", "JSON fixture loaded at start (with --use-memory)")
	featured := flag.String("featured", os.Getenv("SUGGESTIONS_FEATURED"), "Comma-separated usernames always suggested first")
	batchSize := flag.Int("batch-size", suggestions.DefaultBatchSize, "Maximum suggestions kept per account")
	cacheTTL := flag.Duration("cache-ttl", suggestions.DefaultCacheTTL, "How long generated suggestions are served")
	sourceTimeout := flag.Duration("source-timeout", suggestions.DefaultSourceTimeout, "Timeout for a single source call")
	sourceLimit := flag.Int("source-limit", sources.DefaultLimit, "Maximum candidates per source")
	logMode := flag.String("log-mode", envOr("LOG_MODE", "dev"), "Log mode: dev or prod")

	flag.Usage = usage
	flag.Parse()

	cfg.postgresDSN = *postgresDSN
	cfg.redisAddr = *redisAddr
	cfg.redisPassword = *redisPassword
	cfg.useMemory = *useMemory
	cfg.seedFile = *seedFile
	cfg.featured = splitList(*featured)
	cfg.batchSize = *batchSize
	cfg.cacheTTL = *cacheTTL
	cfg.sourceTimeout = *sourceTimeout
	cfg.sourceLimit = *sourceLimit
	cfg.logMode = *logMode

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	log, err := logger.New(cfg.logMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if !cfg.useMemory && cfg.postgresDSN == "" {
		log.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, flag.Arg(0), flag.Args()[1:], os.Stdout); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("interrupted")
			return
		}
		log.Fatal("command failed", "command", flag.Arg(0), "error", err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: suggestions [flags] <command> [command flags]

Commands:
  migrate                                  apply PostgreSQL migrations
  seed    -file fixture.json               load accounts, follows and recommendations
  get     -account ID [-limit N] [-offset N]
  remove  -account ID -target ID           never suggest target to account again
  refresh -account ID                      drop cached suggestions
  serve   [-addr :9090]                    serve /health and /metrics

Flags:
`)
	flag.PrintDefaults()
}

// run dispatches a subcommand.
func run(ctx context.Context, cfg config, log *logger.Logger, command string, args []string, out io.Writer) error {
	st, cleanup, err := createStores(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("create stores: %w", err)
	}
	defer cleanup()

	if cfg.seedFile != "" {
		if err := seedFromFile(ctx, st, cfg.seedFile, log); err != nil {
			return err
		}
	}

	switch command {
	case "migrate":
		return runMigrate(ctx, st, log)
	case "seed":
		return runSeed(ctx, st, args, log)
	case "get":
		return runGet(ctx, newService(cfg, st, log), st, args, out)
	case "remove":
		return runRemove(ctx, newService(cfg, st, log), st, args, out)
	case "refresh":
		return runRefresh(ctx, newService(cfg, st, log), args, out)
	case "serve":
		return runServe(ctx, args, log)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// newService wires the sources and the suggestion service over the stores.
func newService(cfg config, st *stores, log *logger.Logger) *suggestions.Service {
	breaker := suggestions.DefaultBreakerSettings()
	return suggestions.New(suggestions.Options{
		Sources: sources.Default(sources.Deps{
			Accounts:        st.accounts,
			Graph:           st.graph,
			Exclusions:      st.exclusions,
			Recommendations: st.recommendations,
		}, sources.Config{
			FeaturedUsernames: cfg.featured,
			Limit:             cfg.sourceLimit,
		}),
		Accounts:      st.accounts,
		Exclusions:    st.exclusions,
		CacheStore:    st.cache,
		BatchSize:     cfg.batchSize,
		CacheTTL:      cfg.cacheTTL,
		SourceTimeout: cfg.sourceTimeout,
		Breaker:       &breaker,
		Logger:        log,
	})
}

func runMigrate(ctx context.Context, st *stores, log *logger.Logger) error {
	if st.pool == nil {
		return fmt.Errorf("migrate requires --postgres-dsn")
	}
	applied, err := migrations.RunPostgresMigrations(ctx, st.pool)
	if err != nil {
		return err
	}
	log.Info("migrations applied", "files", applied)
	return nil
}

func runSeed(ctx context.Context, st *stores, args []string, log *logger.Logger) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	file := fs.String("file", "", "JSON fixture path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("seed: -file is required")
	}
	return seedFromFile(ctx, st, *file, log)
}

// suggestionView is the JSON shape printed by get.
type suggestionView struct {
	ID          int64    `json:"id"`
	Acct        string   `json:"acct"`
	DisplayName string   `json:"display_name,omitempty"`
	Sources     []string `json:"sources"`
}

func runGet(ctx context.Context, svc *suggestions.Service, st *stores, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	accountID := fs.Int64("account", 0, "Account id")
	limit := fs.Int("limit", suggestions.DefaultBatchSize, "Page size")
	offset := fs.Int("offset", 0, "Page offset")
	if err := fs.Parse(args); err != nil {
		return err
	}

	account, err := lookupAccount(ctx, st.accounts, *accountID)
	if err != nil {
		return err
	}

	result := svc.Get(ctx, account, *limit, *offset)
	views := make([]suggestionView, len(result))
	for i, s := range result {
		views[i] = suggestionView{
			ID:          s.Account.ID,
			Acct:        s.Account.Acct(),
			DisplayName: s.Account.DisplayName,
			Sources:     s.Sources.Strings(),
		}
	}
	return writeJSON(out, views)
}

func runRemove(ctx context.Context, svc *suggestions.Service, st *stores, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	accountID := fs.Int64("account", 0, "Account id")
	targetID := fs.Int64("target", 0, "Account id to stop suggesting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *targetID <= 0 {
		return fmt.Errorf("remove: -target is required")
	}

	account, err := lookupAccount(ctx, st.accounts, *accountID)
	if err != nil {
		return err
	}
	if err := svc.Remove(ctx, account, *targetID); err != nil {
		return err
	}
	return writeJSON(out, map[string]any{"account_id": account.ID, "target_account_id": *targetID, "removed": true})
}

func runRefresh(ctx context.Context, svc *suggestions.Service, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("refresh", flag.ContinueOnError)
	accountID := fs.Int64("account", 0, "Account id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *accountID <= 0 {
		return fmt.Errorf("refresh: -account is required")
	}
	if err := svc.Refresh(ctx, *accountID); err != nil {
		return err
	}
	return writeJSON(out, map[string]any{"account_id": *accountID, "refreshed": true})
}

func lookupAccount(ctx context.Context, accounts storage.AccountStore, id int64) (*domain.Account, error) {
	if id <= 0 {
		return nil, fmt.Errorf("-account is required")
	}
	account, err := accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load account %d: %w", id, err)
	}
	return account, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
// Variables already set in the environment win.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
