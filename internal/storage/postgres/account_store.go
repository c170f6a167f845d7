package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"account-suggestions/internal/domain"
	"account-suggestions/internal/storage"
)

// AccountStore implements storage.AccountStore using PostgreSQL.
type AccountStore struct {
	pool *Pool
}

// NewAccountStore creates a new AccountStore.
func NewAccountStore(pool *Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AccountStore = (*AccountStore)(nil)

const accountColumns = `id, username, domain, display_name, discoverable, suspended, created_at`

// Insert adds a new account. Returns ErrDuplicateKey if id or (username, domain) exists.
func (s *AccountStore) Insert(ctx context.Context, a *domain.Account) error {
	if a == nil || a.ID <= 0 || a.Username == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		a.ID,
		a.Username,
		a.Domain,
		a.DisplayName,
		a.Discoverable,
		a.Suspended,
		a.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by its ID. Returns ErrNotFound if not exists.
func (s *AccountStore) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}

// FindByUsernames retrieves live local accounts by username, in argument order.
func (s *AccountStore) FindByUsernames(ctx context.Context, usernames []string) ([]*domain.Account, error) {
	if len(usernames) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE domain = '' AND NOT suspended AND username = ANY($1)
		ORDER BY array_position($1::text[], username)
	`

	rows, err := s.pool.Query(ctx, query, usernames)
	if err != nil {
		return nil, fmt.Errorf("find accounts by usernames: %w", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// BulkResolve retrieves live accounts for ids in one lookup.
func (s *AccountStore) BulkResolve(ctx context.Context, ids []int64) (map[int64]*domain.Account, error) {
	result := make(map[int64]*domain.Account, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = ANY($1) AND NOT suspended
	`

	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("bulk resolve accounts: %w", err)
	}
	defer rows.Close()

	accounts, err := scanAccounts(rows)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		result[a.ID] = a
	}
	return result, nil
}

// Suspend marks an account as suspended. Returns ErrNotFound if not exists.
func (s *AccountStore) Suspend(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `UPDATE accounts SET suspended = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("suspend account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanAccount scans a single row into an Account.
func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID,
		&a.Username,
		&a.Domain,
		&a.DisplayName,
		&a.Discoverable,
		&a.Suspended,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// scanAccounts scans multiple rows into a slice of Account.
func scanAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	var accounts []*domain.Account

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account rows: %w", err)
	}

	return accounts, nil
}
