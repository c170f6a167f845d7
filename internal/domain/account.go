package domain

// Account is a local or remote account that can be suggested.
// Corresponds to accounts table in PostgreSQL.
type Account struct {
	ID           int64  // PRIMARY KEY
	Username     string // unique per domain
	Domain       string // empty for local accounts
	DisplayName  string
	Discoverable bool  // opted in to being suggested
	Suspended    bool  // suspended accounts never resolve
	CreatedAt    int64 // Unix timestamp in milliseconds
}

// IsLive reports whether the account can be shown to users.
func (a *Account) IsLive() bool {
	return a != nil && !a.Suspended
}

// Acct returns username or username@domain for remote accounts.
func (a *Account) Acct() string {
	if a.Domain == "" {
		return a.Username
	}
	return a.Username + "@" + a.Domain
}
