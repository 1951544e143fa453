package store

import (
	"context"
	"errors"

	"github.com/stafflane/stafflane/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. Token validity never touches the store - tokens are
// self-contained - so the only state here is the account directory.
type Store interface {
	Accounts() Accounts

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back when fn errors
	// and committing otherwise. Enroll/confirm use this to serialize the
	// read-modify-write of an account's two-factor pair.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Accounts is the account directory contract consumed by the services.
type Accounts interface {
	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByUsername is the login-path lookup.
	GetAccountByUsername(ctx context.Context, username string) (domain.Account, error)

	// CreateAccount inserts a new account (id is provided by app via ULID).
	// A duplicate username returns ErrAlreadyExists.
	CreateAccount(ctx context.Context, a domain.Account) error

	// UpdatePasswordHash sets the password_hash (argon2id) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, accountID string, newHash string) error

	// UpdateTwoFactorSecret replaces the pending TOTP secret. The enabled
	// flag is deliberately untouched: regenerating over an enabled account
	// keeps it enabled (preserved permissive behavior).
	UpdateTwoFactorSecret(ctx context.Context, accountID string, secret string) error

	// EnableTwoFactor marks the account's second factor as confirmed.
	EnableTwoFactor(ctx context.Context, accountID string) error

	// IsEmpty returns true if there are no accounts.
	IsEmpty(ctx context.Context) (bool, error)
}
