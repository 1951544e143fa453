package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/stafflane/stafflane/internal/auth/domain"
	"github.com/stafflane/stafflane/internal/auth/store"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, username, password_hash, role, two_factor_enabled, two_factor_secret, created_at, updated_at`

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username)
	return scanAccount(row)
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, username, password_hash, role, two_factor_enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		a.ID, a.Username, a.PasswordHash, a.Role)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, accountID string, newHash string) error {
	return r.exec(ctx,
		`UPDATE accounts SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		newHash, accountID)
}

func (r *accountsRepo) UpdateTwoFactorSecret(ctx context.Context, accountID string, secret string) error {
	// two_factor_enabled is deliberately left alone here.
	return r.exec(ctx,
		`UPDATE accounts SET two_factor_secret = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		secret, accountID)
}

func (r *accountsRepo) EnableTwoFactor(ctx context.Context, accountID string) error {
	return r.exec(ctx,
		`UPDATE accounts SET two_factor_enabled = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		accountID)
}

func (r *accountsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

// exec runs an UPDATE that must touch exactly one row, mapping a zero-row
// result to ErrNotFound.
func (r *accountsRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanAccount(row *sql.Row) (domain.Account, error) {
	var (
		a       domain.Account
		enabled int64
		secret  sql.NullString
	)
	err := row.Scan(
		&a.ID,
		&a.Username,
		&a.PasswordHash,
		&a.Role,
		&enabled,
		&secret,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	a.TwoFactorEnabled = enabled != 0
	a.TwoFactorSecret = mapNullStringPtr(secret)
	return a, nil
}
