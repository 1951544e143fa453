package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stafflane/stafflane/internal/auth/domain"
	"github.com/stafflane/stafflane/internal/auth/store"
	"github.com/stafflane/stafflane/pkg/cryptox"
	"github.com/stafflane/stafflane/pkg/idx"
	"github.com/stafflane/stafflane/pkg/slogx"
)

// AccountService covers account provisioning: registration and password
// reset. Plaintext passwords are hashed before anything is persisted and
// never stored.
type AccountService struct {
	Store store.Store
}

// Register creates a new account with a hashed password and the given role.
func (s *AccountService) Register(ctx context.Context, username, password, role string) (domain.Account, error) {
	l := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	role = strings.TrimSpace(role)
	if username == "" || password == "" || role == "" {
		return domain.Account{}, ErrValidation
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to hash password: %w", err)
	}

	acc := domain.Account{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.Store.Accounts().CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, ErrUsernameTaken
		}
		return domain.Account{}, fmt.Errorf("failed to create account: %w", err)
	}

	l.Info("account registered", "username", username, "role", role)
	return acc, nil
}

// ResetPassword re-hashes and stores a new password for an existing account.
// store.ErrNotFound surfaces to the caller; this path sits behind a boundary
// where enumeration is an accepted trade-off.
func (s *AccountService) ResetPassword(ctx context.Context, username, newPassword string) error {
	l := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	if username == "" || newPassword == "" {
		return ErrValidation
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		acc, err := tx.Accounts().GetAccountByUsername(ctx, username)
		if err != nil {
			return err
		}
		return tx.Accounts().UpdatePasswordHash(ctx, acc.ID, hash)
	})
	if err != nil {
		return err
	}

	l.Info("password reset", "username", username)
	return nil
}
