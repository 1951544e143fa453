package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/stafflane/stafflane/internal/auth/domain"
	"github.com/stafflane/stafflane/internal/auth/store"
	"github.com/stafflane/stafflane/pkg/slogx"
	"github.com/stafflane/stafflane/pkg/totpx"
)

// TwoFactorService handles TOTP enrollment and confirmation for an already
// authenticated account. Both operations run their read-modify-write inside a
// transaction so a concurrent enroll/confirm on the same account cannot lose
// an update.
type TwoFactorService struct {
	Store store.Store
	TOTP  *totpx.Engine
}

// Enroll generates a fresh secret, persists it as pending and returns it with
// the enrollment URI. The enabled flag is untouched. Re-invoking overwrites
// the pending secret; that is the intended reset path, not an error.
func (s *TwoFactorService) Enroll(ctx context.Context, username string) (domain.TwoFactorEnrollment, error) {
	l := slogx.FromContext(ctx)

	secret, err := s.TOTP.GenerateSecret()
	if err != nil {
		return domain.TwoFactorEnrollment{}, fmt.Errorf("failed to generate secret: %w", err)
	}

	uri, err := s.TOTP.EnrollmentURI(username, secret)
	if err != nil {
		return domain.TwoFactorEnrollment{}, fmt.Errorf("failed to build enrollment URI: %w", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		acc, err := tx.Accounts().GetAccountByUsername(ctx, username)
		if err != nil {
			return err
		}
		return tx.Accounts().UpdateTwoFactorSecret(ctx, acc.ID, secret)
	})
	if err != nil {
		return domain.TwoFactorEnrollment{}, err
	}

	l.Info("two-factor secret enrolled", "username", username)
	return domain.TwoFactorEnrollment{
		Secret:        secret,
		EnrollmentURI: uri,
	}, nil
}

// Confirm verifies a code against the pending secret and, on success, flips
// the enabled flag. A wrong code mutates nothing, so the caller may retry.
// Confirming without a pending secret is an out-of-sequence call.
func (s *TwoFactorService) Confirm(ctx context.Context, username, code string) error {
	l := slogx.FromContext(ctx)

	if strings.TrimSpace(code) == "" {
		return ErrValidation
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		acc, err := tx.Accounts().GetAccountByUsername(ctx, username)
		if err != nil {
			return err
		}
		if acc.TwoFactorSecret == nil || *acc.TwoFactorSecret == "" {
			return ErrNotInitialized
		}
		if !s.TOTP.VerifyCode(*acc.TwoFactorSecret, code) {
			return ErrInvalidCode
		}
		return tx.Accounts().EnableTwoFactor(ctx, acc.ID)
	})
	if err != nil {
		return err
	}

	l.Info("two-factor enabled", "username", username)
	return nil
}
