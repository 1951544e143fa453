package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stafflane/stafflane/internal/auth/domain"
	"github.com/stafflane/stafflane/internal/auth/store"
	"github.com/stafflane/stafflane/pkg/cryptox"
	"github.com/stafflane/stafflane/pkg/jwtx"
	"github.com/stafflane/stafflane/pkg/slogx"
	"github.com/stafflane/stafflane/pkg/totpx"
)

// AuthService drives the authentication state machine: credential
// verification, then either a session grant or a pre-auth challenge, and the
// second-factor step that upgrades a challenge to a session.
type AuthService struct {
	Store    store.Store
	Signer   *jwtx.Signer
	Verifier *jwtx.Verifier
	TOTP     *totpx.Engine
}

// Login verifies a username/password pair. Accounts without a second factor
// get a session grant directly; accounts with one get a short-lived pre-auth
// challenge instead. Unknown usernames and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.LoginResult, error) {
	l := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.LoginResult{}, ErrValidation
	}

	acc, err := s.Store.Accounts().GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("login rejected", "username", username)
			return domain.LoginResult{}, ErrInvalidCredentials
		}
		return domain.LoginResult{}, fmt.Errorf("failed to load account: %w", err)
	}

	if err := cryptox.VerifyPassword(password, acc.PasswordHash); err != nil {
		l.Info("login rejected", "username", username)
		return domain.LoginResult{}, ErrInvalidCredentials
	}

	if acc.TwoFactorEnabled {
		preAuth, err := s.Signer.PreAuth(acc.Username)
		if err != nil {
			return domain.LoginResult{}, fmt.Errorf("failed to sign preauth token: %w", err)
		}
		l.Info("login requires second factor", "username", username)
		return domain.LoginResult{
			Challenge: &domain.PreAuthChallenge{
				TwoFactorRequired: true,
				PreAuthToken:      preAuth,
			},
		}, nil
	}

	token, err := s.Signer.Session(acc.Username, acc.Role)
	if err != nil {
		return domain.LoginResult{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	l.Info("login succeeded", "username", username)
	return domain.LoginResult{
		Session: &domain.SessionGrant{
			Token:    token,
			Username: acc.Username,
			Role:     acc.Role,
		},
	}, nil
}

// Verify2FA upgrades a valid pre-auth token plus a correct code to a full
// session grant. The pre-auth token is not consumed: a wrong code may be
// retried until the token expires.
func (s *AuthService) Verify2FA(ctx context.Context, preAuthToken, code string) (domain.SessionGrant, error) {
	l := slogx.FromContext(ctx)

	if strings.TrimSpace(preAuthToken) == "" || strings.TrimSpace(code) == "" {
		return domain.SessionGrant{}, ErrValidation
	}

	tok, err := s.Verifier.Verify(preAuthToken)
	if err != nil || tok.Kind != jwtx.KindPreAuth {
		return domain.SessionGrant{}, ErrInvalidPreAuth
	}

	acc, err := s.Store.Accounts().GetAccountByUsername(ctx, tok.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// This endpoint is public, so an unknown subject folds into the
			// same outcome as a wrong code.
			return domain.SessionGrant{}, ErrInvalidCode
		}
		return domain.SessionGrant{}, fmt.Errorf("failed to load account: %w", err)
	}

	if acc.TwoFactorSecret == nil || !s.TOTP.VerifyCode(*acc.TwoFactorSecret, code) {
		l.Info("second factor rejected", "username", acc.Username)
		return domain.SessionGrant{}, ErrInvalidCode
	}

	token, err := s.Signer.Session(acc.Username, acc.Role)
	if err != nil {
		return domain.SessionGrant{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	l.Info("second factor verified", "username", acc.Username)
	return domain.SessionGrant{
		Token:    token,
		Username: acc.Username,
		Role:     acc.Role,
	}, nil
}

// WhoAmI returns the authenticated account's self-view. The caller supplies
// a username already proven by a session token, so store.ErrNotFound may
// surface here without enumeration risk.
func (s *AuthService) WhoAmI(ctx context.Context, username string) (domain.Identity, error) {
	acc, err := s.Store.Accounts().GetAccountByUsername(ctx, username)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{
		Username:         acc.Username,
		Role:             acc.Role,
		TwoFactorEnabled: acc.TwoFactorEnabled,
	}, nil
}
