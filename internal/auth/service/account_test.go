package service_test

import (
	"context"
	"testing"

	"github.com/stafflane/stafflane/internal/auth/service"
	"github.com/stafflane/stafflane/internal/auth/store"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	acc, err := f.accounts.Register(ctx, "alice", "Secr3t!", "ROLE_ADMIN")
	require.NoError(t, err)
	require.NotEmpty(t, acc.ID)
	require.Equal(t, "alice", acc.Username)
	require.Equal(t, "ROLE_ADMIN", acc.Role)
	require.NotEqual(t, "Secr3t!", acc.PasswordHash, "plaintext must never be stored")

	t.Run("registered account can log in", func(t *testing.T) {
		result, err := f.auth.Login(ctx, "alice", "Secr3t!")
		require.NoError(t, err)
		require.NotNil(t, result.Session)
		require.Equal(t, "ROLE_ADMIN", result.Session.Role)
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := f.accounts.Register(ctx, "alice", "other", "ROLE_HR")
		require.ErrorIs(t, err, service.ErrUsernameTaken)
	})

	t.Run("blank input rejected", func(t *testing.T) {
		for _, tc := range []struct{ username, password, role string }{
			{"", "pw", "ROLE_HR"},
			{"bob", "", "ROLE_HR"},
			{"bob", "pw", ""},
		} {
			_, err := f.accounts.Register(ctx, tc.username, tc.password, tc.role)
			require.ErrorIs(t, err, service.ErrValidation)
		}
	})
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "alice", "old-password", "ROLE_ADMIN")

	require.NoError(t, f.accounts.ResetPassword(ctx, "alice", "new-password"))

	_, err := f.auth.Login(ctx, "alice", "old-password")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	result, err := f.auth.Login(ctx, "alice", "new-password")
	require.NoError(t, err)
	require.NotNil(t, result.Session)

	t.Run("unknown account surfaces not found", func(t *testing.T) {
		err := f.accounts.ResetPassword(ctx, "nobody", "pw")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("blank input rejected", func(t *testing.T) {
		require.ErrorIs(t, f.accounts.ResetPassword(ctx, "", "pw"), service.ErrValidation)
		require.ErrorIs(t, f.accounts.ResetPassword(ctx, "alice", ""), service.ErrValidation)
	})
}
