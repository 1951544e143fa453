package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stafflane/stafflane/internal/auth/service"
	"github.com/stafflane/stafflane/internal/auth/store/drivers/sqlite"
	"github.com/stafflane/stafflane/pkg/jwtx"
	"github.com/stafflane/stafflane/pkg/totpx"
	"github.com/stretchr/testify/require"
)

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

// fakeClock is a settable clock shared by the signer, verifier and TOTP
// engine so tests can walk time forward deterministically.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	clock     *fakeClock
	verifier  *jwtx.Verifier
	totp      *totpx.Engine
	auth      *service.AuthService
	twoFactor *service.TwoFactorService
	accounts  *service.AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSigner(testSigningKey, "stafflane-auth", time.Hour, clock.Now)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifier(testSigningKey, "stafflane-auth", clock.Now)
	require.NoError(t, err)

	totp := &totpx.Engine{Issuer: "StaffLane", Now: clock.Now}

	return &fixture{
		clock:     clock,
		verifier:  verifier,
		totp:      totp,
		auth:      &service.AuthService{Store: st, Signer: signer, Verifier: verifier, TOTP: totp},
		twoFactor: &service.TwoFactorService{Store: st, TOTP: totp},
		accounts:  &service.AccountService{Store: st},
	}
}

// register creates an account and returns nothing; tests drive everything
// through the public service surface.
func (f *fixture) register(t *testing.T, username, password, role string) {
	t.Helper()
	_, err := f.accounts.Register(context.Background(), username, password, role)
	require.NoError(t, err)
}

// enable2FA walks an account through enroll+confirm and returns the secret.
func (f *fixture) enable2FA(t *testing.T, username string) string {
	t.Helper()
	ctx := context.Background()

	enrollment, err := f.twoFactor.Enroll(ctx, username)
	require.NoError(t, err)

	code, err := totpx.CodeAt(enrollment.Secret, f.clock.Now())
	require.NoError(t, err)
	require.NoError(t, f.twoFactor.Confirm(ctx, username, code))

	return enrollment.Secret
}

func TestLoginValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, tc := range []struct{ username, password string }{
		{"", ""},
		{"alice", ""},
		{"", "Secr3t!"},
		{"   ", "Secr3t!"},
	} {
		_, err := f.auth.Login(ctx, tc.username, tc.password)
		require.ErrorIs(t, err, service.ErrValidation)
	}
}

func TestLoginRejectionIsGeneric(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "alice", "Secr3t!", "ROLE_ADMIN")

	_, wrongPassword := f.auth.Login(ctx, "alice", "nope")
	_, unknownUser := f.auth.Login(ctx, "unknown", "anything")

	// Both cases must be byte-identical so callers cannot enumerate usernames.
	require.ErrorIs(t, wrongPassword, service.ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, service.ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestLoginWithoutTwoFactor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "alice", "Secr3t!", "ROLE_ADMIN")

	result, err := f.auth.Login(ctx, "alice", "Secr3t!")
	require.NoError(t, err)
	require.Nil(t, result.Challenge, "2FA-disabled account must never get a pre-auth challenge")
	require.NotNil(t, result.Session)
	require.Equal(t, "alice", result.Session.Username)
	require.Equal(t, "ROLE_ADMIN", result.Session.Role)

	// The minted token is a session token bound to the subject.
	require.True(t, f.verifier.ValidateSession(result.Session.Token, "alice"))
	require.False(t, f.verifier.ValidatePreAuth(result.Session.Token))

	role, err := f.verifier.Role(result.Session.Token)
	require.NoError(t, err)
	require.Equal(t, "ROLE_ADMIN", role)
}

func TestLoginWithTwoFactor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "alice", "Secr3t!", "ROLE_HR")
	f.enable2FA(t, "alice")

	result, err := f.auth.Login(ctx, "alice", "Secr3t!")
	require.NoError(t, err)
	require.Nil(t, result.Session, "2FA-enabled account must never get a session from login alone")
	require.NotNil(t, result.Challenge)
	require.True(t, result.Challenge.TwoFactorRequired)

	// The minted token is a pre-auth token, useless as a session credential.
	require.True(t, f.verifier.ValidatePreAuth(result.Challenge.PreAuthToken))
	require.False(t, f.verifier.ValidateSession(result.Challenge.PreAuthToken, "alice"))
}

func TestVerify2FA(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "alice", "Secr3t!", "ROLE_ADMIN")
	secret := f.enable2FA(t, "alice")

	login := func() string {
		result, err := f.auth.Login(ctx, "alice", "Secr3t!")
		require.NoError(t, err)
		require.NotNil(t, result.Challenge)
		return result.Challenge.PreAuthToken
	}

	t.Run("correct code upgrades to a session", func(t *testing.T) {
		preAuth := login()
		code, err := totpx.CodeAt(secret, f.clock.Now())
		require.NoError(t, err)

		grant, err := f.auth.Verify2FA(ctx, preAuth, code)
		require.NoError(t, err)
		require.Equal(t, "alice", grant.Username)
		require.Equal(t, "ROLE_ADMIN", grant.Role)
		require.True(t, f.verifier.ValidateSession(grant.Token, "alice"))
	})

	t.Run("wrong code is retryable within the window", func(t *testing.T) {
		preAuth := login()

		_, err := f.auth.Verify2FA(ctx, preAuth, "000000")
		require.ErrorIs(t, err, service.ErrInvalidCode)

		// The pre-auth token was not consumed by the failed attempt.
		code, err := totpx.CodeAt(secret, f.clock.Now())
		require.NoError(t, err)
		_, err = f.auth.Verify2FA(ctx, preAuth, code)
		require.NoError(t, err)
	})

	t.Run("expired token fails regardless of code correctness", func(t *testing.T) {
		preAuth := login()
		f.clock.Advance(5 * time.Minute)

		code, err := totpx.CodeAt(secret, f.clock.Now())
		require.NoError(t, err)
		_, err = f.auth.Verify2FA(ctx, preAuth, code)
		require.ErrorIs(t, err, service.ErrInvalidPreAuth)
	})

	t.Run("session token is not a pre-auth token", func(t *testing.T) {
		preAuth := login()
		code, err := totpx.CodeAt(secret, f.clock.Now())
		require.NoError(t, err)
		grant, err := f.auth.Verify2FA(ctx, preAuth, code)
		require.NoError(t, err)

		_, err = f.auth.Verify2FA(ctx, grant.Token, code)
		require.ErrorIs(t, err, service.ErrInvalidPreAuth)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		_, err := f.auth.Verify2FA(ctx, "not-a-token", "123456")
		require.ErrorIs(t, err, service.ErrInvalidPreAuth)
	})

	t.Run("blank input rejected", func(t *testing.T) {
		_, err := f.auth.Verify2FA(ctx, "", "123456")
		require.ErrorIs(t, err, service.ErrValidation)
		_, err = f.auth.Verify2FA(ctx, login(), "")
		require.ErrorIs(t, err, service.ErrValidation)
	})
}

func TestWhoAmI(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "alice", "Secr3t!", "ROLE_ADMIN")

	identity, err := f.auth.WhoAmI(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", identity.Username)
	require.Equal(t, "ROLE_ADMIN", identity.Role)
	require.False(t, identity.TwoFactorEnabled)

	f.enable2FA(t, "alice")

	identity, err = f.auth.WhoAmI(ctx, "alice")
	require.NoError(t, err)
	require.True(t, identity.TwoFactorEnabled)
}
