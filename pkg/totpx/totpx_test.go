package totpx_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stafflane/stafflane/pkg/totpx"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	t.Parallel()

	t.Run("deterministic randomness yields deterministic secret", func(t *testing.T) {
		e := &totpx.Engine{Issuer: "StaffLane", Rand: bytes.NewReader(make([]byte, 20))}
		secret, err := e.GenerateSecret()
		require.NoError(t, err)
		// 20 zero bytes -> 32 base32 'A' characters, no padding.
		require.Equal(t, "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", secret)
	})

	t.Run("fresh secrets differ", func(t *testing.T) {
		e := &totpx.Engine{Issuer: "StaffLane"}
		a, err := e.GenerateSecret()
		require.NoError(t, err)
		b, err := e.GenerateSecret()
		require.NoError(t, err)
		require.Len(t, a, 32)
		require.NotEqual(t, a, b)
	})

	t.Run("exhausted randomness surfaces an error", func(t *testing.T) {
		e := &totpx.Engine{Issuer: "StaffLane", Rand: bytes.NewReader([]byte{1, 2, 3})}
		_, err := e.GenerateSecret()
		require.Error(t, err)
	})
}

func TestEnrollmentURI(t *testing.T) {
	t.Parallel()

	e := &totpx.Engine{Issuer: "StaffLane HR"}
	secret, err := e.GenerateSecret()
	require.NoError(t, err)

	uri, err := e.EnrollmentURI("alice smith", secret)
	require.NoError(t, err)

	require.Contains(t, uri, "otpauth://totp/")
	require.Contains(t, uri, "secret="+secret)
	require.Contains(t, uri, "algorithm=SHA1")
	require.Contains(t, uri, "digits=6")
	require.Contains(t, uri, "period=30")
	// Labels must be URL-escaped.
	require.Contains(t, uri, "StaffLane%20HR")
	require.Contains(t, uri, "alice%20smith")
	require.NotContains(t, uri, "alice smith")

	t.Run("rejects non-base32 secret", func(t *testing.T) {
		_, err := e.EnrollmentURI("alice", "not!base32")
		require.Error(t, err)
	})
}

func TestVerifyCodeWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 15, 0, time.UTC)
	e := &totpx.Engine{Issuer: "StaffLane", Now: func() time.Time { return now }}

	secret, err := e.GenerateSecret()
	require.NoError(t, err)

	step := 30 * time.Second
	for _, tc := range []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{"current step", 0, true},
		{"one step behind", -step, true},
		{"one step ahead", step, true},
		{"two steps behind", -2 * step, false},
		{"two steps ahead", 2 * step, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			code, err := totpx.CodeAt(secret, now.Add(tc.offset))
			require.NoError(t, err)
			require.Equal(t, tc.want, e.VerifyCode(secret, code))
		})
	}
}

func TestVerifyCodeRejectsBadInput(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 15, 0, time.UTC)
	e := &totpx.Engine{Issuer: "StaffLane", Now: func() time.Time { return now }}

	secret, err := e.GenerateSecret()
	require.NoError(t, err)
	code, err := totpx.CodeAt(secret, now)
	require.NoError(t, err)

	require.False(t, e.VerifyCode("", code), "missing secret")
	require.False(t, e.VerifyCode(secret, ""), "missing code")
	require.False(t, e.VerifyCode(secret, "12345"), "too short")
	require.False(t, e.VerifyCode(secret, "1234567"), "too long")
	require.False(t, e.VerifyCode(secret, "12345a"), "non-digit")
	require.False(t, e.VerifyCode("not!base32", code), "malformed secret")

	// Whitespace around a valid code is tolerated.
	require.True(t, e.VerifyCode(secret, " "+code+" "))
}
