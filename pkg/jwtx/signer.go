package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrWeakKey reports a signing key below the minimum entropy bound.
var ErrWeakKey = errors.New("jwtx: signing key must be at least 32 bytes")

// Signer mints the two token kinds with a process-wide HMAC key.
type Signer struct {
	key        []byte
	issuer     string
	sessionTTL time.Duration
	now        func() time.Time
}

// NewSigner creates an HS256 signer. The key length check is a hard
// precondition: callers must refuse to start on ErrWeakKey rather than fall
// back to a default. A nil now defaults to time.Now.
func NewSigner(key []byte, issuer string, sessionTTL time.Duration, now func() time.Time) (*Signer, error) {
	if len(key) < MinKeyBytes {
		return nil, ErrWeakKey
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Signer{key: key, issuer: issuer, sessionTTL: sessionTTL, now: now}, nil
}

// Session mints a full session token carrying the subject and role claim,
// expiring after the configured session TTL.
func (s *Signer) Session(subject, role string) (string, error) {
	claims := Claims{
		RegisteredClaims: newClaims(subject, s.issuer, s.sessionTTL, s.now().UTC()),
		Role:             role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// PreAuth mints a short-lived pre-authorization token. It carries the
// preAuth marker and no role claim, so it can never be mistaken for a
// session credential.
func (s *Signer) PreAuth(subject string) (string, error) {
	claims := Claims{
		RegisteredClaims: newClaims(subject, s.issuer, PreAuthTTL, s.now().UTC()),
		PreAuth:          true,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// SessionTTL exposes the configured session token lifetime.
func (s *Signer) SessionTTL() time.Duration { return s.sessionTTL }
