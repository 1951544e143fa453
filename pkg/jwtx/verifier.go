package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken folds every verification failure - malformed input, bad
// signature, wrong algorithm, expiry, issuer mismatch - into one value so
// callers cannot distinguish a forged token from an expired one.
var ErrInvalidToken = errors.New("jwtx: invalid token")

// Kind tags the two structurally distinct token kinds.
type Kind int

const (
	// KindSession is a full bearer credential carrying a role claim.
	KindSession Kind = iota + 1

	// KindPreAuth proves password-stage success only.
	KindPreAuth
)

// Token is the verified, classified view of a raw token. Callers match on
// Kind instead of invoking separately named validators.
type Token struct {
	Kind      Kind
	Subject   string
	Role      string // empty for KindPreAuth
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Verifier validates raw tokens against the shared HMAC key and classifies
// them by kind.
type Verifier struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// NewVerifier creates an HS256 verifier. The same key precondition as
// NewSigner applies. A nil now defaults to time.Now.
func NewVerifier(key []byte, issuer string, now func() time.Time) (*Verifier, error) {
	if len(key) < MinKeyBytes {
		return nil, ErrWeakKey
	}
	if now == nil {
		now = time.Now
	}
	return &Verifier{key: key, issuer: issuer, now: now}, nil
}

// Verify parses and validates a raw token and returns its tagged form. Any
// failure yields ErrInvalidToken; Verify never reports why.
func (v *Verifier) Verify(raw string) (Token, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return v.now().UTC() }),
	)

	var claims Claims
	token, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil || !token.Valid {
		return Token{}, ErrInvalidToken
	}

	if v.issuer != "" && claims.Issuer != v.issuer {
		return Token{}, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return Token{}, ErrInvalidToken
	}

	// The library treats a token at its exact expiry instant as live; we
	// treat the expiry instant itself as expired.
	if !v.now().UTC().Before(claims.ExpiresAt.Time) {
		return Token{}, ErrInvalidToken
	}

	out := Token{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}

	if claims.PreAuth {
		out.Kind = KindPreAuth
	} else {
		out.Kind = KindSession
		out.Role = claims.Role
	}
	return out, nil
}

// ValidateSession reports whether raw is a live session token bound to
// expectedSubject.
func (v *Verifier) ValidateSession(raw, expectedSubject string) bool {
	tok, err := v.Verify(raw)
	if err != nil {
		return false
	}
	return tok.Kind == KindSession && expectedSubject != "" && tok.Subject == expectedSubject
}

// ValidatePreAuth reports whether raw is a live pre-authorization token.
func (v *Verifier) ValidatePreAuth(raw string) bool {
	tok, err := v.Verify(raw)
	if err != nil {
		return false
	}
	return tok.Kind == KindPreAuth
}

// Subject extracts the subject claim from a valid token of either kind.
func (v *Verifier) Subject(raw string) (string, error) {
	tok, err := v.Verify(raw)
	if err != nil {
		return "", err
	}
	return tok.Subject, nil
}

// Role extracts the role claim from a valid session token. Pre-auth tokens
// have no role; Verify already strips it for them.
func (v *Verifier) Role(raw string) (string, error) {
	tok, err := v.Verify(raw)
	if err != nil {
		return "", err
	}
	return tok.Role, nil
}
