package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultSessionTTL is the default lifetime for full session tokens.
	DefaultSessionTTL = time.Hour

	// PreAuthTTL is the fixed lifetime for pre-authorization tokens. These
	// only prove password-stage success and must stay short-lived.
	PreAuthTTL = 5 * time.Minute

	// MinKeyBytes is the minimum signing key length. HS256 keys shorter than
	// the hash output weaken the MAC, so this is a hard startup precondition.
	MinKeyBytes = 32
)

// Claims is the signed payload carried by both token kinds. Session tokens
// carry a role claim and no preAuth marker; pre-auth tokens carry preAuth=true
// and never a role.
type Claims struct {
	jwt.RegisteredClaims

	// Role is the account's role tag (e.g. "ROLE_ADMIN"). Session tokens only.
	Role string `json:"role,omitempty"`

	// PreAuth marks a token that proves password verification only. A token
	// with this set never authorizes role-gated operations.
	PreAuth bool `json:"preAuth,omitempty"`
}

// newClaims builds the registered claim set shared by both kinds.
func newClaims(subject, issuer string, ttl time.Duration, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}
