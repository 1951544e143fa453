// Package totpx implements time-based one-time password enrollment and
// verification (RFC 6238: SHA1, 6 digits, 30 second period).
package totpx

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// secretBytes is the raw secret length: 160 bits, per RFC 4226's
	// recommendation for HMAC-SHA1 secrets.
	secretBytes = 20

	// period is the time-step length in seconds.
	period = 30

	// skew is the accepted drift in time steps on either side of now.
	skew = 1

	digits = otp.DigitsSix
)

// b32 is the RFC 4648 base32 alphabet without padding, the encoding
// authenticator apps expect.
var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Engine generates secrets and verifies codes. Rand and Now are injectable so
// tests can use deterministic randomness and a fixed clock; zero values fall
// back to crypto/rand and time.Now.
type Engine struct {
	Issuer string
	Rand   io.Reader
	Now    func() time.Time
}

func (e *Engine) rand() io.Reader {
	if e.Rand != nil {
		return e.Rand
	}
	return rand.Reader
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// GenerateSecret returns a fresh base32-encoded 160-bit secret. It has no
// side effects; the caller is responsible for persisting it.
func (e *Engine) GenerateSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := io.ReadFull(e.rand(), buf); err != nil {
		return "", fmt.Errorf("totpx: failed to generate secret: %w", err)
	}
	return b32.EncodeToString(buf), nil
}

// EnrollmentURI builds the standard otpauth:// URI for the given account and
// secret, with issuer and account labels URL-escaped. Authenticator apps
// consume this directly or via a QR code.
func (e *Engine) EnrollmentURI(account, secret string) (string, error) {
	raw, err := b32.DecodeString(strings.ToUpper(secret))
	if err != nil {
		return "", fmt.Errorf("totpx: invalid secret: %w", err)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.Issuer,
		AccountName: account,
		Secret:      raw,
		Period:      period,
		Digits:      digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("totpx: failed to build enrollment URI: %w", err)
	}
	return key.URL(), nil
}

// VerifyCode reports whether code matches the secret at the current time step
// or within the +-1 step window. It returns false - never an error - for a
// missing secret or malformed code. Digit comparison inside the library is
// constant-time.
func (e *Engine) VerifyCode(secret, code string) bool {
	secret = strings.TrimSpace(secret)
	code = strings.TrimSpace(code)
	if secret == "" || len(code) != digits.Length() {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	ok, err := totp.ValidateCustom(code, secret, e.now().UTC(), totp.ValidateOpts{
		Period:    period,
		Skew:      skew,
		Digits:    digits,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return ok
}

// CodeAt computes the expected code for a secret at an arbitrary time. Only
// tests should need this.
func CodeAt(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at.UTC(), totp.ValidateOpts{
		Period:    period,
		Skew:      skew,
		Digits:    digits,
		Algorithm: otp.AlgorithmSHA1,
	})
}
