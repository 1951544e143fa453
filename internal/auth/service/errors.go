package service

import "errors"

// Error taxonomy. Unauthorized outcomes carry deliberately generic messages:
// a failed login never reveals whether the username exists or which factor
// failed, and an invalid pre-auth token never reveals whether it was forged,
// malformed or expired.
var (
	// ErrValidation: missing or malformed input (client-request outcome).
	ErrValidation = errors.New("missing required fields")

	// ErrInvalidCredentials: unknown username or wrong password, identical
	// for both cases (unauthorized outcome).
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidCode: a TOTP code that does not verify (unauthorized outcome).
	ErrInvalidCode = errors.New("invalid code")

	// ErrInvalidPreAuth: a pre-auth token that fails verification for any
	// reason (unauthorized outcome).
	ErrInvalidPreAuth = errors.New("invalid or expired preauth")

	// ErrNotInitialized: confirm invoked before enroll (out-of-sequence
	// state, bad-request outcome).
	ErrNotInitialized = errors.New("two-factor not initialized")

	// ErrUsernameTaken: registration with an existing username.
	ErrUsernameTaken = errors.New("username already exists")
)
