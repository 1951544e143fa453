package domain

import "time"

// Account is a staff login account. TwoFactorSecret is present only after an
// enrollment generated it; TwoFactorEnabled flips to true only after a
// successful confirmation against that secret.
type Account struct {
	ID               string
	Username         string
	PasswordHash     string  // argon2id encoded
	Role             string  // e.g. ROLE_ADMIN, ROLE_HR, ROLE_EMPLOYEE
	TwoFactorEnabled bool
	TwoFactorSecret  *string // TOTP secret (nullable, base32 encoded)
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Identity is the authenticated self-view returned by whoami.
type Identity struct {
	Username         string `json:"username"`
	Role             string `json:"role"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled"`
}
