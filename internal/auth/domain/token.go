package domain

// SessionGrant is returned once authentication fully completes, either
// directly from login (no second factor) or after a successful code check.
type SessionGrant struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// PreAuthChallenge is returned when the password checked out but a second
// factor is still required. The pre-auth token authorizes nothing beyond the
// code-verification step.
type PreAuthChallenge struct {
	TwoFactorRequired bool   `json:"twoFactorRequired"` // always true
	PreAuthToken      string `json:"preAuthToken"`
}

// LoginResult is the union of the two successful login outcomes; exactly one
// field is non-nil.
type LoginResult struct {
	Session   *SessionGrant
	Challenge *PreAuthChallenge
}
