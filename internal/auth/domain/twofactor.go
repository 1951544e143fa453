package domain

// TwoFactorEnrollment carries a freshly generated pending secret and the
// otpauth:// URI an authenticator app consumes. Shown once; only the secret
// is persisted.
type TwoFactorEnrollment struct {
	Secret        string `json:"secret"`
	EnrollmentURI string `json:"otpAuthUrl"`
}
