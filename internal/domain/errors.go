package domain

import "errors"

var (
	// ErrMissingCredentials is returned before any provider call when the
	// caller omitted the email or the password. Never retried.
	ErrMissingCredentials = errors.New("email and password are required")

	// ErrProviderUnavailable wraps transport failures talking to the
	// identity provider. Handlers surface it as a generic 500; the detail
	// stays in the server logs.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// CredentialError is a rejection from the identity provider: bad password,
// unknown account, revoked refresh token, duplicate sign-up. Message is the
// provider's own pre-sanitized, user-facing string and is safe to return.
type CredentialError struct {
	Message string
}

func (e *CredentialError) Error() string {
	return e.Message
}
