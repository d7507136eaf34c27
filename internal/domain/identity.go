package domain

import "context"

// IdentityProvider is the slice of the hosted auth API this application
// consumes. Credential verification, password hashing and session storage
// all happen on the provider's side; these calls just exchange tokens.
type IdentityProvider interface {
	// SignInWithPassword exchanges credentials for a user and a session.
	SignInWithPassword(ctx context.Context, email, password string) (*User, *Session, error)

	// RefreshSession exchanges a refresh token for a fresh session.
	RefreshSession(ctx context.Context, refreshToken string) (*User, *Session, error)

	// GetUser resolves the user behind a bearer access token.
	GetUser(ctx context.Context, accessToken string) (*User, error)

	// AdminCreateUser creates an account through the service-role channel,
	// with the email pre-confirmed. The new user is not signed in.
	AdminCreateUser(ctx context.Context, email, password string, metadata map[string]any) (*User, error)
}
