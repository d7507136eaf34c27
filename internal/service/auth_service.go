package service

import (
	"context"
	"errors"
	"log/slog"

	"appforge-web/internal/domain"
)

// AuthService orchestrates the credential exchanges with the identity
// provider and the profile reads against the application database. It
// holds no session state of its own; every call re-derives everything
// from its arguments.
type AuthService struct {
	provider domain.IdentityProvider
	profiles domain.ProfileRepository
}

func NewAuthService(provider domain.IdentityProvider, profiles domain.ProfileRepository) *AuthService {
	return &AuthService{
		provider: provider,
		profiles: profiles,
	}
}

// SignInResult is a successful credential exchange.
type SignInResult struct {
	User    *domain.User
	Session *domain.Session
}

// SignIn exchanges credentials for a session. Input is validated before
// any network call.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}

	user, sess, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}

	return &SignInResult{User: user, Session: sess}, nil
}

// SignUpResult reports an account creation. SignInErr set with a nil
// Session means the account exists but the automatic sign-in failed: the
// caller is registered but not logged in and must sign in manually.
type SignUpResult struct {
	User      *domain.User
	Session   *domain.Session
	SignInErr error
}

// SignUp creates an account through the provider's service-role channel,
// provisions the application profile row, then signs the new account in
// with its own credentials.
func (s *AuthService) SignUp(ctx context.Context, email, password, firstName string) (*SignUpResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}

	var metadata map[string]any
	if firstName != "" {
		metadata = map[string]any{"first_name": firstName}
	}

	user, err := s.provider.AdminCreateUser(ctx, email, password, metadata)
	if err != nil {
		return nil, err
	}

	s.provisionProfile(ctx, user.ID, firstName)

	signedIn, sess, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		// The account exists; report success without a session.
		return &SignUpResult{User: user, SignInErr: err}, nil
	}

	return &SignUpResult{User: signedIn, Session: sess}, nil
}

// provisionProfile creates the application-owned profile row for a new
// account. Failure is logged and swallowed: the account already exists at
// the provider and the row can be backfilled later.
func (s *AuthService) provisionProfile(ctx context.Context, userID, firstName string) {
	if s.profiles == nil {
		return
	}

	profile := &domain.Profile{
		UserID:             userID,
		FirstName:          firstName,
		PlanTier:           domain.PlanFree,
		SubscriptionStatus: "inactive",
	}
	err := s.profiles.Create(ctx, profile)
	if err != nil && !errors.Is(err, domain.ErrProfileExists) {
		slog.Warn("profile provisioning failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
	}
}

// CurrentUserResult is the state of one request's session. ProfileErr set
// with Authenticated true means the identity resolved but the profile
// fetch failed; callers must not treat that as an authentication failure.
type CurrentUserResult struct {
	Authenticated bool
	User          *domain.User
	Profile       *domain.Profile
	Session       *domain.Session // non-nil only when resolution minted fresh tokens
	ProfileErr    error
}

// CurrentUser reconstructs the session from the raw cookie tokens and
// fetches the matching profile row.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken, refreshToken string) (*CurrentUserResult, error) {
	user, refreshed, err := s.Resolve(ctx, accessToken, refreshToken)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &CurrentUserResult{}, nil
	}

	result := &CurrentUserResult{
		Authenticated: true,
		User:          user,
		Session:       refreshed,
	}

	profile, err := s.profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		result.ProfileErr = err
		return result, nil
	}

	result.Profile = profile
	return result, nil
}

// Resolve re-derives the authenticated user from the raw cookie tokens.
// The access token is tried first; a stale or missing access token falls
// back to the refresh grant, whose fresh session is returned so the
// caller can re-issue cookies. A nil user with a nil error is anonymous:
// an absent or expired session is an expected state, not a fault.
func (s *AuthService) Resolve(ctx context.Context, accessToken, refreshToken string) (*domain.User, *domain.Session, error) {
	var credErr *domain.CredentialError

	if accessToken != "" {
		user, err := s.provider.GetUser(ctx, accessToken)
		if err == nil {
			return user, nil, nil
		}
		if !errors.As(err, &credErr) {
			return nil, nil, err
		}
		// Stale access token: fall through to the refresh grant.
	}

	if refreshToken == "" {
		return nil, nil, nil
	}

	user, sess, err := s.provider.RefreshSession(ctx, refreshToken)
	if err != nil {
		if errors.As(err, &credErr) {
			// Refresh token expired or revoked.
			return nil, nil, nil
		}
		return nil, nil, err
	}

	return user, sess, nil
}
