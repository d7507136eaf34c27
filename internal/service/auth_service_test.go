package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"appforge-web/internal/domain"
	"appforge-web/internal/testutil"
)

func TestSignIn_MissingFields(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"missing email", "", "secret"},
		{"missing password", "user@example.com", ""},
		{"missing both", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := testutil.NewMockIdentityProvider()
			svc := NewAuthService(provider, testutil.NewMockProfileRepository())

			_, err := svc.SignIn(context.Background(), tt.email, tt.password)

			testutil.AssertErrorIs(t, err, domain.ErrMissingCredentials)
			testutil.AssertEqual(t, provider.TotalCalls(), 0)
		})
	}
}

func TestSignIn_Success(t *testing.T) {
	user := testutil.NewTestUser(testutil.WithEmail("user@example.com"))
	sess := testutil.NewTestSession()

	provider := testutil.NewMockIdentityProvider()
	provider.SignInWithPasswordFunc = func(ctx context.Context, email, password string) (*domain.User, *domain.Session, error) {
		if email != "user@example.com" || password != "secret" {
			return nil, nil, &domain.CredentialError{Message: "Invalid login credentials"}
		}
		return user, sess, nil
	}

	svc := NewAuthService(provider, testutil.NewMockProfileRepository())

	result, err := svc.SignIn(context.Background(), "user@example.com", "secret")

	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, result.User.ID, user.ID)
	testutil.AssertEqual(t, result.Session.AccessToken, sess.AccessToken)
}

func TestSignIn_ProviderRejection(t *testing.T) {
	provider := testutil.NewMockIdentityProvider()
	provider.SignInWithPasswordFunc = func(ctx context.Context, email, password string) (*domain.User, *domain.Session, error) {
		return nil, nil, &domain.CredentialError{Message: "Invalid login credentials"}
	}

	svc := NewAuthService(provider, testutil.NewMockProfileRepository())

	_, err := svc.SignIn(context.Background(), "user@example.com", "wrong")

	var credErr *domain.CredentialError
	if !errors.As(err, &credErr) {
		t.Fatalf("expected CredentialError, got %v", err)
	}
	testutil.AssertEqual(t, credErr.Message, "Invalid login credentials")
}

func TestSignUp_Success(t *testing.T) {
	user := testutil.NewTestUser()
	sess := testutil.NewTestSession()

	provider := testutil.NewMockIdentityProvider()
	provider.AdminCreateUserFunc = func(ctx context.Context, email, password string, metadata map[string]any) (*domain.User, error) {
		if metadata["first_name"] != "Ada" {
			t.Errorf("expected first_name metadata, got %v", metadata)
		}
		return user, nil
	}
	provider.SignInWithPasswordFunc = func(ctx context.Context, email, password string) (*domain.User, *domain.Session, error) {
		return user, sess, nil
	}

	profiles := testutil.NewMockProfileRepository()
	svc := NewAuthService(provider, profiles)

	result, err := svc.SignUp(context.Background(), "new@example.com", "secret", "Ada")

	testutil.AssertNoError(t, err)
	testutil.AssertNil(t, result.SignInErr)
	testutil.AssertNotNil(t, result.Session)
	testutil.AssertEqual(t, provider.CreateCalls, 1)
	testutil.AssertEqual(t, provider.SignInCalls, 1)

	// The profile row is provisioned for the new account.
	profile, err := profiles.GetByUserID(context.Background(), user.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, profile.FirstName, "Ada")
	testutil.AssertEqual(t, profile.PlanTier, domain.PlanFree)
}

func TestSignUp_AutoSignInFails_PartialSuccess(t *testing.T) {
	user := testutil.NewTestUser()

	provider := testutil.NewMockIdentityProvider()
	provider.AdminCreateUserFunc = func(ctx context.Context, email, password string, metadata map[string]any) (*domain.User, error) {
		return user, nil
	}
	provider.SignInWithPasswordFunc = func(ctx context.Context, email, password string) (*domain.User, *domain.Session, error) {
		return nil, nil, &domain.CredentialError{Message: "Email not confirmed"}
	}

	svc := NewAuthService(provider, testutil.NewMockProfileRepository())

	result, err := svc.SignUp(context.Background(), "new@example.com", "secret", "")

	// Account creation succeeded, so the overall operation succeeds.
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, result.User.ID, user.ID)
	testutil.AssertNil(t, result.Session)
	testutil.AssertError(t, result.SignInErr)
}

func TestSignUp_CreateFails(t *testing.T) {
	provider := testutil.NewMockIdentityProvider()
	provider.AdminCreateUserFunc = func(ctx context.Context, email, password string, metadata map[string]any) (*domain.User, error) {
		return nil, &domain.CredentialError{Message: "User already registered"}
	}

	svc := NewAuthService(provider, testutil.NewMockProfileRepository())

	_, err := svc.SignUp(context.Background(), "dup@example.com", "secret", "")

	testutil.AssertError(t, err)
	testutil.AssertEqual(t, provider.SignInCalls, 0)
}

func TestSignUp_ProfileProvisioningFailureIsSwallowed(t *testing.T) {
	user := testutil.NewTestUser()
	sess := testutil.NewTestSession()

	provider := testutil.NewMockIdentityProvider()
	provider.AdminCreateUserFunc = func(ctx context.Context, email, password string, metadata map[string]any) (*domain.User, error) {
		return user, nil
	}
	provider.SignInWithPasswordFunc = func(ctx context.Context, email, password string) (*domain.User, *domain.Session, error) {
		return user, sess, nil
	}

	profiles := testutil.NewMockProfileRepository()
	profiles.CreateFunc = func(ctx context.Context, profile *domain.Profile) error {
		return fmt.Errorf("connection refused")
	}

	svc := NewAuthService(provider, profiles)

	result, err := svc.SignUp(context.Background(), "new@example.com", "secret", "")

	testutil.AssertNoError(t, err)
	testutil.AssertNotNil(t, result.Session)
}

func TestCurrentUser_NoTokens(t *testing.T) {
	provider := testutil.NewMockIdentityProvider()
	svc := NewAuthService(provider, testutil.NewMockProfileRepository())

	result, err := svc.CurrentUser(context.Background(), "", "")

	testutil.AssertNoError(t, err)
	testutil.AssertFalse(t, result.Authenticated, "no tokens means anonymous")
	testutil.AssertEqual(t, provider.TotalCalls(), 0)
}

func TestCurrentUser_ValidAccessToken(t *testing.T) {
	user := testutil.NewTestUser()

	provider := testutil.NewMockIdentityProvider()
	provider.GetUserFunc = func(ctx context.Context, accessToken string) (*domain.User, error) {
		if accessToken != "good-token" {
			return nil, &domain.CredentialError{Message: "invalid JWT"}
		}
		return user, nil
	}

	profiles := testutil.NewMockProfileRepository()
	profiles.Profiles[user.ID] = testutil.NewTestProfile(testutil.WithProfileUserID(user.ID))

	svc := NewAuthService(provider, profiles)

	result, err := svc.CurrentUser(context.Background(), "good-token", "refresh")

	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, result.Authenticated, "valid access token authenticates")
	testutil.AssertEqual(t, result.User.ID, user.ID)
	testutil.AssertNotNil(t, result.Profile)
	testutil.AssertNil(t, result.Session) // no refresh happened
}

func TestCurrentUser_Idempotent(t *testing.T) {
	user := testutil.NewTestUser()

	provider := testutil.NewMockIdentityProvider()
	provider.GetUserFunc = func(ctx context.Context, accessToken string) (*domain.User, error) {
		return user, nil
	}

	profiles := testutil.NewMockProfileRepository()
	profiles.Profiles[user.ID] = testutil.NewTestProfile(testutil.WithProfileUserID(user.ID))

	svc := NewAuthService(provider, profiles)

	first, err := svc.CurrentUser(context.Background(), "token", "refresh")
	testutil.AssertNoError(t, err)
	second, err := svc.CurrentUser(context.Background(), "token", "refresh")
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, first.Authenticated, second.Authenticated)
	testutil.AssertEqual(t, first.User.ID, second.User.ID)
}

func TestCurrentUser_ProfileFetchFails_SoftDegradation(t *testing.T) {
	user := testutil.NewTestUser()

	provider := testutil.NewMockIdentityProvider()
	provider.GetUserFunc = func(ctx context.Context, accessToken string) (*domain.User, error) {
		return user, nil
	}

	profiles := testutil.NewMockProfileRepository()
	profiles.GetByUserIDFunc = func(ctx context.Context, userID string) (*domain.Profile, error) {
		return nil, fmt.Errorf("connection refused")
	}

	svc := NewAuthService(provider, profiles)

	result, err := svc.CurrentUser(context.Background(), "token", "")

	// Profile failure must not mask the authenticated identity.
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, result.Authenticated, "profile failure is not an auth failure")
	testutil.AssertEqual(t, result.User.ID, user.ID)
	testutil.AssertNil(t, result.Profile)
	testutil.AssertError(t, result.ProfileErr)
}

func TestResolve_StaleAccessTokenFallsBackToRefresh(t *testing.T) {
	user := testutil.NewTestUser()
	fresh := testutil.NewTestSession()

	provider := testutil.NewMockIdentityProvider()
	provider.GetUserFunc = func(ctx context.Context, accessToken string) (*domain.User, error) {
		return nil, &domain.CredentialError{Message: "JWT expired"}
	}
	provider.RefreshSessionFunc = func(ctx context.Context, refreshToken string) (*domain.User, *domain.Session, error) {
		if refreshToken != "still-good" {
			return nil, nil, &domain.CredentialError{Message: "refresh token revoked"}
		}
		return user, fresh, nil
	}

	svc := NewAuthService(provider, testutil.NewMockProfileRepository())

	resolved, refreshed, err := svc.Resolve(context.Background(), "expired", "still-good")

	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, resolved.ID, user.ID)
	testutil.AssertNotNil(t, refreshed)
	testutil.AssertEqual(t, refreshed.AccessToken, fresh.AccessToken)
}

func TestResolve_RevokedRefreshTokenIsAnonymous(t *testing.T) {
	provider := testutil.NewMockIdentityProvider()
	provider.RefreshSessionFunc = func(ctx context.Context, refreshToken string) (*domain.User, *domain.Session, error) {
		return nil, nil, &domain.CredentialError{Message: "refresh token revoked"}
	}

	svc := NewAuthService(provider, testutil.NewMockProfileRepository())

	user, refreshed, err := svc.Resolve(context.Background(), "", "revoked")

	testutil.AssertNoError(t, err)
	testutil.AssertNil(t, user)
	testutil.AssertNil(t, refreshed)
}

func TestResolve_ProviderOutagePropagates(t *testing.T) {
	provider := testutil.NewMockIdentityProvider()
	provider.GetUserFunc = func(ctx context.Context, accessToken string) (*domain.User, error) {
		return nil, fmt.Errorf("%w: connection refused", domain.ErrProviderUnavailable)
	}

	svc := NewAuthService(provider, testutil.NewMockProfileRepository())

	_, _, err := svc.Resolve(context.Background(), "token", "refresh")

	testutil.AssertErrorIs(t, err, domain.ErrProviderUnavailable)
}
