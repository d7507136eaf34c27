package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"appforge-web/internal/domain"
	"appforge-web/internal/observability"
)

// Client talks to the hosted identity provider's REST API. It is
// constructed once in main and injected wherever sessions are minted or
// resolved; there is no package-level instance.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
}

// NewClient creates an identity provider client. anonKey authenticates
// end-user flows (sign-in, refresh, get-user); serviceKey authenticates
// the administrative user-creation channel.
func NewClient(baseURL, anonKey, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// tokenResponse is the provider's shape for both the password and the
// refresh grant.
type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"` // unix seconds, optional
	User         *domain.User `json:"user"`
}

func (tr *tokenResponse) session() *domain.Session {
	expiresAt := time.Unix(tr.ExpiresAt, 0)
	if tr.ExpiresAt == 0 {
		expiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return &domain.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresIn:    tr.ExpiresIn,
		ExpiresAt:    expiresAt,
	}
}

// SignInWithPassword performs the password grant.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.User, *domain.Session, error) {
	body := map[string]string{"email": email, "password": password}

	var tr tokenResponse
	err := c.call(ctx, "sign_in", http.MethodPost, "/auth/v1/token?grant_type=password", c.anonKey, body, &tr)
	if err != nil {
		return nil, nil, err
	}
	return tr.User, tr.session(), nil
}

// RefreshSession exchanges a refresh token for a fresh session. The
// provider rotates the refresh token, so callers must re-issue cookies
// from the returned session.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*domain.User, *domain.Session, error) {
	body := map[string]string{"refresh_token": refreshToken}

	var tr tokenResponse
	err := c.call(ctx, "refresh", http.MethodPost, "/auth/v1/token?grant_type=refresh_token", c.anonKey, body, &tr)
	if err != nil {
		return nil, nil, err
	}
	return tr.User, tr.session(), nil
}

// GetUser resolves the user record behind an access token. A rejected
// token surfaces as a *domain.CredentialError.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*domain.User, error) {
	var user domain.User
	err := c.call(ctx, "get_user", http.MethodGet, "/auth/v1/user", accessToken, nil, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AdminCreateUser creates an account via the service-role channel. The
// email is marked confirmed so the immediate follow-up sign-in works.
func (c *Client) AdminCreateUser(ctx context.Context, email, password string, metadata map[string]any) (*domain.User, error) {
	body := map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
	}
	if len(metadata) > 0 {
		body["user_metadata"] = metadata
	}

	var user domain.User
	err := c.call(ctx, "admin_create_user", http.MethodPost, "/auth/v1/admin/users", c.serviceKey, body, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Health pings the provider's health endpoint. Used by the readiness
// probe only.
func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, "health", http.MethodGet, "/auth/v1/health", c.anonKey, nil, nil)
}

// call performs one provider request. Transport failures and 5xx map to
// domain.ErrProviderUnavailable; 4xx map to *domain.CredentialError
// carrying the provider's message. No retries: a rejected credential
// never succeeds on a second attempt, and the browser retries the rest.
func (c *Client) call(ctx context.Context, operation, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.ProviderRequestDuration.WithLabelValues(operation, "transport_error").Observe(time.Since(start).Seconds())
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	observability.ProviderRequestDuration.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: invalid response body: %v", domain.ErrProviderUnavailable, err)
		}
		return nil

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &domain.CredentialError{Message: parseErrorMessage(resp.Body)}

	default:
		return fmt.Errorf("%w: unexpected status code %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}
}

// parseErrorMessage extracts the human-readable message from a provider
// error body. The provider has used several field names over time.
func parseErrorMessage(body io.Reader) string {
	var payload struct {
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		Error            string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return "Invalid credentials"
	}

	for _, msg := range []string{payload.ErrorDescription, payload.Msg, payload.Message, payload.Error} {
		if msg != "" {
			return msg
		}
	}
	return "Invalid credentials"
}
