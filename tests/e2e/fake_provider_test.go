//go:build e2e
// +build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// fakeIdentityProvider imitates the slice of the hosted identity
// provider's REST API the application uses: the password and refresh
// grants, the user endpoint and the admin user-creation channel. Tokens
// are opaque random strings kept in memory.
type fakeIdentityProvider struct {
	mu       sync.Mutex
	users    map[string]*fakeUser // by email
	access   map[string]*fakeUser // by access token
	refresh  map[string]*fakeUser // by refresh token
	revoked  map[string]bool      // revoked access tokens
	downMode bool
}

type fakeUser struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
	password string
}

func newFakeIdentityProvider() *fakeIdentityProvider {
	return &fakeIdentityProvider{
		users:   make(map[string]*fakeUser),
		access:  make(map[string]*fakeUser),
		refresh: make(map[string]*fakeUser),
		revoked: make(map[string]bool),
	}
}

// SetDown makes every endpoint answer 503 until re-enabled.
func (f *fakeIdentityProvider) SetDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downMode = down
}

// RevokeAccessToken invalidates an issued access token, forcing the
// application through the refresh grant.
func (f *fakeIdentityProvider) RevokeAccessToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[token] = true
}

func (f *fakeIdentityProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	down := f.downMode
	f.mu.Unlock()
	if down {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	switch {
	case r.URL.Path == "/auth/v1/token" && r.Method == http.MethodPost:
		f.handleToken(w, r)
	case r.URL.Path == "/auth/v1/user" && r.Method == http.MethodGet:
		f.handleGetUser(w, r)
	case r.URL.Path == "/auth/v1/admin/users" && r.Method == http.MethodPost:
		f.handleAdminCreate(w, r)
	case r.URL.Path == "/auth/v1/health":
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeIdentityProvider) handleToken(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Query().Get("grant_type") {
	case "password":
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		user, ok := f.users[body.Email]
		if !ok || user.password != body.Password {
			writeProviderError(w, http.StatusBadRequest, "Invalid login credentials")
			return
		}
		f.issueSession(w, user)

	case "refresh_token":
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		user, ok := f.refresh[body.RefreshToken]
		if !ok {
			writeProviderError(w, http.StatusBadRequest, "Invalid Refresh Token")
			return
		}
		// Refresh tokens are single-use.
		delete(f.refresh, body.RefreshToken)
		f.issueSession(w, user)

	default:
		writeProviderError(w, http.StatusBadRequest, "unsupported grant type")
	}
}

func (f *fakeIdentityProvider) handleGetUser(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	user, ok := f.access[token]
	if !ok || f.revoked[token] {
		writeProviderError(w, http.StatusUnauthorized, "invalid JWT")
		return
	}
	json.NewEncoder(w).Encode(user)
}

func (f *fakeIdentityProvider) handleAdminCreate(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer test-service-key" {
		writeProviderError(w, http.StatusUnauthorized, "invalid service key")
		return
	}

	var body struct {
		Email    string         `json:"email"`
		Password string         `json:"password"`
		Metadata map[string]any `json:"user_metadata"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	if _, exists := f.users[body.Email]; exists {
		writeProviderError(w, http.StatusUnprocessableEntity, "User already registered")
		return
	}

	user := &fakeUser{
		ID:       uuid.New().String(),
		Email:    body.Email,
		Metadata: body.Metadata,
		password: body.Password,
	}
	f.users[body.Email] = user

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

// issueSession mints a token pair; callers hold the lock.
func (f *fakeIdentityProvider) issueSession(w http.ResponseWriter, user *fakeUser) {
	accessToken := "access-" + uuid.New().String()
	refreshToken := "refresh-" + uuid.New().String()
	f.access[accessToken] = user
	f.refresh[refreshToken] = user

	json.NewEncoder(w).Encode(map[string]any{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    3600,
		"user":          user,
	})
}

func writeProviderError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"msg": msg})
}
