package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"appforge-web/internal/domain"
	"appforge-web/internal/observability"
	"appforge-web/internal/service"
	"appforge-web/internal/session"
)

// Fixed user-safe message for provider and database failures. Detail goes
// to the server log only.
const genericErrorMessage = "Something went wrong. Please try again."

// AuthHandler handles the /api/auth endpoints
type AuthHandler struct {
	authService   *service.AuthService
	secureCookies bool
}

// NewAuthHandler creates a new authentication handler. secureCookies
// should be true in production deployments behind HTTPS.
func NewAuthHandler(authService *service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
	}
}

// SignInRequest represents a sign-in request body
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest represents a sign-up request body
type SignUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
}

// SessionPayload is the session metadata returned to the browser. The
// tokens themselves travel only in the cookies.
type SessionPayload struct {
	ExpiresAt int64 `json:"expires_at"`
	ExpiresIn int   `json:"expires_in"`
}

// SignInResponse represents a successful sign-in
type SignInResponse struct {
	User    *domain.User    `json:"user"`
	Session *SessionPayload `json:"session"`
}

// SignUpResponse represents an account creation. SignInError is set, and
// Session omitted, when the account exists but the automatic sign-in
// failed; the caller must branch to a manual login.
type SignUpResponse struct {
	User        *domain.User    `json:"user"`
	Session     *SessionPayload `json:"session,omitempty"`
	SignInError string          `json:"signInError,omitempty"`
}

// UserResponse represents the current session state
type UserResponse struct {
	Authenticated bool            `json:"authenticated"`
	User          *domain.User    `json:"user"`
	Profile       *domain.Profile `json:"profile"`
	Error         string          `json:"error,omitempty"`
}

// SignIn handles POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		observability.SignInsTotal.WithLabelValues(outcomeLabel(err)).Inc()
		h.writeAuthError(w, r, err, http.StatusUnauthorized)
		return
	}

	if err := session.Write(w, result.Session, h.secureCookies); err != nil {
		observability.SignInsTotal.WithLabelValues("error").Inc()
		slog.ErrorContext(r.Context(), "sign-in returned incomplete session",
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, genericErrorMessage)
		return
	}

	observability.SignInsTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, SignInResponse{
		User:    result.User,
		Session: sessionPayload(result.Session),
	})
}

// SignUp handles POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.SignUp(r.Context(), req.Email, req.Password, req.FirstName)
	if err != nil {
		observability.SignUpsTotal.WithLabelValues(outcomeLabel(err)).Inc()
		// Provider rejections here are bad input (e.g. already registered),
		// not bad credentials.
		h.writeAuthError(w, r, err, http.StatusBadRequest)
		return
	}

	if result.SignInErr != nil {
		// Registered but not logged in: 201 without cookies.
		observability.SignUpsTotal.WithLabelValues("partial").Inc()
		writeJSON(w, http.StatusCreated, SignUpResponse{
			User:        result.User,
			SignInError: result.SignInErr.Error(),
		})
		return
	}

	if err := session.Write(w, result.Session, h.secureCookies); err != nil {
		observability.SignUpsTotal.WithLabelValues("error").Inc()
		slog.ErrorContext(r.Context(), "sign-up returned incomplete session",
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, genericErrorMessage)
		return
	}

	observability.SignUpsTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusCreated, SignUpResponse{
		User:    result.User,
		Session: sessionPayload(result.Session),
	})
}

// User handles GET /api/auth/user. It reads the cookie pair, resolves the
// session with the provider and joins the profile row. No cookies are
// re-issued here; that is the route guard's job on page navigations.
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	accessToken, refreshToken := session.ReadTokens(r)

	result, err := h.authService.CurrentUser(r.Context(), accessToken, refreshToken)
	if err != nil {
		slog.ErrorContext(r.Context(), "session resolution failed",
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, genericErrorMessage)
		return
	}

	if !result.Authenticated {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"authenticated": false,
			"user":          nil,
		})
		return
	}

	if result.ProfileErr != nil {
		// Authenticated identity is still honored; only the profile-backed
		// data is unavailable.
		slog.ErrorContext(r.Context(), "profile fetch failed",
			slog.String("user_id", result.User.ID),
			slog.String("error", result.ProfileErr.Error()))
		writeJSON(w, http.StatusInternalServerError, UserResponse{
			Authenticated: true,
			User:          result.User,
			Error:         "Failed to load profile",
		})
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{
		Authenticated: true,
		User:          result.User,
		Profile:       result.Profile,
	})
}

// SignOut handles POST /api/auth/signout by expiring both session
// cookies. The provider's session store is left to age out on its own.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	session.Clear(w, h.secureCookies)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// writeAuthError maps a service error to its HTTP shape. credStatus is
// the status for provider rejections, which differs between sign-in (401)
// and sign-up (400).
func (h *AuthHandler) writeAuthError(w http.ResponseWriter, r *http.Request, err error, credStatus int) {
	var credErr *domain.CredentialError

	switch {
	case errors.Is(err, domain.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "Email and password are required")
	case errors.As(err, &credErr):
		writeError(w, credStatus, credErr.Message)
	default:
		slog.ErrorContext(r.Context(), "identity provider call failed",
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, genericErrorMessage)
	}
}

func outcomeLabel(err error) string {
	var credErr *domain.CredentialError
	switch {
	case errors.Is(err, domain.ErrMissingCredentials):
		return "invalid_input"
	case errors.As(err, &credErr):
		return "rejected"
	default:
		return "error"
	}
}

func sessionPayload(s *domain.Session) *SessionPayload {
	return &SessionPayload{
		ExpiresAt: s.ExpiresAt.Unix(),
		ExpiresIn: s.ExpiresIn,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
