// Package session is the cookie codec for the session token pair. It
// serializes and extracts the tokens without validating them; validation
// is the identity provider's job.
package session

import (
	"fmt"
	"net/http"
	"strings"

	"appforge-web/internal/domain"
)

const (
	AccessTokenCookie  = "sb-access-token"
	RefreshTokenCookie = "sb-refresh-token"

	// The browser keeps the refresh token for 30 days. The access token
	// only lives as long as the provider says it is good for.
	refreshTokenMaxAge = 30 * 24 * 60 * 60
)

// Write sets the session cookie pair on the response. The pair is atomic:
// an incomplete session is rejected before either cookie is written, so a
// response can never carry half a session.
func Write(w http.ResponseWriter, s *domain.Session, secure bool) error {
	if s == nil || s.AccessToken == "" || s.RefreshToken == "" {
		return fmt.Errorf("session is missing a token")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    s.AccessToken,
		Path:     "/",
		MaxAge:   s.ExpiresIn,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    s.RefreshToken,
		Path:     "/",
		MaxAge:   refreshTokenMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires both session cookies. Used by the sign-out flow; the
// provider's own session store is untouched.
func Clear(w http.ResponseWriter, secure bool) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ReadTokens extracts the raw token strings from the inbound request.
// Missing cookies come back as empty strings; absence of a session is an
// expected state, not an error.
func ReadTokens(r *http.Request) (accessToken, refreshToken string) {
	cookies := ParseCookieHeader(r.Header.Get("Cookie"))
	return cookies[AccessTokenCookie], cookies[RefreshTokenCookie]
}

// ParseCookieHeader parses a Cookie request header into name/value pairs.
// Cookie values may themselves contain '=', so each pair is split on the
// first '=' only. Empty and malformed segments are skipped; ordering and
// unrelated cookies do not matter.
func ParseCookieHeader(header string) map[string]string {
	cookies := make(map[string]string)
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cookies[name] = value
	}
	return cookies
}
