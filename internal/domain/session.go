package domain

import "time"

// Session is the token pair the identity provider issues for an
// authenticated browser. The server never stores it: it lives in the
// browser's cookies and in the provider's own session store, and every
// request re-derives it from the cookies it carries.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int       `json:"expires_in"` // seconds until the access token expires
	ExpiresAt    time.Time `json:"expires_at"`
}

// Valid reports whether the session can still authenticate requests.
// Both tokens must be present and the access token unexpired; anything
// less is anonymous.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.AccessToken == "" || s.RefreshToken == "" {
		return false
	}
	return now.Before(s.ExpiresAt)
}
