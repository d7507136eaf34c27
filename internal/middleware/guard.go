package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"appforge-web/internal/domain"
	"appforge-web/internal/observability"
	"appforge-web/internal/session"
)

// SessionResolver is the slice of the auth service the route guard needs.
type SessionResolver interface {
	Resolve(ctx context.Context, accessToken, refreshToken string) (*domain.User, *domain.Session, error)
}

const (
	landingPath   = "/"
	dashboardPath = "/dashboard"
)

var (
	// Paths the guard never intercepts. Assets never carry auth state and
	// the API tree enforces its own auth per endpoint.
	exemptPrefixes = []string{
		"/api/",
		"/static/",
		"/assets/",
		"/favicon.ico",
		"/metrics",
		"/health",
	}

	// Path prefixes that require a valid session before rendering.
	protectedPrefixes = []string{dashboardPath}

	// Entry pages that bounce an already-authenticated browser back to
	// the dashboard.
	authEntryPaths = map[string]bool{
		"/login":  true,
		"/signup": true,
	}
)

// RouteGuard gates every navigable page request. Per request it resolves
// (and, when the access token is stale, transparently refreshes) the
// session from the inbound cookies, then applies the access policy. The
// guard keeps no state between requests: each request's Anonymous or
// Authenticated standing is re-derived from its cookies alone.
func RouteGuard(resolver SessionResolver, secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if Exempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			accessToken, refreshToken := session.ReadTokens(r)
			user, refreshed, err := resolver.Resolve(r.Context(), accessToken, refreshToken)
			if err != nil {
				// Provider outage: treat the request as anonymous rather
				// than failing the page render.
				slog.ErrorContext(r.Context(), "session resolution failed",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()))
				observability.SessionRefreshesTotal.WithLabelValues("error").Inc()
				user, refreshed = nil, nil
			}

			// Refreshed cookies must be attached before any policy
			// decision: the redirect below depends on the post-refresh
			// state, and the browser must receive the rotated tokens even
			// on a redirect response.
			if refreshed != nil {
				if err := session.Write(w, refreshed, secureCookies); err != nil {
					slog.ErrorContext(r.Context(), "refreshed session missing a token",
						slog.String("error", err.Error()))
					user, refreshed = nil, nil
				} else {
					observability.SessionRefreshesTotal.WithLabelValues("success").Inc()
				}
			}

			authenticated := user != nil

			switch {
			case isProtected(r.URL.Path) && !authenticated:
				// Preserve the originally requested path for post-login
				// resumption.
				target := landingPath + "?redirect=" + url.QueryEscape(r.URL.Path)
				http.Redirect(w, r, target, http.StatusFound)

			case authEntryPaths[r.URL.Path] && authenticated:
				http.Redirect(w, r, dashboardPath, http.StatusFound)

			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// Exempt reports whether the guard must not intercept the path at all.
func Exempt(path string) bool {
	for _, prefix := range exemptPrefixes {
		trimmed := strings.TrimSuffix(prefix, "/")
		if path == trimmed || strings.HasPrefix(path, trimmed+"/") {
			return true
		}
	}
	return false
}

// isProtected matches protected prefixes on path-segment boundaries, so
// /dashboard and /dashboard/settings are protected but /dashboardish is
// not.
func isProtected(path string) bool {
	for _, prefix := range protectedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
