package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"appforge-web/internal/domain"
)

// Counter for generating unique IDs
var idCounter atomic.Int64

// nextID generates a unique ID for test fixtures
func nextID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, idCounter.Add(1))
}

// UserOptions allows customizing user fixture creation
type UserOptions struct {
	ID        string
	Email     string
	CreatedAt time.Time
	Metadata  map[string]any
}

// NewTestUser creates a test user with sensible defaults
func NewTestUser(opts ...func(*UserOptions)) *domain.User {
	o := &UserOptions{
		ID: nextID("user"),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.Email == "" {
		o.Email = o.ID + "@example.com"
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}

	return &domain.User{
		ID:        o.ID,
		Email:     o.Email,
		CreatedAt: o.CreatedAt,
		Metadata:  o.Metadata,
	}
}

// WithUserID sets the user ID
func WithUserID(id string) func(*UserOptions) {
	return func(o *UserOptions) {
		o.ID = id
	}
}

// WithEmail sets the email
func WithEmail(email string) func(*UserOptions) {
	return func(o *UserOptions) {
		o.Email = email
	}
}

// SessionOptions allows customizing session fixture creation
type SessionOptions struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	ExpiresAt    time.Time
}

// NewTestSession creates an unexpired test session with both tokens set
func NewTestSession(opts ...func(*SessionOptions)) *domain.Session {
	o := &SessionOptions{
		AccessToken:  nextID("access"),
		RefreshToken: nextID("refresh"),
		ExpiresIn:    3600,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.ExpiresAt.IsZero() {
		o.ExpiresAt = time.Now().Add(time.Duration(o.ExpiresIn) * time.Second)
	}

	return &domain.Session{
		AccessToken:  o.AccessToken,
		RefreshToken: o.RefreshToken,
		ExpiresIn:    o.ExpiresIn,
		ExpiresAt:    o.ExpiresAt,
	}
}

// WithAccessToken sets the access token
func WithAccessToken(token string) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.AccessToken = token
	}
}

// WithRefreshToken sets the refresh token
func WithRefreshToken(token string) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.RefreshToken = token
	}
}

// WithExpiresIn sets the access token lifetime in seconds
func WithExpiresIn(seconds int) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.ExpiresIn = seconds
	}
}

// WithExpiresAt sets the expiry instant
func WithExpiresAt(t time.Time) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.ExpiresAt = t
	}
}

// ProfileOptions allows customizing profile fixture creation
type ProfileOptions struct {
	UserID    string
	FirstName string
	PlanTier  string
}

// NewTestProfile creates a test profile with sensible defaults
func NewTestProfile(opts ...func(*ProfileOptions)) *domain.Profile {
	o := &ProfileOptions{
		UserID:    nextID("user"),
		FirstName: "Test",
		PlanTier:  domain.PlanFree,
	}

	for _, opt := range opts {
		opt(o)
	}

	now := time.Now()
	return &domain.Profile{
		UserID:             o.UserID,
		FirstName:          o.FirstName,
		PlanTier:           o.PlanTier,
		SubscriptionStatus: "inactive",
		Theme:              "light",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// WithProfileUserID sets the owning user id
func WithProfileUserID(id string) func(*ProfileOptions) {
	return func(o *ProfileOptions) {
		o.UserID = id
	}
}

// WithPlanTier sets the plan tier
func WithPlanTier(tier string) func(*ProfileOptions) {
	return func(o *ProfileOptions) {
		o.PlanTier = tier
	}
}
