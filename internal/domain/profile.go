package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
)

// Plan tiers stored on a profile.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// Profile is the application-owned row keyed 1:1 by the provider's user
// id. It carries the billing, deployment and preference fields the rest
// of the application reads; the auth subsystem only fetches it alongside
// the authenticated user.
type Profile struct {
	UserID             string    `json:"user_id"`
	FirstName          string    `json:"first_name"`
	PlanTier           string    `json:"plan_tier"`
	SubscriptionStatus string    `json:"subscription_status"`
	DeployToken        string    `json:"-"`
	Theme              string    `json:"theme"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ProfileRepository defines the interface for profile data access
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
}
