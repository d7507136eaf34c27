package domain

import "time"

// User is the identity-provider-issued account record. Accounts are
// created by the provider during sign-up and only ever read here.
type User struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	CreatedAt time.Time      `json:"created_at"`
	Metadata  map[string]any `json:"user_metadata,omitempty"`
}
