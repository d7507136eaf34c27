package postgres

import (
	"context"
	"database/sql"

	"appforge-web/internal/domain"
)

// ProfileRepository implements domain.ProfileRepository for PostgreSQL
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new PostgreSQL profile repository
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts the profile row for a newly registered account. The row
// is keyed by the identity provider's user id; inserting a second row for
// the same user returns domain.ErrProfileExists.
func (r *ProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	if profile.PlanTier == "" {
		profile.PlanTier = domain.PlanFree
	}
	if profile.Theme == "" {
		profile.Theme = "light"
	}

	query := `
		INSERT INTO profiles (user_id, first_name, plan_tier, subscription_status, theme)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		profile.UserID,
		profile.FirstName,
		profile.PlanTier,
		profile.SubscriptionStatus,
		profile.Theme,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)

	if err != nil {
		if IsUniqueViolation(err, "profiles_pkey") {
			return domain.ErrProfileExists
		}
		return err
	}

	return nil
}

// GetByUserID retrieves the single profile row for a user id
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `
		SELECT user_id, first_name, plan_tier, subscription_status,
		       COALESCE(deploy_token, ''), theme, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	profile := &domain.Profile{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.FirstName,
		&profile.PlanTier,
		&profile.SubscriptionStatus,
		&profile.DeployToken,
		&profile.Theme,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}
