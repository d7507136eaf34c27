// Package testutil provides shared test utilities, mocks, and fixtures
// for testing the appforge-web application.
package testutil

import (
	"context"
	"errors"
	"sync"

	"appforge-web/internal/domain"
)

// Common test errors
var (
	ErrMockNotImplemented = errors.New("mock function not implemented")
)

// MockIdentityProvider implements domain.IdentityProvider for testing.
// Set the Func overrides to customize behavior; every call is counted so
// tests can assert that validation short-circuits before the network.
type MockIdentityProvider struct {
	mu sync.Mutex

	SignInWithPasswordFunc func(ctx context.Context, email, password string) (*domain.User, *domain.Session, error)
	RefreshSessionFunc     func(ctx context.Context, refreshToken string) (*domain.User, *domain.Session, error)
	GetUserFunc            func(ctx context.Context, accessToken string) (*domain.User, error)
	AdminCreateUserFunc    func(ctx context.Context, email, password string, metadata map[string]any) (*domain.User, error)

	// Call counts
	SignInCalls  int
	RefreshCalls int
	GetUserCalls int
	CreateCalls  int
}

func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{}
}

func (m *MockIdentityProvider) SignInWithPassword(ctx context.Context, email, password string) (*domain.User, *domain.Session, error) {
	m.mu.Lock()
	m.SignInCalls++
	m.mu.Unlock()

	if m.SignInWithPasswordFunc != nil {
		return m.SignInWithPasswordFunc(ctx, email, password)
	}
	return nil, nil, ErrMockNotImplemented
}

func (m *MockIdentityProvider) RefreshSession(ctx context.Context, refreshToken string) (*domain.User, *domain.Session, error) {
	m.mu.Lock()
	m.RefreshCalls++
	m.mu.Unlock()

	if m.RefreshSessionFunc != nil {
		return m.RefreshSessionFunc(ctx, refreshToken)
	}
	return nil, nil, ErrMockNotImplemented
}

func (m *MockIdentityProvider) GetUser(ctx context.Context, accessToken string) (*domain.User, error) {
	m.mu.Lock()
	m.GetUserCalls++
	m.mu.Unlock()

	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, accessToken)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockIdentityProvider) AdminCreateUser(ctx context.Context, email, password string, metadata map[string]any) (*domain.User, error) {
	m.mu.Lock()
	m.CreateCalls++
	m.mu.Unlock()

	if m.AdminCreateUserFunc != nil {
		return m.AdminCreateUserFunc(ctx, email, password, metadata)
	}
	return nil, ErrMockNotImplemented
}

// TotalCalls returns how many provider calls were made in total.
func (m *MockIdentityProvider) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SignInCalls + m.RefreshCalls + m.GetUserCalls + m.CreateCalls
}

// MockProfileRepository implements domain.ProfileRepository for testing
type MockProfileRepository struct {
	mu sync.RWMutex

	CreateFunc      func(ctx context.Context, profile *domain.Profile) error
	GetByUserIDFunc func(ctx context.Context, userID string) (*domain.Profile, error)

	// In-memory storage for simple tests
	Profiles map[string]*domain.Profile
}

func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{
		Profiles: make(map[string]*domain.Profile),
	}
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, profile)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Profiles == nil {
		m.Profiles = make(map[string]*domain.Profile)
	}
	if _, ok := m.Profiles[profile.UserID]; ok {
		return domain.ErrProfileExists
	}
	m.Profiles[profile.UserID] = profile
	return nil
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if profile, ok := m.Profiles[userID]; ok {
		return profile, nil
	}
	return nil, domain.ErrProfileNotFound
}
