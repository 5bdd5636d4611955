package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/agrireg/agrireg/internal/rbac"
	"github.com/agrireg/agrireg/internal/shared"
)

// Service wraps authentication business rules. Credential parsing stops
// here; everything downstream works with the produced identity.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Identity loads the runtime identity for a previously authenticated user.
func (s *Service) Identity(ctx context.Context, userID int64) (*rbac.Identity, error) {
	return s.repo.Identity(ctx, userID)
}
