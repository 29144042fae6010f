package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/database/models"
)

// Authenticator is what the login endpoints need.
type Authenticator interface {
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// UserManager creates and removes auth identities on behalf of the domain
// services.
type UserManager interface {
	CreateUser(ctx context.Context, email, password string) (*models.User, error)
	DeleteUsers(ctx context.Context, ids []uuid.UUID) error
}

type TokenService interface {
	GenerateToken(user *models.User, profile *models.Profile) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

var (
	_ Authenticator = (*Service)(nil)
	_ UserManager   = (*Service)(nil)
	_ TokenService  = (*JWTService)(nil)
)
