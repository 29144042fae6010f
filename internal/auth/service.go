package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/store"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrBlockedProfile     = errors.New("profile is blocked")
	ErrWeakPassword       = errors.New("password is too short")
)

type Service struct {
	store *store.Store
	jwt   *JWTService
}

func NewService(st *store.Store, jwt *JWTService) *Service {
	return &Service{store: st, jwt: jwt}
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Token   string          `json:"token"`
	User    *models.User    `json:"user"`
	Profile *models.Profile `json:"profile"`
}

// CreateUser registers an auth identity. An empty password generates a random
// one.
func (s *Service) CreateUser(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if password == "" {
		generated, err := RandomPassword()
		if err != nil {
			return nil, fmt.Errorf("generating password: %w", err)
		}
		password = generated
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

// DeleteUsers removes auth identities.
func (s *Service) DeleteUsers(ctx context.Context, ids []uuid.UUID) error {
	return s.store.DeleteUsers(ctx, ids)
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	user, err := s.store.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	profile, err := s.store.GetProfileByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if profile.Blocked {
		return nil, ErrBlockedProfile
	}

	token, err := s.jwt.GenerateToken(user, profile)
	if err != nil {
		return nil, err
	}

	_ = s.store.TouchUserLogin(ctx, user.ID)

	return &AuthResponse{
		Token:   token,
		User:    user,
		Profile: profile,
	}, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
