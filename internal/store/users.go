package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/database/models"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := s.conn(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("creating user: %w", translate(err))
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.conn(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) TouchUserLogin(ctx context.Context, id uuid.UUID) error {
	return s.conn(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("last_login_at", time.Now().Unix()).Error
}

func (s *Store) DeleteUsers(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.conn(ctx).Unscoped().Where("id IN ?", ids).Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("deleting users: %w", err)
	}
	return nil
}
