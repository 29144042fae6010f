package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/database/models"
	"gorm.io/gorm/clause"
)

func (s *Store) GetSettings(ctx context.Context, companyID uuid.UUID) (*models.CompanySettings, error) {
	var settings models.CompanySettings
	if err := s.conn(ctx).Where("company_id = ?", companyID).First(&settings).Error; err != nil {
		return nil, translate(err)
	}
	return &settings, nil
}

// UpsertSettings inserts or replaces the settings row of a company.
func (s *Store) UpsertSettings(ctx context.Context, settings *models.CompanySettings) error {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "company_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"workflows_allowed", "users_allowed", "contacts_per_prospect",
			"folders_allowed", "vision", "composition_workflow", "license_type", "updated_at",
		}),
	}).Create(settings).Error
	if err != nil {
		return fmt.Errorf("upserting settings: %w", err)
	}
	return nil
}
