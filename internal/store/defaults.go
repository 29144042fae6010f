package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/database/models"
	"gorm.io/gorm/clause"
)

func (s *Store) GetDefaultDescription(ctx context.Context, companyID uuid.UUID) (*models.DefaultDescription, error) {
	var desc models.DefaultDescription
	if err := s.conn(ctx).Where("company_id = ?", companyID).First(&desc).Error; err != nil {
		return nil, translate(err)
	}
	return &desc, nil
}

// UpsertDefaultDescription keeps a single description per company.
func (s *Store) UpsertDefaultDescription(ctx context.Context, desc *models.DefaultDescription) (*models.DefaultDescription, error) {
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "updated_at"}),
	}).Create(desc).Error
	if err != nil {
		return nil, fmt.Errorf("upserting default description: %w", err)
	}
	return s.GetDefaultDescription(ctx, desc.CompanyID)
}

func (s *Store) DeleteDefaultDescription(ctx context.Context, companyID uuid.UUID) error {
	res := s.conn(ctx).Unscoped().Where("company_id = ?", companyID).Delete(&models.DefaultDescription{})
	if res.Error != nil {
		return fmt.Errorf("deleting default description: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListDefaultParagraphs(ctx context.Context, companyID uuid.UUID) ([]models.DefaultParagraph, error) {
	var paragraphs []models.DefaultParagraph
	err := s.conn(ctx).Where("company_id = ?", companyID).Order("position ASC, created_at ASC").Find(&paragraphs).Error
	if err != nil {
		return nil, fmt.Errorf("listing default paragraphs: %w", err)
	}
	return paragraphs, nil
}

// UpsertDefaultParagraph inserts the paragraph, or overwrites the row with the
// same id. A paragraph id belonging to another company is rejected.
func (s *Store) UpsertDefaultParagraph(ctx context.Context, p *models.DefaultParagraph) error {
	if p.ID != uuid.Nil {
		var existing models.DefaultParagraph
		err := s.conn(ctx).Unscoped().Where("id = ?", p.ID).First(&existing).Error
		if err == nil && existing.CompanyID != p.CompanyID {
			return ErrConflict
		}
	}
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "position", "updated_at"}),
	}).Create(p).Error
	if err != nil {
		return fmt.Errorf("upserting default paragraph: %w", err)
	}
	return nil
}

func (s *Store) DeleteDefaultParagraph(ctx context.Context, companyID, paragraphID uuid.UUID) error {
	res := s.conn(ctx).Unscoped().Where("id = ? AND company_id = ?", paragraphID, companyID).Delete(&models.DefaultParagraph{})
	if res.Error != nil {
		return fmt.Errorf("deleting default paragraph: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDefaultParagraphs removes every paragraph template of a company. Rows
// are hard deleted so a re-posted id is inserted again.
func (s *Store) DeleteDefaultParagraphs(ctx context.Context, companyID uuid.UUID) error {
	if err := s.conn(ctx).Unscoped().Where("company_id = ?", companyID).Delete(&models.DefaultParagraph{}).Error; err != nil {
		return fmt.Errorf("deleting default paragraphs: %w", err)
	}
	return nil
}
