package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/database/models"
	"gorm.io/gorm"
)

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// GetWorkflow loads a workflow with its steps, sub-steps and questions, each
// level ordered by position.
func (s *Store) GetWorkflow(ctx context.Context, id uuid.UUID) (*models.Workflow, error) {
	var wf models.Workflow
	err := s.conn(ctx).
		Preload("Steps", byPosition).
		Preload("Steps.SubSteps", byPosition).
		Preload("Steps.SubSteps.Questions", byPosition).
		Where("id = ?", id).
		First(&wf).Error
	if err != nil {
		return nil, translate(err)
	}
	return &wf, nil
}

func (s *Store) ListWorkflows(ctx context.Context, companyID uuid.UUID) ([]models.Workflow, error) {
	var workflows []models.Workflow
	if err := s.conn(ctx).Where("company_id = ?", companyID).Order("name ASC").Find(&workflows).Error; err != nil {
		return nil, fmt.Errorf("listing workflows: %w", err)
	}
	return workflows, nil
}

// CreateWorkflow stores a whole questionnaire tree.
func (s *Store) CreateWorkflow(ctx context.Context, wf *models.Workflow) error {
	if err := s.conn(ctx).Create(wf).Error; err != nil {
		return fmt.Errorf("creating workflow: %w", err)
	}
	return nil
}
