package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/database/models"
	"gorm.io/gorm/clause"
)

// SessionKey identifies a stepper session.
type SessionKey struct {
	CompanyID  uuid.UUID
	WorkflowID uuid.UUID
	ProfileID  uuid.UUID
	ProspectID uuid.UUID
}

func (k SessionKey) where() map[string]interface{} {
	return map[string]interface{}{
		"company_id":  k.CompanyID,
		"workflow_id": k.WorkflowID,
		"profile_id":  k.ProfileID,
		"prospect_id": k.ProspectID,
	}
}

// GetSession loads a session and its responses by key.
func (s *Store) GetSession(ctx context.Context, key SessionKey) (*models.StepperSession, error) {
	var session models.StepperSession
	err := s.conn(ctx).Preload("Responses").Where(key.where()).First(&session).Error
	if err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

// SaveSession upserts the session by key and replaces all of its responses.
// Everything happens in one transaction, so the stored responses are always
// exactly those of a single save.
func (s *Store) SaveSession(ctx context.Context, session *models.StepperSession, responses []models.StepperResponse) (*models.StepperSession, error) {
	key := SessionKey{
		CompanyID:  session.CompanyID,
		WorkflowID: session.WorkflowID,
		ProfileID:  session.ProfileID,
		ProspectID: session.ProspectID,
	}

	var saved models.StepperSession
	err := s.WithTransaction(ctx, func(tx *Store) error {
		row := *session
		row.Responses = nil
		err := tx.conn(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "company_id"}, {Name: "workflow_id"}, {Name: "profile_id"}, {Name: "prospect_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"current_step_id", "current_sub_step_id", "current_question_id", "status", "updated_at",
			}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("upserting session: %w", err)
		}

		// On conflict the generated id is not the stored one.
		if err := tx.conn(ctx).Where(key.where()).First(&saved).Error; err != nil {
			return fmt.Errorf("reloading session: %w", translate(err))
		}

		if err := tx.conn(ctx).Where("session_id = ?", saved.ID).Delete(&models.StepperResponse{}).Error; err != nil {
			return fmt.Errorf("deleting responses: %w", err)
		}
		if len(responses) == 0 {
			return nil
		}
		rows := make([]models.StepperResponse, len(responses))
		for i, r := range responses {
			rows[i] = models.StepperResponse{SessionID: saved.ID, QuestionID: r.QuestionID, Answer: r.Answer}
		}
		if err := tx.conn(ctx).Create(&rows).Error; err != nil {
			return fmt.Errorf("inserting responses: %w", err)
		}
		saved.Responses = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteSessionsForProspect removes every session of a prospect, responses
// first.
func (s *Store) DeleteSessionsForProspect(ctx context.Context, prospectID uuid.UUID) error {
	var ids []uuid.UUID
	if err := s.conn(ctx).Model(&models.StepperSession{}).Where("prospect_id = ?", prospectID).Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.conn(ctx).Where("session_id IN ?", ids).Delete(&models.StepperResponse{}).Error; err != nil {
		return fmt.Errorf("deleting responses: %w", err)
	}
	if err := s.conn(ctx).Where("id IN ?", ids).Delete(&models.StepperSession{}).Error; err != nil {
		return fmt.Errorf("deleting sessions: %w", err)
	}
	return nil
}
