package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/stepper"
	"github.com/propale/propale/internal/store"
)

type StepperService struct {
	store *store.Store
}

func NewStepperService(st *store.Store) *StepperService {
	return &StepperService{store: st}
}

// SessionState is a session together with the cursor the UI should resume at.
type SessionState struct {
	Session  *models.StepperSession `json:"session"`
	Current  stepper.Position       `json:"current"`
	Total    int                    `json:"total"`
	Complete bool                   `json:"complete"`
}

func (s *StepperService) Workflow(ctx context.Context, id uuid.UUID) (*models.Workflow, error) {
	return s.store.GetWorkflow(ctx, id)
}

// Load returns the saved session for key, or a fresh one positioned on the
// first question when none was saved.
func (s *StepperService) Load(ctx context.Context, key store.SessionKey) (*SessionState, error) {
	wf, err := s.store.GetWorkflow(ctx, key.WorkflowID)
	if err != nil {
		return nil, fmt.Errorf("loading workflow: %w", err)
	}
	progress, err := stepper.New(wf)
	if err != nil {
		return nil, err
	}

	session, err := s.store.GetSession(ctx, key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		session = &models.StepperSession{
			CompanyID:  key.CompanyID,
			WorkflowID: key.WorkflowID,
			ProfileID:  key.ProfileID,
			ProspectID: key.ProspectID,
			Status:     models.StepperStatusInProgress,
		}
	case err != nil:
		return nil, err
	default:
		if err := progress.Restore(session); err != nil {
			return nil, err
		}
	}

	return &SessionState{
		Session:  session,
		Current:  progress.Current(),
		Total:    progress.Len(),
		Complete: progress.Complete(),
	}, nil
}

type SaveSessionInput struct {
	Key               store.SessionKey
	Status            models.StepperStatus
	CurrentQuestionID *uuid.UUID
	Answers           map[uuid.UUID]json.RawMessage
}

// Save validates the answers against the workflow, then stores the session and
// replaces all of its responses. The last save wins.
func (s *StepperService) Save(ctx context.Context, in SaveSessionInput) (*SessionState, error) {
	if in.Status == "" {
		in.Status = models.StepperStatusInProgress
	}
	if !in.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	wf, err := s.store.GetWorkflow(ctx, in.Key.WorkflowID)
	if err != nil {
		return nil, fmt.Errorf("loading workflow: %w", err)
	}
	progress, err := stepper.New(wf)
	if err != nil {
		return nil, err
	}
	for questionID, answer := range in.Answers {
		if err := progress.Answer(questionID, answer); err != nil {
			return nil, fmt.Errorf("question %s: %w", questionID, err)
		}
	}
	if in.CurrentQuestionID != nil {
		if err := progress.Seek(*in.CurrentQuestionID); err != nil {
			return nil, err
		}
	} else if err := progress.Seek(progress.FirstUnanswered().QuestionID); err != nil {
		return nil, err
	}

	cur := progress.Current()
	session := &models.StepperSession{
		CompanyID:         in.Key.CompanyID,
		WorkflowID:        in.Key.WorkflowID,
		ProfileID:         in.Key.ProfileID,
		ProspectID:        in.Key.ProspectID,
		CurrentStepID:     &cur.StepID,
		CurrentSubStepID:  &cur.SubStepID,
		CurrentQuestionID: &cur.QuestionID,
		Status:            in.Status,
	}
	saved, err := s.store.SaveSession(ctx, session, progress.Responses())
	if err != nil {
		return nil, err
	}

	return &SessionState{
		Session:  saved,
		Current:  cur,
		Total:    progress.Len(),
		Complete: progress.Complete(),
	}, nil
}
