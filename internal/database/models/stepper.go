package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type StepperStatus string

const (
	StepperStatusInProgress StepperStatus = "in_progress"
	StepperStatusCompleted  StepperStatus = "completed"
	StepperStatusSaved      StepperStatus = "saved"
)

func (s StepperStatus) Valid() bool {
	switch s {
	case StepperStatusInProgress, StepperStatusCompleted, StepperStatusSaved:
		return true
	}
	return false
}

// StepperSession is the saved progress of one profile through a workflow for
// a prospect. The (company, workflow, profile, prospect) tuple is unique.
type StepperSession struct {
	Row
	CompanyID         uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_stepper_sessions_key,priority:1" json:"company_id"`
	WorkflowID        uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_stepper_sessions_key,priority:2" json:"workflow_id"`
	ProfileID         uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_stepper_sessions_key,priority:3" json:"profile_id"`
	ProspectID        uuid.UUID     `gorm:"type:uuid;not null;index;uniqueIndex:idx_stepper_sessions_key,priority:4" json:"prospect_id"`
	CurrentStepID     *uuid.UUID    `gorm:"type:uuid" json:"current_step_id,omitempty"`
	CurrentSubStepID  *uuid.UUID    `gorm:"type:uuid" json:"current_sub_step_id,omitempty"`
	CurrentQuestionID *uuid.UUID    `gorm:"type:uuid" json:"current_question_id,omitempty"`
	Status            StepperStatus `gorm:"not null;default:'in_progress'" json:"status"`

	Responses []StepperResponse `gorm:"foreignKey:SessionID" json:"responses,omitempty"`
}

func (StepperSession) TableName() string {
	return "stepper_sessions"
}

// StepperResponse is one answer of a session. Answer holds raw JSON so that
// text, numbers and multi-choice selections share one column.
type StepperResponse struct {
	Row
	SessionID  uuid.UUID      `gorm:"type:uuid;index;not null" json:"session_id"`
	QuestionID uuid.UUID      `gorm:"type:uuid;not null" json:"question_id"`
	Answer     datatypes.JSON `json:"answer"`
}

func (StepperResponse) TableName() string {
	return "stepper_responses"
}
