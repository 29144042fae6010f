package models

import "github.com/google/uuid"

// Workflow is an audit questionnaire: Steps contain SubSteps which contain
// Questions, each level ordered by Position.
type Workflow struct {
	Base
	CompanyID   uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description,omitempty"`

	Steps []Step `gorm:"foreignKey:WorkflowID" json:"steps,omitempty"`
}

func (Workflow) TableName() string {
	return "workflows"
}

type Step struct {
	Base
	WorkflowID uuid.UUID `gorm:"type:uuid;index;not null" json:"workflow_id"`
	Position   int       `json:"position"`
	Title      string    `json:"title"`

	SubSteps []SubStep `gorm:"foreignKey:StepID" json:"sub_steps,omitempty"`
}

func (Step) TableName() string {
	return "steps"
}

type SubStep struct {
	Base
	StepID   uuid.UUID `gorm:"type:uuid;index;not null" json:"step_id"`
	Position int       `json:"position"`
	Title    string    `json:"title"`

	Questions []Question `gorm:"foreignKey:SubStepID" json:"questions,omitempty"`
}

func (SubStep) TableName() string {
	return "sub_steps"
}

type QuestionKind string

const (
	QuestionKindText   QuestionKind = "text"
	QuestionKindChoice QuestionKind = "choice"
	QuestionKindMulti  QuestionKind = "multi"
	QuestionKindNumber QuestionKind = "number"
)

type Question struct {
	Base
	SubStepID uuid.UUID    `gorm:"type:uuid;index;not null" json:"sub_step_id"`
	Position  int          `json:"position"`
	Label     string       `gorm:"not null" json:"label"`
	Kind      QuestionKind `gorm:"not null;default:'text'" json:"kind"`
	Required  bool         `gorm:"default:false" json:"required"`
}

func (Question) TableName() string {
	return "questions"
}
