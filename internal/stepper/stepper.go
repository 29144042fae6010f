// Package stepper tracks progress through an audit workflow: a cursor over
// the flattened Step > SubStep > Question order and the answers given so far.
package stepper

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/database/models"
	"gorm.io/datatypes"
)

var (
	ErrUnknownQuestion = errors.New("question does not belong to this workflow")
	ErrEmptyWorkflow   = errors.New("workflow has no questions")
	ErrInvalidAnswer   = errors.New("answer is not valid JSON")
)

// Position locates a question in the workflow tree.
type Position struct {
	StepID     uuid.UUID `json:"step_id"`
	SubStepID  uuid.UUID `json:"sub_step_id"`
	QuestionID uuid.UUID `json:"question_id"`
	Required   bool      `json:"required"`
}

type Progress struct {
	order   []Position
	index   map[uuid.UUID]int
	cursor  int
	answers map[uuid.UUID]json.RawMessage
}

// New flattens the workflow. Steps, sub-steps and questions are expected in
// position order, as loaded by the store.
func New(wf *models.Workflow) (*Progress, error) {
	p := &Progress{
		index:   make(map[uuid.UUID]int),
		answers: make(map[uuid.UUID]json.RawMessage),
	}
	for _, step := range wf.Steps {
		for _, sub := range step.SubSteps {
			for _, q := range sub.Questions {
				p.index[q.ID] = len(p.order)
				p.order = append(p.order, Position{
					StepID:     step.ID,
					SubStepID:  sub.ID,
					QuestionID: q.ID,
					Required:   q.Required,
				})
			}
		}
	}
	if len(p.order) == 0 {
		return nil, ErrEmptyWorkflow
	}
	return p, nil
}

func (p *Progress) Len() int {
	return len(p.order)
}

func (p *Progress) Current() Position {
	return p.order[p.cursor]
}

// Next advances the cursor; it reports false at the last question.
func (p *Progress) Next() bool {
	if p.cursor+1 >= len(p.order) {
		return false
	}
	p.cursor++
	return true
}

func (p *Progress) Prev() bool {
	if p.cursor == 0 {
		return false
	}
	p.cursor--
	return true
}

func (p *Progress) Seek(questionID uuid.UUID) error {
	i, ok := p.index[questionID]
	if !ok {
		return ErrUnknownQuestion
	}
	p.cursor = i
	return nil
}

// Answer records an answer, replacing any previous one for the question.
func (p *Progress) Answer(questionID uuid.UUID, answer json.RawMessage) error {
	if _, ok := p.index[questionID]; !ok {
		return ErrUnknownQuestion
	}
	if !json.Valid(answer) {
		return ErrInvalidAnswer
	}
	p.answers[questionID] = append(json.RawMessage(nil), answer...)
	return nil
}

func (p *Progress) Answers() map[uuid.UUID]json.RawMessage {
	out := make(map[uuid.UUID]json.RawMessage, len(p.answers))
	for k, v := range p.answers {
		out[k] = v
	}
	return out
}

// Complete reports whether every required question has an answer.
func (p *Progress) Complete() bool {
	for _, pos := range p.order {
		if _, ok := p.answers[pos.QuestionID]; pos.Required && !ok {
			return false
		}
	}
	return true
}

// FirstUnanswered returns the first question without an answer, or the last
// question when all are answered.
func (p *Progress) FirstUnanswered() Position {
	for _, pos := range p.order {
		if _, ok := p.answers[pos.QuestionID]; !ok {
			return pos
		}
	}
	return p.order[len(p.order)-1]
}

// Restore loads a saved session: its answers and its cursor.
func (p *Progress) Restore(session *models.StepperSession) error {
	for _, r := range session.Responses {
		if err := p.Answer(r.QuestionID, json.RawMessage(r.Answer)); err != nil {
			return err
		}
	}
	if session.CurrentQuestionID != nil {
		return p.Seek(*session.CurrentQuestionID)
	}
	return nil
}

// Responses lists the answers as rows, in workflow order.
func (p *Progress) Responses() []models.StepperResponse {
	out := make([]models.StepperResponse, 0, len(p.answers))
	for _, pos := range p.order {
		if a, ok := p.answers[pos.QuestionID]; ok {
			out = append(out, models.StepperResponse{QuestionID: pos.QuestionID, Answer: datatypes.JSON(a)})
		}
	}
	return out
}
