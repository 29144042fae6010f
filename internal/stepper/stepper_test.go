package stepper

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// workflow builds 2 steps x 2 sub-steps x 2 questions; the first question of
// every sub-step is required.
func workflow() *models.Workflow {
	wf := &models.Workflow{Base: models.Base{ID: uuid.New()}}
	for s := 0; s < 2; s++ {
		step := models.Step{Base: models.Base{ID: uuid.New()}, Position: s}
		for ss := 0; ss < 2; ss++ {
			sub := models.SubStep{Base: models.Base{ID: uuid.New()}, Position: ss}
			for q := 0; q < 2; q++ {
				sub.Questions = append(sub.Questions, models.Question{
					Base:     models.Base{ID: uuid.New()},
					Position: q,
					Required: q == 0,
				})
			}
			step.SubSteps = append(step.SubSteps, sub)
		}
		wf.Steps = append(wf.Steps, step)
	}
	return wf
}

func TestProgress_Navigation(t *testing.T) {
	wf := workflow()
	p, err := New(wf)
	require.NoError(t, err)
	assert.Equal(t, 8, p.Len())

	first := p.Current()
	assert.Equal(t, wf.Steps[0].ID, first.StepID)
	assert.Equal(t, wf.Steps[0].SubSteps[0].Questions[0].ID, first.QuestionID)
	assert.False(t, p.Prev())

	for i := 0; i < 7; i++ {
		require.True(t, p.Next())
	}
	last := p.Current()
	assert.Equal(t, wf.Steps[1].ID, last.StepID)
	assert.Equal(t, wf.Steps[1].SubSteps[1].ID, last.SubStepID)
	assert.False(t, p.Next())

	q := wf.Steps[1].SubSteps[0].Questions[1].ID
	require.NoError(t, p.Seek(q))
	assert.Equal(t, q, p.Current().QuestionID)
	assert.ErrorIs(t, p.Seek(uuid.New()), ErrUnknownQuestion)
}

func TestProgress_Answers(t *testing.T) {
	wf := workflow()
	p, err := New(wf)
	require.NoError(t, err)

	q1 := wf.Steps[0].SubSteps[0].Questions[0].ID
	require.NoError(t, p.Answer(q1, json.RawMessage(`"first"`)))
	require.NoError(t, p.Answer(q1, json.RawMessage(`"second"`)))
	assert.JSONEq(t, `"second"`, string(p.Answers()[q1]))

	assert.ErrorIs(t, p.Answer(uuid.New(), json.RawMessage(`1`)), ErrUnknownQuestion)
	assert.ErrorIs(t, p.Answer(q1, json.RawMessage(`{oops`)), ErrInvalidAnswer)

	assert.False(t, p.Complete())
	assert.Equal(t, wf.Steps[0].SubSteps[0].Questions[1].ID, p.FirstUnanswered().QuestionID)

	for _, step := range wf.Steps {
		for _, sub := range step.SubSteps {
			require.NoError(t, p.Answer(sub.Questions[0].ID, json.RawMessage(`true`)))
		}
	}
	assert.True(t, p.Complete())
	assert.Len(t, p.Responses(), 4)
}

func TestProgress_Restore(t *testing.T) {
	wf := workflow()
	p, err := New(wf)
	require.NoError(t, err)

	q := wf.Steps[1].SubSteps[1].Questions[0].ID
	session := &models.StepperSession{
		CurrentQuestionID: &q,
		Responses: []models.StepperResponse{
			{QuestionID: q, Answer: datatypes.JSON(`42`)},
		},
	}
	require.NoError(t, p.Restore(session))
	assert.Equal(t, q, p.Current().QuestionID)
	assert.JSONEq(t, `42`, string(p.Answers()[q]))

	stale := uuid.New()
	err = p.Restore(&models.StepperSession{Responses: []models.StepperResponse{{QuestionID: stale, Answer: datatypes.JSON(`1`)}}})
	assert.ErrorIs(t, err, ErrUnknownQuestion)
}

func TestNew_EmptyWorkflow(t *testing.T) {
	_, err := New(&models.Workflow{})
	assert.ErrorIs(t, err, ErrEmptyWorkflow)
}
