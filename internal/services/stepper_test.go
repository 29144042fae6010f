package services

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/stepper"
	"github.com/propale/propale/internal/store"
	"github.com/propale/propale/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionIDs(wf *models.Workflow) []uuid.UUID {
	var ids []uuid.UUID
	for _, s := range wf.Steps {
		for _, ss := range s.SubSteps {
			for _, q := range ss.Questions {
				ids = append(ids, q.ID)
			}
		}
	}
	return ids
}

func TestStepperService_SaveReplacesResponses(t *testing.T) {
	ts := testutil.NewTestContext(t)
	ctx := testutil.TestContext(t)
	prospect := testutil.CreateTestCompany(t, ts.DB, &ts.Org.ID, models.CompanyTypeProspect, "Initech")
	wf := testutil.CreateTestWorkflow(t, ts.DB, ts.Org.ID, 2, 1, 2)
	qs := questionIDs(wf)
	require.Len(t, qs, 4)

	svc := NewStepperService(ts.Store)
	key := store.SessionKey{CompanyID: ts.Org.ID, WorkflowID: wf.ID, ProfileID: ts.Profile.ID, ProspectID: prospect.ID}

	fresh, err := svc.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, qs[0], fresh.Current.QuestionID)
	assert.Equal(t, 4, fresh.Total)

	first, err := svc.Save(ctx, SaveSessionInput{
		Key: key,
		Answers: map[uuid.UUID]json.RawMessage{
			qs[0]: json.RawMessage(`"oui"`),
			qs[1]: json.RawMessage(`42`),
			qs[2]: json.RawMessage(`["a","b"]`),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, qs[3], first.Current.QuestionID)
	assert.Len(t, first.Session.Responses, 3)

	second, err := svc.Save(ctx, SaveSessionInput{
		Key:               key,
		Status:            models.StepperStatusSaved,
		CurrentQuestionID: &qs[1],
		Answers:           map[uuid.UUID]json.RawMessage{qs[1]: json.RawMessage(`7`)},
	})
	require.NoError(t, err)
	assert.Equal(t, first.Session.ID, second.Session.ID)

	loaded, err := svc.Load(ctx, key)
	require.NoError(t, err)
	require.Len(t, loaded.Session.Responses, 1)
	assert.Equal(t, qs[1], loaded.Session.Responses[0].QuestionID)
	assert.JSONEq(t, `7`, string(loaded.Session.Responses[0].Answer))
	assert.Equal(t, qs[1], loaded.Current.QuestionID)
	assert.Equal(t, models.StepperStatusSaved, loaded.Session.Status)
}

func TestStepperService_SaveRejectsInvalidInput(t *testing.T) {
	ts := testutil.NewTestContext(t)
	ctx := testutil.TestContext(t)
	prospect := testutil.CreateTestCompany(t, ts.DB, &ts.Org.ID, models.CompanyTypeProspect, "Initech")
	wf := testutil.CreateTestWorkflow(t, ts.DB, ts.Org.ID, 1, 1, 1)
	key := store.SessionKey{CompanyID: ts.Org.ID, WorkflowID: wf.ID, ProfileID: ts.Profile.ID, ProspectID: prospect.ID}
	svc := NewStepperService(ts.Store)

	_, err := svc.Save(ctx, SaveSessionInput{
		Key:     key,
		Answers: map[uuid.UUID]json.RawMessage{uuid.New(): json.RawMessage(`1`)},
	})
	assert.ErrorIs(t, err, stepper.ErrUnknownQuestion)

	_, err = svc.Save(ctx, SaveSessionInput{Key: key, Status: "paused"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.Load(ctx, store.SessionKey{WorkflowID: uuid.New()})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
