package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/auth"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/events"
	"github.com/propale/propale/internal/store"
	"github.com/propale/propale/internal/testutil"
	"github.com/propale/propale/internal/views"
	"github.com/propale/propale/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProspectService_Delete_NamesFailingStage(t *testing.T) {
	prospect := &models.Company{Base: models.Base{ID: uuid.New()}, Type: models.CompanyTypeProspect}
	userID := uuid.New()
	contact := models.Profile{Base: models.Base{ID: uuid.New()}, UserID: &userID}

	tests := []struct {
		name  string
		stage string
		setup func(st *mockProspectStore, users *mockUsers)
	}{
		{
			name:  "sessions",
			stage: StageStepperSessions,
			setup: func(st *mockProspectStore, users *mockUsers) {
				st.On("DeleteSessionsForProspect", mock.Anything, prospect.ID).Return(errBoom)
			},
		},
		{
			name:  "proposals",
			stage: StageProposals,
			setup: func(st *mockProspectStore, users *mockUsers) {
				st.On("DeleteSessionsForProspect", mock.Anything, prospect.ID).Return(nil)
				st.On("DeleteProposalsForProspect", mock.Anything, prospect.ID).Return(errBoom)
			},
		},
		{
			name:  "contacts",
			stage: StageContacts,
			setup: func(st *mockProspectStore, users *mockUsers) {
				st.On("DeleteSessionsForProspect", mock.Anything, prospect.ID).Return(nil)
				st.On("DeleteProposalsForProspect", mock.Anything, prospect.ID).Return(nil)
				st.On("ProfilesForCompany", mock.Anything, prospect.ID, models.RoleProspect).Return([]models.Profile{contact}, nil)
				st.On("DeleteCompanyAssociations", mock.Anything, prospect.ID).Return(nil)
				st.On("DeleteProfiles", mock.Anything, []uuid.UUID{contact.ID}).Return(nil)
				users.On("DeleteUsers", mock.Anything, []uuid.UUID{userID}).Return(errBoom)
			},
		},
		{
			name:  "company",
			stage: StageCompany,
			setup: func(st *mockProspectStore, users *mockUsers) {
				st.On("DeleteSessionsForProspect", mock.Anything, prospect.ID).Return(nil)
				st.On("DeleteProposalsForProspect", mock.Anything, prospect.ID).Return(nil)
				st.On("ProfilesForCompany", mock.Anything, prospect.ID, models.RoleProspect).Return([]models.Profile{}, nil)
				st.On("DeleteCompanyAssociations", mock.Anything, prospect.ID).Return(nil)
				st.On("DeleteCompany", mock.Anything, prospect.ID).Return(errBoom)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := new(mockProspectStore)
			users := new(mockUsers)
			st.On("GetCompany", mock.Anything, prospect.ID).Return(prospect, nil)
			tt.setup(st, users)

			svc := NewProspectService(st, users, events.Noop{}, util.DiscardLogger())
			err := svc.Delete(context.Background(), prospect.ID)

			var stageErr *StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, tt.stage, stageErr.Stage)
			assert.ErrorIs(t, err, errBoom)
			assert.Contains(t, err.Error(), tt.stage)
		})
	}
}

func TestProspectService_Delete_StopsAtFirstFailure(t *testing.T) {
	prospect := &models.Company{Base: models.Base{ID: uuid.New()}, Type: models.CompanyTypeProspect}
	st := new(mockProspectStore)
	st.On("GetCompany", mock.Anything, prospect.ID).Return(prospect, nil)
	st.On("DeleteSessionsForProspect", mock.Anything, prospect.ID).Return(nil)
	st.On("DeleteProposalsForProspect", mock.Anything, prospect.ID).Return(errBoom)

	svc := NewProspectService(st, new(mockUsers), events.Noop{}, util.DiscardLogger())
	require.Error(t, svc.Delete(context.Background(), prospect.ID))

	st.AssertNotCalled(t, "DeleteCompany", mock.Anything, mock.Anything)
	st.AssertNotCalled(t, "ProfilesForCompany", mock.Anything, mock.Anything, mock.Anything)
}

func TestProspectService_Delete_RemovesEverything(t *testing.T) {
	ts := testutil.NewTestContext(t)
	ctx := testutil.TestContext(t)
	db := ts.DB

	prospect := testutil.CreateTestCompany(t, db, &ts.Org.ID, models.CompanyTypeProspect, "Initech")
	contactUser := testutil.CreateTestUser(t, db)
	contact := testutil.CreateTestProfile(t, db, contactUser, models.RoleProspect, prospect.ID)
	proposal := testutil.CreateTestProposal(t, db, prospect.ID, models.ProposalStatusDraft)
	require.NoError(t, ts.Store.ReplaceProposalContent(ctx, proposal.ID, []models.Need{{Name: "Audit", Quantity: 1}}, nil))
	wf := testutil.CreateTestWorkflow(t, db, ts.Org.ID, 1, 1, 1)
	_, err := ts.Store.SaveSession(ctx, &models.StepperSession{
		CompanyID:  ts.Org.ID,
		WorkflowID: wf.ID,
		ProfileID:  ts.Profile.ID,
		ProspectID: prospect.ID,
		Status:     models.StepperStatusInProgress,
	}, nil)
	require.NoError(t, err)

	users := auth.NewService(ts.Store, ts.JWTService)
	svc := NewProspectService(ts.Store, users, events.Noop{}, util.DiscardLogger())
	require.NoError(t, svc.Delete(ctx, prospect.ID))

	_, err = ts.Store.GetCompany(ctx, prospect.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = ts.Store.GetProposal(ctx, proposal.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = ts.Store.GetProfile(ctx, contact.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = ts.Store.GetUser(ctx, contactUser.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	var sessions int64
	require.NoError(t, db.Model(&models.StepperSession{}).Where("prospect_id = ?", prospect.ID).Count(&sessions).Error)
	assert.Zero(t, sessions)

	// The author of the session is untouched.
	_, err = ts.Store.GetProfile(ctx, ts.Profile.ID)
	assert.NoError(t, err)
}

func TestProspectService_Delete_RefreshesAccessView(t *testing.T) {
	ts := testutil.NewTestContext(t)
	ctx := testutil.TestContext(t)

	prospect := testutil.CreateTestCompany(t, ts.DB, &ts.Org.ID, models.CompanyTypeProspect, "Initech")
	sales := testutil.CreateTestProfile(t, ts.DB, testutil.CreateTestUser(t, ts.DB), models.RoleSales, ts.Org.ID, prospect.ID)

	view := views.NewAccessView(NewAccessService(ts.Store))
	before, err := view.Load(ctx, sales.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{ts.Org.ID, prospect.ID}, before)

	svc := NewProspectService(ts.Store, auth.NewService(ts.Store, ts.JWTService), events.Noop{}, util.DiscardLogger())
	require.NoError(t, svc.Delete(ctx, prospect.ID))

	after, err := view.Load(ctx, sales.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ts.Org.ID}, after)
}

func TestProspectService_Delete_RejectsFolder(t *testing.T) {
	folder := &models.Company{Base: models.Base{ID: uuid.New()}, Type: models.CompanyTypeFolder}
	st := new(mockProspectStore)
	st.On("GetCompany", mock.Anything, folder.ID).Return(folder, nil)

	svc := NewProspectService(st, new(mockUsers), events.Noop{}, util.DiscardLogger())
	assert.ErrorIs(t, svc.Delete(context.Background(), folder.ID), ErrNotProspect)
}

func TestProspectService_FetchAndByUser(t *testing.T) {
	ts := testutil.NewTestContext(t)
	ctx := testutil.TestContext(t)
	db := ts.DB

	folder := testutil.CreateTestCompany(t, db, &ts.Org.ID, models.CompanyTypeFolder, "Lyon")
	p1 := testutil.CreateTestCompany(t, db, &ts.Org.ID, models.CompanyTypeProspect, "Initech")
	p2 := testutil.CreateTestCompany(t, db, &folder.ID, models.CompanyTypeProspect, "Hooli")

	svc := NewProspectService(ts.Store, auth.NewService(ts.Store, ts.JWTService), events.Noop{}, util.DiscardLogger())

	page, err := svc.Fetch(ctx, ts.Org.ID, "", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Prospects, 2)

	page, err = svc.Fetch(ctx, ts.Org.ID, "", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Prospects, 1)

	contactUser := testutil.CreateTestUser(t, db)
	testutil.CreateTestProfile(t, db, contactUser, models.RoleProspect, p2.ID)
	prospects, err := svc.ByUserID(ctx, contactUser.ID)
	require.NoError(t, err)
	require.Len(t, prospects, 1)
	assert.Equal(t, p2.ID, prospects[0].ID)

	require.NoError(t, svc.UpdateStatus(ctx, p1.ID, models.CompanyStatusWon))
	got, err := ts.Store.GetCompany(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CompanyStatusWon, got.Status)

	assert.ErrorIs(t, svc.UpdateStatus(ctx, p1.ID, "archived"), ErrInvalidStatus)
}
