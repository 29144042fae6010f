package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/api/dto"
	"github.com/propale/propale/internal/builder"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/services"
	"github.com/propale/propale/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailHandler_Send(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]string{
		"to":      "ceo@initech.fr",
		"subject": "Votre proposition",
		"html":    "<p>Bonjour</p>",
	}

	t.Run("delivered", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, "/api/sendEmail", body)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp map[string]string
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "msg_1", resp["id"])
		require.Len(t, ts.mail.sent, 1)
		assert.Equal(t, []string{"ceo@initech.fr"}, ts.mail.sent[0].To)
	})

	t.Run("provider failure", func(t *testing.T) {
		ts.mail.err = errors.New("rate limited")
		defer func() { ts.mail.err = nil }()

		rr := ts.do(t, http.MethodPost, "/api/sendEmail", body)
		testutil.AssertStatus(t, rr, http.StatusBadGateway)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "email", resp.Details["service"])
	})

	t.Run("invalid recipient", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, "/api/sendEmail", map[string]string{
			"to":      "nobody",
			"subject": "x",
			"html":    "x",
		})
		testutil.AssertStatus(t, rr, http.StatusBadRequest)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "Invalid email format", resp.Details["to"])
	})
}

func TestRouter_Fallbacks(t *testing.T) {
	ts := newTestServer(t)

	t.Run("unknown route answers JSON", func(t *testing.T) {
		rr := ts.do(t, http.MethodGet, "/api/nope", nil)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	})

	t.Run("wrong method answers JSON", func(t *testing.T) {
		rr := ts.do(t, http.MethodPatch, "/api/sendEmail", nil)
		testutil.AssertStatus(t, rr, http.StatusMethodNotAllowed)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	})

	t.Run("legacy host is redirected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://propale.co/api/me?x=1", nil)
		rr := serve(ts, req)
		testutil.AssertStatus(t, rr, http.StatusPermanentRedirect)
		assert.Equal(t, "https://app.propale.co/api/me?x=1", rr.Header().Get("Location"))
	})

	t.Run("health", func(t *testing.T) {
		rr := ts.doAs(t, "", http.MethodGet, "/health", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Contains(t, rr.Body.String(), `"database":"healthy"`)
	})
}

func TestStepperHandler(t *testing.T) {
	ts := newTestServer(t)
	prospect, prospectToken := ts.prospectContact(t)
	wf := testutil.CreateTestWorkflow(t, ts.tc.DB, ts.tc.Org.ID, 1, 1, 2)
	questions := wf.Steps[0].SubSteps[0].Questions

	sessionPath := "/api/stepper/session?companyId=" + ts.tc.Org.ID.String() +
		"&workflowId=" + wf.ID.String() + "&prospectId=" + prospect.ID.String()

	t.Run("workflow tree", func(t *testing.T) {
		rr := ts.doAs(t, prospectToken, http.MethodGet, "/api/workflows/"+wf.ID.String(), nil)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var got models.Workflow
		testutil.ParseJSONResponse(t, rr, &got)
		require.Len(t, got.Steps, 1)
		assert.Len(t, got.Steps[0].SubSteps[0].Questions, 2)
	})

	t.Run("fresh session", func(t *testing.T) {
		rr := ts.doAs(t, prospectToken, http.MethodGet, sessionPath, nil)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var state services.SessionState
		testutil.ParseJSONResponse(t, rr, &state)
		assert.Equal(t, 2, state.Total)
		assert.False(t, state.Complete)
		assert.Empty(t, state.Session.Responses)
	})

	t.Run("save then resume", func(t *testing.T) {
		rr := ts.doAs(t, prospectToken, http.MethodPost, "/api/stepper/session", map[string]interface{}{
			"company_id":  ts.tc.Org.ID,
			"workflow_id": wf.ID,
			"prospect_id": prospect.ID,
			"answers":     map[string]string{questions[0].ID.String(): "Oui"},
		})
		testutil.AssertStatus(t, rr, http.StatusOK)

		var saved services.SessionState
		testutil.ParseJSONResponse(t, rr, &saved)
		assert.Equal(t, questions[1].ID, saved.Current.QuestionID)

		rr = ts.doAs(t, prospectToken, http.MethodGet, sessionPath, nil)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var loaded services.SessionState
		testutil.ParseJSONResponse(t, rr, &loaded)
		require.Len(t, loaded.Session.Responses, 1)
		assert.JSONEq(t, `"Oui"`, string(loaded.Session.Responses[0].Answer))
		assert.Equal(t, questions[1].ID, loaded.Current.QuestionID)
	})

	t.Run("unknown question", func(t *testing.T) {
		rr := ts.doAs(t, prospectToken, http.MethodPost, "/api/stepper/session", map[string]interface{}{
			"company_id":  ts.tc.Org.ID,
			"workflow_id": wf.ID,
			"prospect_id": prospect.ID,
			"answers":     map[string]string{uuid.New().String(): "Non"},
		})
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("missing query parameter", func(t *testing.T) {
		rr := ts.doAs(t, prospectToken, http.MethodGet, "/api/stepper/session?companyId="+ts.tc.Org.ID.String(), nil)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestAccessHandler(t *testing.T) {
	ts := newTestServer(t)
	folder := testutil.CreateTestCompany(t, ts.tc.DB, &ts.tc.Org.ID, models.CompanyTypeFolder, "Lyon")
	user := testutil.CreateTestUser(t, ts.tc.DB)
	sales := testutil.CreateTestProfile(t, ts.tc.DB, user, models.RoleSales, ts.tc.Org.ID)
	path := "/api/profile/" + sales.ID.String() + "/access"

	rr := ts.do(t, http.MethodGet, path, nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var access dto.AccessRequest
	testutil.ParseJSONResponse(t, rr, &access)
	assert.Equal(t, []uuid.UUID{ts.tc.Org.ID}, access.CompanyIDs)

	rr = ts.do(t, http.MethodPut, path, dto.AccessRequest{CompanyIDs: []uuid.UUID{folder.ID, folder.ID}})
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.ParseJSONResponse(t, rr, &access)
	assert.Equal(t, []uuid.UUID{folder.ID}, access.CompanyIDs)

	rr = ts.do(t, http.MethodGet, path, nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.ParseJSONResponse(t, rr, &access)
	assert.Equal(t, []uuid.UUID{folder.ID}, access.CompanyIDs)

	rr = ts.do(t, http.MethodPut, path, dto.AccessRequest{})
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.JSONEq(t, `{"company_ids":[]}`, rr.Body.String())
}

func TestDefaultsHandler(t *testing.T) {
	ts := newTestServer(t)
	org := ts.tc.Org.ID.String()

	t.Run("description lifecycle", func(t *testing.T) {
		rr := ts.do(t, http.MethodGet, "/api/default-description/"+org, nil)
		testutil.AssertStatus(t, rr, http.StatusNotFound)

		rr = ts.do(t, http.MethodPost, "/api/default-description/"+org, map[string]string{
			"name":        "Présentation",
			"description": "Agence web lyonnaise",
		})
		testutil.AssertStatus(t, rr, http.StatusOK)

		rr = ts.do(t, http.MethodPost, "/api/default-description/"+org, map[string]string{
			"name":        "Présentation",
			"description": "Agence web parisienne",
		})
		testutil.AssertStatus(t, rr, http.StatusOK)

		rr = ts.do(t, http.MethodGet, "/api/default-description/"+org, nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		var desc models.DefaultDescription
		testutil.ParseJSONResponse(t, rr, &desc)
		assert.Equal(t, "Agence web parisienne", desc.Description)

		rr = ts.do(t, http.MethodDelete, "/api/default-description/"+org, nil)
		testutil.AssertStatus(t, rr, http.StatusNoContent)

		rr = ts.do(t, http.MethodDelete, "/api/default-description/"+org, nil)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})

	t.Run("description is required", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, "/api/default-description/"+org, map[string]string{"name": "Vide"})
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("paragraphs", func(t *testing.T) {
		var created models.DefaultParagraph
		for i, name := range []string{"Méthode", "Garanties"} {
			rr := ts.do(t, http.MethodPost, "/api/default-paragraph/"+org, map[string]interface{}{
				"name":        name,
				"description": name + " détaillée",
				"position":    i,
			})
			testutil.AssertStatus(t, rr, http.StatusOK)
			testutil.ParseJSONResponse(t, rr, &created)
		}

		rr := ts.do(t, http.MethodGet, "/api/default-paragraph/"+org, nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		var paragraphs []models.DefaultParagraph
		testutil.ParseJSONResponse(t, rr, &paragraphs)
		require.Len(t, paragraphs, 2)
		assert.Equal(t, "Méthode", paragraphs[0].Name)

		rr = ts.do(t, http.MethodDelete, "/api/default-paragraph/"+org+"?paragraphId="+created.ID.String(), nil)
		testutil.AssertStatus(t, rr, http.StatusNoContent)

		rr = ts.do(t, http.MethodGet, "/api/default-paragraph/"+org, nil)
		testutil.ParseJSONResponse(t, rr, &paragraphs)
		assert.Len(t, paragraphs, 1)

		rr = ts.do(t, http.MethodDelete, "/api/default-paragraph/"+org, nil)
		testutil.AssertStatus(t, rr, http.StatusNoContent)

		rr = ts.do(t, http.MethodGet, "/api/default-paragraph/"+org, nil)
		testutil.ParseJSONResponse(t, rr, &paragraphs)
		assert.Empty(t, paragraphs)
	})
}

func TestBuilderHandler(t *testing.T) {
	ts := newTestServer(t)
	prospect := testutil.CreateTestCompany(t, ts.tc.DB, &ts.tc.Org.ID, models.CompanyTypeProspect, "Initech")
	proposal := testutil.CreateTestProposal(t, ts.tc.DB, prospect.ID, models.ProposalStatusDraft)
	path := "/api/builder/" + proposal.ID.String()

	rr := ts.do(t, http.MethodPost, "/api/default-description/"+ts.tc.Org.ID.String(), map[string]string{
		"name":        "Présentation",
		"description": "Agence web",
	})
	testutil.AssertStatus(t, rr, http.StatusOK)

	var doc builder.Document

	rr = ts.do(t, http.MethodGet, path, nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.ParseJSONResponse(t, rr, &doc)
	require.Len(t, doc.Library, 1)
	assert.Empty(t, doc.Content)

	rr = ts.do(t, http.MethodPost, path+"/items", map[string]interface{}{
		"library_id": doc.Library[0].ID,
		"index":      0,
	})
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = ts.do(t, http.MethodPost, path+"/items", map[string]interface{}{
		"type":       "need",
		"name":       "Maquettes",
		"price":      800,
		"quantity":   3,
		"show_price": true,
	})
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.ParseJSONResponse(t, rr, &doc)
	require.Len(t, doc.Content, 2)
	assert.Equal(t, builder.ItemDescription, doc.Content[0].Type)

	rr = ts.do(t, http.MethodPost, path+"/move", map[string]int{"from": 1, "to": 0})
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.ParseJSONResponse(t, rr, &doc)
	assert.Equal(t, builder.ItemNeed, doc.Content[0].Type)

	rr = ts.do(t, http.MethodPost, path+"/move", map[string]int{"from": 0, "to": 5})
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	rr = ts.do(t, http.MethodPost, path+"/items", map[string]interface{}{"type": "video", "name": "x"})
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	rr = ts.do(t, http.MethodDelete, path+"/items/"+uuid.New().String(), nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)

	rr = ts.do(t, http.MethodPost, path+"/save", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var saved models.Proposal
	require.NoError(t, ts.tc.DB.Preload("Needs").First(&saved, "id = ?", proposal.ID).Error)
	require.Len(t, saved.Needs, 1)
	assert.Equal(t, "Maquettes", saved.Needs[0].Name)

	rr = ts.do(t, http.MethodPost, path+"/save", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)

	rr = ts.do(t, http.MethodDelete, path, nil)
	testutil.AssertStatus(t, rr, http.StatusNoContent)
}
