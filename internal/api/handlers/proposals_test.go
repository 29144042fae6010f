package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/api/dto"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/tasks"
	"github.com/propale/propale/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposalHandler_List(t *testing.T) {
	ts := newTestServer(t)
	prospect, prospectToken := ts.prospectContact(t)
	testutil.CreateTestProposal(t, ts.tc.DB, prospect.ID, models.ProposalStatusDraft)
	published := testutil.CreateTestProposal(t, ts.tc.DB, prospect.ID, models.ProposalStatusPublished)
	path := "/api/proposals?prospectId=" + prospect.ID.String()

	t.Run("staff sees drafts", func(t *testing.T) {
		rr := ts.do(t, http.MethodGet, path, nil)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var proposals []models.Proposal
		testutil.ParseJSONResponse(t, rr, &proposals)
		assert.Len(t, proposals, 2)
	})

	t.Run("prospect contact does not", func(t *testing.T) {
		rr := ts.doAs(t, prospectToken, http.MethodGet, path+"&role=admin", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var proposals []models.Proposal
		testutil.ParseJSONResponse(t, rr, &proposals)
		require.Len(t, proposals, 1)
		assert.Equal(t, published.ID, proposals[0].ID)
	})

	t.Run("missing prospectId", func(t *testing.T) {
		rr := ts.do(t, http.MethodGet, "/api/proposals", nil)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestProposalHandler_Get(t *testing.T) {
	ts := newTestServer(t)
	prospect, prospectToken := ts.prospectContact(t)
	draft := testutil.CreateTestProposal(t, ts.tc.DB, prospect.ID, models.ProposalStatusDraft)

	rr := ts.do(t, http.MethodGet, "/api/proposals/"+draft.ID.String(), nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = ts.doAs(t, prospectToken, http.MethodGet, "/api/proposals/"+draft.ID.String(), nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)

	rr = ts.do(t, http.MethodGet, "/api/proposals/"+uuid.New().String(), nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestProposalHandler_Create(t *testing.T) {
	ts := newTestServer(t)
	prospect := testutil.CreateTestCompany(t, ts.tc.DB, &ts.tc.Org.ID, models.CompanyTypeProspect, "Initech")

	t.Run("draft owned by the caller", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, "/api/proposals", map[string]interface{}{
			"prospect_id": prospect.ID,
			"title":       "Refonte du site",
		})
		testutil.AssertStatus(t, rr, http.StatusCreated)

		var proposal models.Proposal
		testutil.ParseJSONResponse(t, rr, &proposal)
		assert.Equal(t, models.ProposalStatusDraft, proposal.Status)
		require.NotNil(t, proposal.ProfileID)
		assert.Equal(t, ts.tc.Profile.ID, *proposal.ProfileID)
	})

	t.Run("folder is not a prospect", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, "/api/proposals", map[string]interface{}{
			"prospect_id": ts.tc.Org.ID,
			"title":       "Nope",
		})
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("prospect contacts cannot create", func(t *testing.T) {
		_, token := ts.prospectContact(t)
		rr := ts.doAs(t, token, http.MethodPost, "/api/proposals", map[string]interface{}{
			"prospect_id": prospect.ID,
			"title":       "Nope",
		})
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})
}

func TestProposalHandler_UpdateStatus(t *testing.T) {
	ts := newTestServer(t)
	prospect := testutil.CreateTestCompany(t, ts.tc.DB, &ts.tc.Org.ID, models.CompanyTypeProspect, "Initech")
	proposal := testutil.CreateTestProposal(t, ts.tc.DB, prospect.ID, models.ProposalStatusDraft)
	path := "/api/proposals/" + proposal.ID.String() + "/update-status"

	rr := ts.do(t, http.MethodPut, path, map[string]string{"status": "published"})
	testutil.AssertStatus(t, rr, http.StatusOK)

	var stored models.Proposal
	require.NoError(t, ts.tc.DB.First(&stored, "id = ?", proposal.ID).Error)
	assert.Equal(t, models.ProposalStatusPublished, stored.Status)

	rr = ts.do(t, http.MethodPut, path, map[string]string{"status": "archived"})
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestProposalHandler_ReplaceContent(t *testing.T) {
	ts := newTestServer(t)
	prospect := testutil.CreateTestCompany(t, ts.tc.DB, &ts.tc.Org.ID, models.CompanyTypeProspect, "Initech")
	proposal := testutil.CreateTestProposal(t, ts.tc.DB, prospect.ID, models.ProposalStatusDraft)
	path := "/api/proposals/" + proposal.ID.String() + "/content"

	t.Run("replaces needs and paragraphs", func(t *testing.T) {
		rr := ts.do(t, http.MethodPut, path, []map[string]interface{}{
			{"type": "header", "name": "Contexte"},
			{"type": "need", "name": "Audit", "price": 1200, "quantity": 2, "show_price": true},
			{"type": "paragraph", "name": "Méthode", "description": "En trois temps"},
		})
		testutil.AssertStatus(t, rr, http.StatusOK)

		var updated models.Proposal
		testutil.ParseJSONResponse(t, rr, &updated)
		require.Len(t, updated.Needs, 1)
		assert.Equal(t, "Audit", updated.Needs[0].Name)
		assert.Len(t, updated.Paragraphs, 2)
	})

	t.Run("unknown block type", func(t *testing.T) {
		rr := ts.do(t, http.MethodPut, path, []map[string]interface{}{{"type": "video"}})
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("body must be a list", func(t *testing.T) {
		rr := ts.do(t, http.MethodPut, path, map[string]string{"type": "need"})
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestProposalHandler_Delete(t *testing.T) {
	ts := newTestServer(t)
	prospect := testutil.CreateTestCompany(t, ts.tc.DB, &ts.tc.Org.ID, models.CompanyTypeProspect, "Initech")
	proposal := testutil.CreateTestProposal(t, ts.tc.DB, prospect.ID, models.ProposalStatusDraft)

	rr := ts.do(t, http.MethodDelete, "/api/proposals/"+proposal.ID.String(), nil)
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = ts.do(t, http.MethodGet, "/api/proposals/"+proposal.ID.String(), nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestProposalHandler_PDF(t *testing.T) {
	ts := newTestServer(t)
	prospect := testutil.CreateTestCompany(t, ts.tc.DB, &ts.tc.Org.ID, models.CompanyTypeProspect, "Initech")
	proposal := testutil.CreateTestProposal(t, ts.tc.DB, prospect.ID, models.ProposalStatusPublished)
	path := "/api/proposals/" + proposal.ID.String() + "/pdf"

	t.Run("returns the document", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, path, nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Header().Get("Content-Disposition"), "proposition-"+proposal.ID.String()+".pdf")
		assert.Equal(t, "%PDF-1.7 test", rr.Body.String())
		assert.Contains(t, ts.pdf.html, "Initech")
	})

	t.Run("custom html and filename", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, path, map[string]string{
			"html":     "<h1>Sur mesure</h1>",
			"filename": "offre.pdf",
		})
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Contains(t, rr.Header().Get("Content-Disposition"), "offre.pdf")
		assert.Equal(t, "<h1>Sur mesure</h1>", ts.pdf.html)
	})

	t.Run("upload without storage", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, path, map[string]bool{"upload": true})
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	})

	t.Run("renderer failure", func(t *testing.T) {
		ts.pdf.err = errors.New("chromium crashed")
		defer func() { ts.pdf.err = nil }()

		rr := ts.do(t, http.MethodPost, path, nil)
		testutil.AssertStatus(t, rr, http.StatusBadGateway)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "pdf", resp.Details["service"])
	})

	t.Run("async render is queued", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, path+"?async=true", nil)
		testutil.AssertStatus(t, rr, http.StatusAccepted)

		require.NotEmpty(t, ts.queue.tasks)
		assert.Equal(t, tasks.TypeProposalRender, ts.queue.tasks[len(ts.queue.tasks)-1].Type())
	})
}

func TestProposalHandler_Send(t *testing.T) {
	ts := newTestServer(t)
	prospect := testutil.CreateTestCompany(t, ts.tc.DB, &ts.tc.Org.ID, models.CompanyTypeProspect, "Initech")
	proposal := testutil.CreateTestProposal(t, ts.tc.DB, prospect.ID, models.ProposalStatusPublished)
	path := "/api/proposals/" + proposal.ID.String() + "/send"

	t.Run("enqueues delivery", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, path, map[string][]string{"recipients": {"ceo@initech.fr"}})
		testutil.AssertStatus(t, rr, http.StatusAccepted)

		var resp map[string]string
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "task-1", resp["task_id"])

		require.Len(t, ts.queue.tasks, 1)
		assert.Equal(t, tasks.TypeProposalDeliver, ts.queue.tasks[0].Type())
		assert.Contains(t, string(ts.queue.tasks[0].Payload()), "ceo@initech.fr")
	})

	t.Run("invalid recipient", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, path, map[string][]string{"recipients": {"not-an-email"}})
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("unknown proposal", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, "/api/proposals/"+uuid.New().String()+"/send", nil)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})

	t.Run("queue unavailable", func(t *testing.T) {
		ts.queue.err = errors.New("redis down")
		defer func() { ts.queue.err = nil }()

		rr := ts.do(t, http.MethodPost, path, nil)
		testutil.AssertStatus(t, rr, http.StatusBadGateway)
	})
}
