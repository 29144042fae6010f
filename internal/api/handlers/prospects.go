package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/api/dto"
	"github.com/propale/propale/internal/api/middleware"
	"github.com/propale/propale/internal/api/validation"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/services"
	"github.com/propale/propale/internal/views"
)

// FetchScopeHeader names the screen a prospect fetch belongs to. A new fetch
// supersedes the previous one of the same caller and scope.
const FetchScopeHeader = "X-Fetch-Scope"

type ProspectHandler struct {
	prospects *services.ProspectService
	contacts  *services.ContactService
	latest    *views.Latest
}

func NewProspectHandler(prospects *services.ProspectService, contacts *services.ContactService, latest *views.Latest) *ProspectHandler {
	return &ProspectHandler{prospects: prospects, contacts: contacts, latest: latest}
}

func (h *ProspectHandler) ByUserID(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlUUID(w, r, "userId")
	if !ok {
		return
	}
	prospects, err := h.prospects.ByUserID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prospects)
}

// Fetch serves GET /api/prospect/fetch?companyId&search&page&pageSize. When
// the caller is identified, a newer fetch cancels this one, which then
// answers 409 instead of stale data.
func (h *ProspectHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(r.URL.Query().Get("companyId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid companyId")
		return
	}
	params := dto.NewPageRequest(queryInt(r, "page", 1), queryInt(r, "pageSize", dto.DefaultPageSize))
	search := r.URL.Query().Get("search")

	ctx := r.Context()
	var fetch *views.Fetch
	if scope := fetchScope(r); scope != "" {
		fetch = h.latest.Start(ctx, scope)
		defer fetch.Release()
		ctx = fetch.Context()
	}

	page, err := h.prospects.Fetch(ctx, companyID, search, params.Offset(), params.PageSize)
	if err != nil {
		if fetch != nil && ctx.Err() != nil && r.Context().Err() == nil {
			writeError(w, http.StatusConflict, "Superseded by a newer request")
			return
		}
		writeServiceError(w, r, err)
		return
	}

	resp := dto.NewPage(params, page.Prospects, page.Total)
	if fetch == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if !fetch.Commit(func() { writeJSON(w, http.StatusOK, resp) }) {
		writeError(w, http.StatusConflict, "Superseded by a newer request")
	}
}

// fetchScope keys superseding fetches by caller. The optional header splits
// one caller into independent screens.
func fetchScope(r *http.Request) string {
	caller := r.Header.Get(FetchScopeHeader)
	if userID := middleware.GetUserID(r.Context()); userID != uuid.Nil {
		caller = userID.String() + ":" + caller
	}
	if caller == "" {
		return ""
	}
	return "prospects:" + caller
}

// UpdateStatus serves PUT /api/prospect/update-status.
func (h *ProspectHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.ProspectStatusRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.prospects.UpdateStatus(r.Context(), req.ID, models.CompanyStatus(req.Status)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Status updated"})
}

func (h *ProspectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.prospects.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Prospect deleted"})
}

func (h *ProspectHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	prospectID, ok := urlUUID(w, r, "prospectId")
	if !ok {
		return
	}
	contacts, err := h.contacts.List(r.Context(), prospectID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (h *ProspectHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	prospectID, ok := urlUUID(w, r, "prospectId")
	if !ok {
		return
	}
	var req validation.ContactInput
	if !decode(w, r, &req) {
		return
	}
	profile, err := h.contacts.Create(r.Context(), prospectID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}
