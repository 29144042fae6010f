package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/api/dto"
	"github.com/propale/propale/internal/views"
)

type AccessHandler struct {
	view *views.AccessView
}

func NewAccessHandler(view *views.AccessView) *AccessHandler {
	return &AccessHandler{view: view}
}

func (h *AccessHandler) Get(w http.ResponseWriter, r *http.Request) {
	profileID, ok := urlUUID(w, r, "profileId")
	if !ok {
		return
	}
	ids, err := h.view.Load(r.Context(), profileID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.AccessRequest{CompanyIDs: nonNil(ids)})
}

// Save replaces the access grants of a profile with the given company set.
func (h *AccessHandler) Save(w http.ResponseWriter, r *http.Request) {
	profileID, ok := urlUUID(w, r, "profileId")
	if !ok {
		return
	}
	var req dto.AccessRequest
	if !decode(w, r, &req) {
		return
	}
	ids, err := h.view.Save(r.Context(), profileID, req.CompanyIDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.AccessRequest{CompanyIDs: nonNil(ids)})
}

func nonNil(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
