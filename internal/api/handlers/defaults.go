package handlers

import (
	"net/http"

	"github.com/propale/propale/internal/api/dto"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/services"
)

// DefaultsHandler serves the reusable proposal content of a company.
type DefaultsHandler struct {
	defaults *services.DefaultContentService
}

func NewDefaultsHandler(defaults *services.DefaultContentService) *DefaultsHandler {
	return &DefaultsHandler{defaults: defaults}
}

func (h *DefaultsHandler) GetDescription(w http.ResponseWriter, r *http.Request) {
	companyID, ok := urlUUID(w, r, "companyId")
	if !ok {
		return
	}
	desc, err := h.defaults.Description(r.Context(), companyID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, desc)
}

func (h *DefaultsHandler) SaveDescription(w http.ResponseWriter, r *http.Request) {
	companyID, ok := urlUUID(w, r, "companyId")
	if !ok {
		return
	}
	var req dto.DefaultDescriptionRequest
	if !decode(w, r, &req) {
		return
	}
	desc, err := h.defaults.SaveDescription(r.Context(), companyID, req.Name, req.Description)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, desc)
}

func (h *DefaultsHandler) DeleteDescription(w http.ResponseWriter, r *http.Request) {
	companyID, ok := urlUUID(w, r, "companyId")
	if !ok {
		return
	}
	if err := h.defaults.DeleteDescription(r.Context(), companyID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DefaultsHandler) ListParagraphs(w http.ResponseWriter, r *http.Request) {
	companyID, ok := urlUUID(w, r, "companyId")
	if !ok {
		return
	}
	paragraphs, err := h.defaults.Paragraphs(r.Context(), companyID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paragraphs)
}

func (h *DefaultsHandler) SaveParagraph(w http.ResponseWriter, r *http.Request) {
	companyID, ok := urlUUID(w, r, "companyId")
	if !ok {
		return
	}
	var req dto.DefaultParagraphRequest
	if !decode(w, r, &req) {
		return
	}

	paragraph := &models.DefaultParagraph{
		CompanyID:   companyID,
		Name:        req.Name,
		Description: req.Description,
		Position:    req.Position,
	}
	if req.ID != nil {
		paragraph.ID = *req.ID
	}
	saved, err := h.defaults.SaveParagraph(r.Context(), paragraph)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteParagraphs removes one paragraph when paragraphId is given, all of
// them otherwise.
func (h *DefaultsHandler) DeleteParagraphs(w http.ResponseWriter, r *http.Request) {
	companyID, ok := urlUUID(w, r, "companyId")
	if !ok {
		return
	}
	paragraphID, ok := queryUUID(w, r, "paragraphId")
	if !ok {
		return
	}
	if err := h.defaults.DeleteParagraphs(r.Context(), companyID, paragraphID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
