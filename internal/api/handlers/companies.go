package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/api/dto"
	"github.com/propale/propale/internal/api/validation"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/services"
	"github.com/propale/propale/internal/store"
)

type CompanyHandler struct {
	companies *services.CompanyService
}

func NewCompanyHandler(companies *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	company, err := h.companies.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

// ListRoots serves GET /api/company/allWithoutParent.
func (h *CompanyHandler) ListRoots(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companies.ListRoots(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

// ListChildren serves GET /api/company/byCompanyId/{companyId}.
func (h *CompanyHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	parentID, ok := urlUUID(w, r, "companyId")
	if !ok {
		return
	}
	companies, err := h.companies.ListChildren(r.Context(), parentID, r.URL.Query().Get("search"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

func (h *CompanyHandler) CheckSiren(w http.ResponseWriter, r *http.Request) {
	h.checkIdentifier(w, r, "siren", validation.IsValidSiren, h.companies.CheckSiren)
}

func (h *CompanyHandler) CheckSiret(w http.ResponseWriter, r *http.Request) {
	h.checkIdentifier(w, r, "siret", validation.IsValidSiret, h.companies.CheckSiret)
}

func (h *CompanyHandler) checkIdentifier(
	w http.ResponseWriter,
	r *http.Request,
	param string,
	valid func(string) bool,
	check func(context.Context, *uuid.UUID, string) (*services.IdentifierCheck, error),
) {
	value := r.URL.Query().Get(param)
	if !valid(value) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Details: map[string]string{param: "must be a valid " + param},
		})
		return
	}
	companyID, ok := queryUUID(w, r, "companyId")
	if !ok {
		return
	}

	result, err := check(r.Context(), companyID, value)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *CompanyHandler) CountAllProspects(w http.ResponseWriter, r *http.Request) {
	companyID, ok := urlUUID(w, r, "companyId")
	if !ok {
		return
	}
	count, err := h.companies.CountAllProspects(r.Context(), companyID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CountResponse{Count: count})
}

func (h *CompanyHandler) CountByParent(w http.ResponseWriter, r *http.Request) {
	parentID, ok := urlUUID(w, r, "parentId")
	if !ok {
		return
	}
	count, err := h.companies.CountChildren(r.Context(), parentID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CountResponse{Count: count})
}

func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCompanyRequest
	if !decode(w, r, &req) {
		return
	}

	company, err := h.companies.Create(r.Context(), services.CreateCompanyInput{
		Name:      req.Name,
		Siren:     req.Siren,
		Siret:     req.Siret,
		Sector:    req.Sector,
		ParentID:  req.ParentID,
		Type:      models.CompanyType(req.Type),
		Status:    models.CompanyStatus(req.Status),
		HeatLevel: models.HeatLevel(req.HeatLevel),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, company)
}

func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateCompanyRequest
	if !decode(w, r, &req) {
		return
	}

	update := store.CompanyUpdate{
		Name:   req.Name,
		Siren:  req.Siren,
		Siret:  req.Siret,
		Sector: req.Sector,
	}
	if req.Status != nil {
		status := models.CompanyStatus(*req.Status)
		update.Status = &status
	}
	if req.HeatLevel != nil {
		heat := models.HeatLevel(*req.HeatLevel)
		update.HeatLevel = &heat
	}

	company, err := h.companies.Update(r.Context(), id, update)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (h *CompanyHandler) WithParentByProfile(w http.ResponseWriter, r *http.Request) {
	profileID, ok := urlUUID(w, r, "profileId")
	if !ok {
		return
	}
	companies, err := h.companies.WithParentByProfile(r.Context(), profileID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

func (h *CompanyHandler) WithoutParentByProfile(w http.ResponseWriter, r *http.Request) {
	profileID, ok := urlUUID(w, r, "profileId")
	if !ok {
		return
	}
	companies, err := h.companies.RootsForProfile(r.Context(), profileID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

func (h *CompanyHandler) Settings(w http.ResponseWriter, r *http.Request) {
	companyID, ok := urlUUID(w, r, "companyId")
	if !ok {
		return
	}
	settings, err := h.companies.Settings(r.Context(), companyID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// CreateUser serves POST /api/company/{id}/users.
func (h *CompanyHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	companyID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var req validation.CreateUserInput
	if !decode(w, r, &req) {
		return
	}

	created, err := h.companies.CreateUser(r.Context(), companyID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
