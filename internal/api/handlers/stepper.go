package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/api/dto"
	"github.com/propale/propale/internal/api/middleware"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/services"
	"github.com/propale/propale/internal/store"
)

type StepperHandler struct {
	stepper *services.StepperService
}

func NewStepperHandler(stepper *services.StepperService) *StepperHandler {
	return &StepperHandler{stepper: stepper}
}

func (h *StepperHandler) Workflow(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	wf, err := h.stepper.Workflow(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

// LoadSession serves GET /api/stepper/session?companyId&workflowId&prospectId
// for the calling profile.
func (h *StepperHandler) LoadSession(w http.ResponseWriter, r *http.Request) {
	key := store.SessionKey{ProfileID: middleware.GetProfileID(r.Context())}
	for name, dst := range map[string]*uuid.UUID{
		"companyId":  &key.CompanyID,
		"workflowId": &key.WorkflowID,
		"prospectId": &key.ProspectID,
	} {
		id, err := uuid.Parse(r.URL.Query().Get(name))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid "+name)
			return
		}
		*dst = id
	}

	state, err := h.stepper.Load(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// SaveSession serves POST /api/stepper/session. Every previous answer of the
// session is replaced by the submitted ones.
func (h *StepperHandler) SaveSession(w http.ResponseWriter, r *http.Request) {
	var req dto.StepperSessionRequest
	if !decode(w, r, &req) {
		return
	}

	state, err := h.stepper.Save(r.Context(), services.SaveSessionInput{
		Key: store.SessionKey{
			CompanyID:  req.CompanyID,
			WorkflowID: req.WorkflowID,
			ProfileID:  middleware.GetProfileID(r.Context()),
			ProspectID: req.ProspectID,
		},
		Status:            models.StepperStatus(req.Status),
		CurrentQuestionID: req.CurrentQuestionID,
		Answers:           req.Answers,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
