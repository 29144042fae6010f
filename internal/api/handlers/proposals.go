package handlers

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/propale/propale/internal/api/dto"
	"github.com/propale/propale/internal/api/middleware"
	"github.com/propale/propale/internal/api/validation"
	"github.com/propale/propale/internal/builder"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/services"
	"github.com/propale/propale/internal/tasks"
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type ProposalHandler struct {
	proposals *services.ProposalService
	queue     Enqueuer
}

func NewProposalHandler(proposals *services.ProposalService, queue Enqueuer) *ProposalHandler {
	return &ProposalHandler{proposals: proposals, queue: queue}
}

// List serves GET /api/proposals?prospectId&role. Prospect callers never see
// drafts, whatever role they ask for.
func (h *ProposalHandler) List(w http.ResponseWriter, r *http.Request) {
	prospectID, err := uuid.Parse(r.URL.Query().Get("prospectId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid prospectId")
		return
	}
	role := models.Role(r.URL.Query().Get("role"))
	if isProspect(r) {
		role = models.RoleProspect
	}

	proposals, err := h.proposals.List(r.Context(), prospectID, role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proposals)
}

func (h *ProposalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	proposal, err := h.proposals.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if isProspect(r) && proposal.Status == models.ProposalStatusDraft {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

func (h *ProposalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProposalRequest
	if !decode(w, r, &req) {
		return
	}

	in := services.CreateProposalInput{ProspectID: req.ProspectID, Title: req.Title}
	if profileID := middleware.GetProfileID(r.Context()); profileID != uuid.Nil {
		in.ProfileID = &profileID
	}
	proposal, err := h.proposals.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, proposal)
}

func (h *ProposalHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var req dto.ProposalStatusRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.proposals.UpdateStatus(r.Context(), id, models.ProposalStatus(req.Status)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Status updated"})
}

// ReplaceContent serves PUT /api/proposals/{id}/content. The body is the
// ordered list of blocks; previous needs and paragraphs are dropped.
func (h *ProposalHandler) ReplaceContent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var items []builder.Item
	if !decodeList(w, r, &items) {
		return
	}
	for _, item := range items {
		if !item.Type.Valid() {
			writeServiceError(w, r, builder.ErrInvalidItemType)
			return
		}
	}

	proposal, err := h.proposals.ReplaceContent(r.Context(), builder.NewDocument(id, nil, items))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

func (h *ProposalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.proposals.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PDF serves POST /api/proposals/{id}/pdf. Uploaded documents answer with
// their key and download link; otherwise the PDF itself is returned. With
// ?async=true the upload is left to the worker.
func (h *ProposalHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		task, err := tasks.NewProposalRenderTask(tasks.ProposalRenderPayload{ProposalID: id})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		h.enqueue(w, r, task)
		return
	}

	var req validation.PDFInput
	if !decodeOptional(w, r, &req) {
		return
	}
	result, err := h.proposals.GeneratePDF(r.Context(), id, services.GeneratePDFInput{
		HTML:     req.HTML,
		Filename: req.Filename,
		Upload:   req.Upload,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if req.Upload {
		writeJSON(w, http.StatusOK, result)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.PDF)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.PDF)
}

// Send serves POST /api/proposals/{id}/send. Delivery happens in the worker.
func (h *ProposalHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var req dto.SendProposalRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	if _, err := h.proposals.Get(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	task, err := tasks.NewProposalDeliverTask(tasks.ProposalDeliverPayload{
		ProposalID:  id,
		Recipients:  req.Recipients,
		RequestedBy: middleware.GetUserID(r.Context()),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.enqueue(w, r, task)
}

func (h *ProposalHandler) enqueue(w http.ResponseWriter, r *http.Request, task *asynq.Task) {
	info, err := h.queue.Enqueue(task)
	if err != nil {
		writeServiceError(w, r, &services.ExternalServiceError{Service: "queue", Err: err})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"task_id": info.ID,
		"queue":   info.Queue,
	})
}
