package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/propale/propale/internal/services"
)

// ProposalWorker is the part of the proposal service the worker drives.
type ProposalWorker interface {
	Deliver(ctx context.Context, id uuid.UUID, recipients []string) error
	GeneratePDF(ctx context.Context, id uuid.UUID, in services.GeneratePDFInput) (*services.PDFResult, error)
}

type Handler struct {
	proposals ProposalWorker
	logger    *slog.Logger
}

func NewHandler(proposals ProposalWorker, logger *slog.Logger) *Handler {
	return &Handler{proposals: proposals, logger: logger}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeProposalDeliver, h.HandleProposalDeliver)
	mux.HandleFunc(TypeProposalRender, h.HandleProposalRender)
}

func (h *Handler) HandleProposalDeliver(ctx context.Context, t *asynq.Task) error {
	var payload ProposalDeliverPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	h.logger.Info("delivering proposal",
		"proposal_id", payload.ProposalID,
		"recipients", len(payload.Recipients),
		"requested_by", payload.RequestedBy,
	)

	if err := h.proposals.Deliver(ctx, payload.ProposalID, payload.Recipients); err != nil {
		h.logger.Error("proposal delivery failed", "proposal_id", payload.ProposalID, "error", err)
		return fmt.Errorf("deliver proposal %s: %w", payload.ProposalID, err)
	}
	return nil
}

func (h *Handler) HandleProposalRender(ctx context.Context, t *asynq.Task) error {
	var payload ProposalRenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	res, err := h.proposals.GeneratePDF(ctx, payload.ProposalID, services.GeneratePDFInput{Upload: true})
	if err != nil {
		h.logger.Error("proposal render failed", "proposal_id", payload.ProposalID, "error", err)
		return fmt.Errorf("render proposal %s: %w", payload.ProposalID, err)
	}
	h.logger.Info("proposal rendered", "proposal_id", payload.ProposalID, "key", res.Key)
	return nil
}
