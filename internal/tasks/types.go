package tasks

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/propale/propale/pkg/queue"
)

// Task type names
const (
	TypeProposalDeliver = "proposal:deliver"
	TypeProposalRender  = "proposal:render"
)

// ProposalDeliverPayload asks the worker to email a proposal. Empty
// recipients means every contact of the prospect.
type ProposalDeliverPayload struct {
	ProposalID  uuid.UUID `json:"proposal_id"`
	Recipients  []string  `json:"recipients,omitempty"`
	RequestedBy uuid.UUID `json:"requested_by"`
}

func NewProposalDeliverTask(payload ProposalDeliverPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	// Delivery is not retried: a second attempt could email the prospect twice.
	return asynq.NewTask(TypeProposalDeliver, data, asynq.Queue(queue.QueueCritical), asynq.MaxRetry(0)), nil
}

// ProposalRenderPayload asks the worker to regenerate and store the PDF of a
// proposal.
type ProposalRenderPayload struct {
	ProposalID uuid.UUID `json:"proposal_id"`
}

func NewProposalRenderTask(payload ProposalRenderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeProposalRender, data, asynq.Queue(queue.QueueDefault), asynq.MaxRetry(0)), nil
}
