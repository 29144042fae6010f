package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

// CreateCompanyRequest creates a folder or a prospect. ParentID is required
// for prospects.
type CreateCompanyRequest struct {
	Name      string     `json:"name" validate:"required,max=255"`
	Siren     string     `json:"siren,omitempty" validate:"omitempty,siren"`
	Siret     string     `json:"siret,omitempty" validate:"omitempty,siret"`
	Sector    string     `json:"sector,omitempty" validate:"omitempty,max=100"`
	ParentID  *uuid.UUID `json:"company_id,omitempty"`
	Type      string     `json:"type" validate:"omitempty,oneof=folder prospect"`
	Status    string     `json:"status,omitempty" validate:"omitempty,oneof=new contacted in_progress won lost"`
	HeatLevel string     `json:"heat_level,omitempty" validate:"omitempty,oneof=cold warm hot"`
}

// UpdateCompanyRequest only touches the fields that are present.
type UpdateCompanyRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Siren     *string `json:"siren,omitempty" validate:"omitempty,siren"`
	Siret     *string `json:"siret,omitempty" validate:"omitempty,siret"`
	Sector    *string `json:"sector,omitempty" validate:"omitempty,max=100"`
	Status    *string `json:"status,omitempty" validate:"omitempty,oneof=new contacted in_progress won lost"`
	HeatLevel *string `json:"heat_level,omitempty" validate:"omitempty,oneof=cold warm hot"`
}

type DefaultDescriptionRequest struct {
	Name        string `json:"name" validate:"max=255"`
	Description string `json:"description" validate:"required"`
}

// DefaultParagraphRequest upserts by ID; a missing ID creates a paragraph.
type DefaultParagraphRequest struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	Name        string     `json:"name" validate:"max=255"`
	Description string     `json:"description" validate:"required"`
	Position    int        `json:"position" validate:"min=0"`
}

type CreateProposalRequest struct {
	ProspectID uuid.UUID `json:"prospect_id" validate:"required"`
	Title      string    `json:"title" validate:"required,max=255"`
}

type ProposalStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft published sent accepted refused"`
}

type SendProposalRequest struct {
	Recipients []string `json:"recipients,omitempty" validate:"omitempty,dive,email"`
}

type ProspectStatusRequest struct {
	ID     uuid.UUID `json:"id" validate:"required"`
	Status string    `json:"status" validate:"required,oneof=new contacted in_progress won lost"`
}

type AccessRequest struct {
	CompanyIDs []uuid.UUID `json:"company_ids"`
}

type StepperSessionRequest struct {
	CompanyID         uuid.UUID                     `json:"company_id" validate:"required"`
	WorkflowID        uuid.UUID                     `json:"workflow_id" validate:"required"`
	ProspectID        uuid.UUID                     `json:"prospect_id" validate:"required"`
	Status            string                        `json:"status,omitempty" validate:"omitempty,oneof=in_progress completed saved"`
	CurrentQuestionID *uuid.UUID                    `json:"current_question_id,omitempty"`
	Answers           map[uuid.UUID]json.RawMessage `json:"answers"`
}

// BuilderItemRequest adds a fresh item, or copies a library item when
// LibraryID is set.
type BuilderItemRequest struct {
	LibraryID    *uuid.UUID `json:"library_id,omitempty"`
	Index        int        `json:"index"`
	Type         string     `json:"type,omitempty"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Price        float64    `json:"price,omitempty"`
	Quantity     int        `json:"quantity,omitempty" validate:"min=0"`
	ShowName     bool       `json:"show_name"`
	ShowPrice    bool       `json:"show_price"`
	ShowQuantity bool       `json:"show_quantity"`
}

type MoveRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}
