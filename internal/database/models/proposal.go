package models

import "github.com/google/uuid"

type ProposalStatus string

const (
	ProposalStatusDraft     ProposalStatus = "draft"
	ProposalStatusPublished ProposalStatus = "published"
	ProposalStatusSent      ProposalStatus = "sent"
	ProposalStatusAccepted  ProposalStatus = "accepted"
	ProposalStatusRefused   ProposalStatus = "refused"
)

func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalStatusDraft, ProposalStatusPublished, ProposalStatusSent,
		ProposalStatusAccepted, ProposalStatusRefused:
		return true
	}
	return false
}

// Proposal is a commercial proposal addressed to a prospect company.
type Proposal struct {
	Base
	ProspectID uuid.UUID      `gorm:"type:uuid;index;not null" json:"prospect_id"`
	ProfileID  *uuid.UUID     `gorm:"type:uuid;index" json:"profile_id,omitempty"`
	Title      string         `gorm:"not null" json:"title"`
	Status     ProposalStatus `gorm:"not null;index;default:'draft'" json:"status"`
	PDFKey     string         `json:"pdf_key,omitempty"`

	Prospect   *Company    `gorm:"foreignKey:ProspectID" json:"-"`
	Needs      []Need      `gorm:"foreignKey:ProposalID" json:"needs,omitempty"`
	Paragraphs []Paragraph `gorm:"foreignKey:ProposalID" json:"paragraphs,omitempty"`
}

func (Proposal) TableName() string {
	return "proposals"
}

// Need is a priced line of a proposal. Position is the index of the line in
// the whole document, shared with paragraphs.
type Need struct {
	Row
	ProposalID   uuid.UUID `gorm:"type:uuid;index;not null" json:"proposal_id"`
	Position     int       `gorm:"not null" json:"position"`
	Name         string    `json:"name"`
	Description  string    `gorm:"type:text" json:"description,omitempty"`
	Price        float64   `json:"price"`
	Quantity     int       `json:"quantity"`
	ShowName     bool      `json:"show_name"`
	ShowPrice    bool      `json:"show_price"`
	ShowQuantity bool      `json:"show_quantity"`
}

func (Need) TableName() string {
	return "needs"
}

type ParagraphType string

const (
	ParagraphTypeDescription ParagraphType = "description"
	ParagraphTypeParagraph   ParagraphType = "paragraph"
	ParagraphTypeHeader      ParagraphType = "header"
	ParagraphTypePrice       ParagraphType = "price"
)

// Paragraph is a non-priced block of a proposal (free text, header, price
// summary).
type Paragraph struct {
	Row
	ProposalID  uuid.UUID     `gorm:"type:uuid;index;not null" json:"proposal_id"`
	Position    int           `gorm:"not null" json:"position"`
	Type        ParagraphType `gorm:"not null;default:'paragraph'" json:"type"`
	Name        string        `json:"name"`
	Description string        `gorm:"type:text" json:"description,omitempty"`
	Price       float64       `json:"price,omitempty"`
	ShowName    bool          `json:"show_name"`
	ShowPrice   bool          `json:"show_price"`
}

func (Paragraph) TableName() string {
	return "paragraphs"
}
