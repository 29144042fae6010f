package models

import "github.com/google/uuid"

// DefaultDescription is the company-wide introduction text offered in the
// proposal builder. There is at most one per company.
type DefaultDescription struct {
	Base
	CompanyID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"company_id"`
	Name        string    `json:"name"`
	Description string    `gorm:"type:text" json:"description"`
}

func (DefaultDescription) TableName() string {
	return "default_descriptions"
}

// DefaultParagraph is a reusable paragraph template of a company.
type DefaultParagraph struct {
	Base
	CompanyID   uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`
	Name        string    `json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Position    int       `json:"position"`
}

func (DefaultParagraph) TableName() string {
	return "default_paragraphs"
}
