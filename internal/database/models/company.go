package models

import "github.com/google/uuid"

type CompanyType string

const (
	// CompanyTypeFolder is a plain grouping node; top-level folders are the
	// customer organisations.
	CompanyTypeFolder   CompanyType = "folder"
	CompanyTypeProspect CompanyType = "prospect"
)

type CompanyStatus string

const (
	CompanyStatusNew        CompanyStatus = "new"
	CompanyStatusContacted  CompanyStatus = "contacted"
	CompanyStatusInProgress CompanyStatus = "in_progress"
	CompanyStatusWon        CompanyStatus = "won"
	CompanyStatusLost       CompanyStatus = "lost"
)

type HeatLevel string

const (
	HeatLevelCold HeatLevel = "cold"
	HeatLevelWarm HeatLevel = "warm"
	HeatLevelHot  HeatLevel = "hot"
)

// Company is a node of the organisation tree. CompanyID points at the parent;
// a nil parent marks a root organisation whose settings govern its subtree.
type Company struct {
	Base
	Name      string        `gorm:"not null;index" json:"name"`
	Siren     string        `gorm:"size:9;index" json:"siren,omitempty"`
	Siret     string        `gorm:"size:14;index" json:"siret,omitempty"`
	Sector    string        `json:"sector,omitempty"`
	CompanyID *uuid.UUID    `gorm:"type:uuid;index" json:"company_id,omitempty"`
	Type      CompanyType   `gorm:"not null;index;default:'folder'" json:"type"`
	Status    CompanyStatus `gorm:"index;default:'new'" json:"status"`
	HeatLevel HeatLevel     `gorm:"default:'cold'" json:"heat_level"`

	// Relationships
	Parent   *Company  `gorm:"foreignKey:CompanyID" json:"-"`
	Children []Company `gorm:"foreignKey:CompanyID" json:"-"`
}

func (Company) TableName() string {
	return "companies"
}

func (c *Company) IsRoot() bool {
	return c.CompanyID == nil
}

func (c *Company) IsProspect() bool {
	return c.Type == CompanyTypeProspect
}

// CompanySettings carries the licence quotas and feature flags of a root
// organisation.
type CompanySettings struct {
	Base
	CompanyID           uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"company_id"`
	WorkflowsAllowed    int       `json:"workflows_allowed"`
	UsersAllowed        int       `json:"users_allowed"`
	ContactsPerProspect int       `json:"contacts_per_prospect"`
	FoldersAllowed      int       `json:"folders_allowed"`
	Vision              bool      `json:"vision"`
	CompositionWorkflow bool      `json:"composition_workflow"`
	LicenseType         string    `gorm:"default:'starter'" json:"license_type"`

	Company *Company `gorm:"foreignKey:CompanyID" json:"-"`
}

func (CompanySettings) TableName() string {
	return "company_settings"
}
