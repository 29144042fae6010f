package models

import "github.com/google/uuid"

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleSales      Role = "sales"
	RoleProspect   Role = "prospect"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleSales, RoleProspect:
		return true
	}
	return false
}

// Profile is the business identity of a user. Contacts of a prospect are
// profiles with the prospect role.
type Profile struct {
	Base
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Firstname string     `json:"firstname"`
	Lastname  string     `json:"lastname"`
	Email     string     `gorm:"index;not null" json:"email"`
	Phone     string     `json:"phone,omitempty"`
	JobTitle  string     `json:"job_title,omitempty"`
	Role      Role       `gorm:"not null;index;default:'sales'" json:"role"`
	Blocked   bool       `json:"blocked"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}

// CompanyProfile is the association between profiles and the companies they
// may access.
type CompanyProfile struct {
	CompanyID uuid.UUID `gorm:"type:uuid;primaryKey" json:"company_id"`
	ProfileID uuid.UUID `gorm:"type:uuid;primaryKey" json:"profile_id"`
}

func (CompanyProfile) TableName() string {
	return "companies_profiles"
}
