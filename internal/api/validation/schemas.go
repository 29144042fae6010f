package validation

// EmailInput is the body of POST /api/sendEmail.
type EmailInput struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=255"`
	HTML    string `json:"html" validate:"required"`
}

// PDFInput is the body of POST /api/proposals/{id}/pdf. An empty HTML renders
// the stored proposal.
type PDFInput struct {
	HTML     string `json:"html,omitempty"`
	Filename string `json:"filename,omitempty" validate:"omitempty,max=200"`
	Upload   bool   `json:"upload"`
}

type ProfileInput struct {
	Firstname string `json:"firstname" validate:"required,max=100"`
	Lastname  string `json:"lastname" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,phone"`
	JobTitle  string `json:"job_title,omitempty" validate:"omitempty,max=100"`
	Role      string `json:"role" validate:"required,oneof=super_admin admin sales prospect"`
}

type CompanyInput struct {
	Name   string `json:"name" validate:"required,max=255"`
	Siren  string `json:"siren,omitempty" validate:"omitempty,siren"`
	Siret  string `json:"siret,omitempty" validate:"omitempty,siret"`
	Sector string `json:"sector,omitempty" validate:"omitempty,max=100"`
}

type UserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

// CreateUserInput drives the create-user workflow: optional new company,
// auth user and profile, associated together.
type CreateUserInput struct {
	Company *CompanyInput `json:"company,omitempty" validate:"omitempty"`
	User    UserInput     `json:"user"`
	Profile ProfileInput  `json:"profile"`
}

// ContactInput is a prospect contact. The auth account gets a generated
// password.
type ContactInput struct {
	Firstname string `json:"firstname" validate:"required,max=100"`
	Lastname  string `json:"lastname" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,phone"`
	JobTitle  string `json:"job_title,omitempty" validate:"omitempty,max=100"`
}
