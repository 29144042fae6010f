package dto

import (
	"github.com/propale/propale/internal/database/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type AuthResponse struct {
	Token   string     `json:"token"`
	User    UserDTO    `json:"user"`
	Profile ProfileDTO `json:"profile"`
}

type UserDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type ProfileDTO struct {
	ID        string `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

func NewAuthResponse(token string, user *models.User, profile *models.Profile) AuthResponse {
	return AuthResponse{
		Token:   token,
		User:    UserDTO{ID: user.ID.String(), Email: user.Email},
		Profile: NewProfileDTO(profile),
	}
}

func NewProfileDTO(p *models.Profile) ProfileDTO {
	return ProfileDTO{
		ID:        p.ID.String(),
		Firstname: p.Firstname,
		Lastname:  p.Lastname,
		Email:     p.Email,
		Role:      string(p.Role),
	}
}
