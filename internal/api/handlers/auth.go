package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/propale/propale/internal/api/dto"
	"github.com/propale/propale/internal/api/middleware"
	"github.com/propale/propale/internal/auth"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/store"
)

type AuthHandler struct {
	authService *auth.Service
	store       *store.Store
	tokenTTL    time.Duration
}

func NewAuthHandler(authService *auth.Service, st *store.Store, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{authService: authService, store: st, tokenTTL: tokenTTL}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		status, msg := loginFailure(err)
		writeJSON(w, status, dto.ErrorResponse{Error: msg})
		return
	}

	setTokenCookie(w, r, resp.Token, h.tokenTTL)
	writeJSON(w, http.StatusOK, dto.NewAuthResponse(resp.Token, resp.User, resp.Profile))
}

func loginFailure(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, auth.ErrInactiveUser):
		return http.StatusForbidden, "Account is inactive"
	case errors.Is(err, auth.ErrBlockedProfile):
		return http.StatusForbidden, "Account is blocked"
	default:
		return http.StatusInternalServerError, "Login failed"
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearTokenCookie(w)
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}

// Me returns the profile behind the current token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.GetUserByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	profile, err := h.store.GetProfile(r.Context(), middleware.GetProfileID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		User    dto.UserDTO    `json:"user"`
		Profile dto.ProfileDTO `json:"profile"`
	}{
		User:    dto.UserDTO{ID: user.ID.String(), Email: user.Email},
		Profile: dto.NewProfileDTO(profile),
	})
}

func setTokenCookie(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

func clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func isProspect(r *http.Request) bool {
	return middleware.GetUserRole(r.Context()) == models.RoleProspect
}
