package handlers

import (
	"net/http"

	"github.com/propale/propale/internal/api/validation"
	"github.com/propale/propale/internal/services"
)

type EmailHandler struct {
	emails *services.EmailService
}

func NewEmailHandler(emails *services.EmailService) *EmailHandler {
	return &EmailHandler{emails: emails}
}

// Send serves POST /api/sendEmail. The provider is called synchronously.
func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req validation.EmailInput
	if !decode(w, r, &req) {
		return
	}
	id, err := h.emails.Send(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}
