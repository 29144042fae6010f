package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/propale/propale/internal/api/dto"
	"github.com/propale/propale/internal/api/validation"
	"github.com/propale/propale/internal/auth"
	"github.com/propale/propale/internal/builder"
	"github.com/propale/propale/internal/services"
	"github.com/propale/propale/internal/stepper"
	"github.com/propale/propale/internal/store"
	"github.com/propale/propale/internal/views"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message})
}

// WriteError answers with the API error body. Used by the router for
// unmatched routes.
func WriteError(w http.ResponseWriter, status int, message string) {
	writeError(w, status, message)
}

// decode reads a JSON body into v and validates its tags. It writes the 400
// itself and reports false when the request must stop there.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return validate(w, v)
}

// decodeOptional is decode for endpoints whose body may be empty.
func decodeOptional(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return validate(w, v)
}

func validate(w http.ResponseWriter, v interface{}) bool {
	if details := validation.Struct(v); len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: details})
		return false
	}
	return true
}

// decodeList reads a JSON array body. Elements are not tag-validated.
func decodeList(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func urlUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses an optional query parameter. Absent yields nil.
func queryUUID(w http.ResponseWriter, r *http.Request, name string) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+name)
		return nil, false
	}
	return &id, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil {
		return v
	}
	return fallback
}

// writeServiceError maps domain errors to status codes. Unknown errors are
// logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var extErr *services.ExternalServiceError
	if errors.As(err, &extErr) {
		writeJSON(w, http.StatusBadGateway, dto.ErrorResponse{
			Error:   "External service failed",
			Details: map[string]string{"service": extErr.Service},
		})
		return
	}

	var stageErr *services.StageError
	if errors.As(err, &stageErr) {
		status, msg := statusFor(stageErr.Err), message(stageErr.Err)
		if status == 0 {
			status, msg = http.StatusInternalServerError, "failed"
			slog.Default().Error("stage failed", "path", r.URL.Path, "stage", stageErr.Stage, "error", stageErr.Err)
		}
		writeJSON(w, status, dto.ErrorResponse{
			Error:   stageErr.Stage + ": " + msg,
			Details: map[string]string{"stage": stageErr.Stage},
		})
		return
	}

	if status := statusFor(err); status != 0 {
		writeError(w, status, message(err))
		return
	}

	slog.Default().Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, views.ErrNoDraft),
		errors.Is(err, builder.ErrItemNotFound),
		errors.Is(err, services.ErrSettingsNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict),
		errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, services.ErrContactQuotaReached),
		errors.Is(err, services.ErrUserQuotaReached),
		errors.Is(err, services.ErrFolderQuotaReached):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotProspect),
		errors.Is(err, services.ErrParentRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, builder.ErrIndexOutOfRange),
		errors.Is(err, builder.ErrInvalidItemType),
		errors.Is(err, stepper.ErrUnknownQuestion),
		errors.Is(err, stepper.ErrInvalidAnswer),
		errors.Is(err, stepper.ErrEmptyWorkflow),
		errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrStorageDisabled):
		return http.StatusServiceUnavailable
	}
	return 0
}

func message(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "Not found"
	case errors.Is(err, store.ErrConflict):
		return "Conflict"
	}
	return err.Error()
}
