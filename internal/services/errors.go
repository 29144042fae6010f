// Package services holds the business rules of Propale. Services compose
// store calls and external clients; handlers only translate HTTP.
package services

import (
	"errors"
	"fmt"
)

var (
	ErrCompanyCycle        = errors.New("company hierarchy contains a cycle")
	ErrTreeTooDeep         = errors.New("company hierarchy exceeds the maximum depth")
	ErrSettingsNotFound    = errors.New("root organisation has no settings")
	ErrContactQuotaReached = errors.New("contact quota reached for this prospect")
	ErrUserQuotaReached    = errors.New("user quota reached for this organisation")
	ErrFolderQuotaReached  = errors.New("folder quota reached for this organisation")
	ErrNotProspect         = errors.New("company is not a prospect")
	ErrParentRequired      = errors.New("a prospect must belong to a folder")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrStorageDisabled     = errors.New("document storage is not configured")
)

// ExternalServiceError wraps a failure of a third-party dependency (email
// provider, PDF renderer, object storage).
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s service failed: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// StageError names the step of a multi-step operation that failed. Earlier
// steps are not rolled back.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
