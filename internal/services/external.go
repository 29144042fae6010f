package services

import (
	"time"

	"github.com/propale/propale/internal/metrics"
)

// callExternal runs fn against a third-party service, records the call and
// wraps any failure in an ExternalServiceError.
func callExternal(service string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordExternalCall(service, time.Since(start), err)
	if err != nil {
		return &ExternalServiceError{Service: service, Err: err}
	}
	return nil
}
