package handlers

import (
	"errors"
	"net/http"

	"github.com/dvloznov/hikmacash/internal/api/middleware"
	"github.com/dvloznov/hikmacash/internal/domain"
)

// StatusFor maps a pipeline error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidFormat), errors.Is(err, domain.ErrMalformedPayload):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStorageFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writePipelineError writes err as {"error": msg}. Client errors carry the
// full message; server errors hide the underlying cause.
func writePipelineError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	var msg string
	switch {
	case status == http.StatusBadRequest:
		msg = err.Error()
	case status == http.StatusUnauthorized:
		msg = domain.ErrUnauthorized.Error()
	case errors.Is(err, domain.ErrStorageFailure):
		msg = domain.ErrStorageFailure.Error()
	case errors.Is(err, domain.ErrPersistenceFailure):
		msg = domain.ErrPersistenceFailure.Error()
	default:
		msg = "Internal server error"
	}
	middleware.WriteError(w, status, msg)
}
