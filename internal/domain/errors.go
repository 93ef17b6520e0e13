package domain

import "errors"

// Error kinds surfaced by the export and import pipeline. Callers match them
// with errors.Is; the wrapped cause stays reachable as well.
var (
	// ErrUnauthorized means the credential was missing or did not resolve to a user.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidFormat means the requested export format is not supported.
	ErrInvalidFormat = errors.New("invalid export format")

	// ErrMalformedPayload means the uploaded import document could not be used.
	ErrMalformedPayload = errors.New("malformed import payload")

	// ErrStorageFailure means the object store rejected an upload or a signed URL request.
	ErrStorageFailure = errors.New("storage failure")

	// ErrPersistenceFailure means the record store failed to read or replace records.
	ErrPersistenceFailure = errors.New("persistence failure")
)
