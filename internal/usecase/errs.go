package usecase

import "errors"

// Sentinel errors the handlers map to HTTP status codes with errors.Is.
// Storage failures are returned wrapped but unclassified and end up as
// 500s.
var (
	ErrValidation          = errors.New("validation failed")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrIdempotencyConflict = errors.New("idempotency key conflict: different request body")
)
