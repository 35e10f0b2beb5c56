package usecase

import "errors"

// Every operation wraps one of these so callers can branch with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidSlot       = errors.New("invalid slot")
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("forbidden")
)
