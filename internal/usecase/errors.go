package usecase

import (
	"errors"

	"poorito-booking/pkg/utils"
)

// Error kinds. Handlers map them to status codes with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Error is a classified failure with a caller-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func notFound(msg string) *Error { return &Error{Kind: ErrNotFound, Message: msg} }

func conflict(msg string) *Error { return &Error{Kind: ErrConflict, Message: msg} }

var (
	ErrMountainNotFound = notFound("Mountain not found")
	ErrBookingNotFound  = notFound("Booking not found")
	ErrUserNotFound     = notFound("User not found")
	ErrDuplicateBooking = conflict("You already have a booking for this mountain on this date")
	ErrAlreadyCancelled = conflict("Booking is already cancelled")
	ErrBookingNotActive = conflict("Booking can no longer be cancelled")
)

// ValidationError carries per-field messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
