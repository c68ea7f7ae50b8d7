package usecase

import (
	"errors"
	"fmt"

	"movie-booking/pkg/utils"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("access denied")
	ErrUnauthorized = errors.New("invalid credentials or session")
	ErrConflict     = errors.New("resource already exists")

	// state errors
	ErrInvalidTransition      = errors.New("invalid booking status transition")
	ErrCancellationClosed     = errors.New("cancellation window has closed")
	ErrBookingContextMissing  = errors.New("booking context is missing or no longer valid")
	ErrSeatUnavailable        = errors.New("one or more seats are not available")
	ErrSelectionLimitExceeded = errors.New("too many seats selected")
	ErrBookingCancelled       = errors.New("booking has been cancelled")

	ErrPaymentDeclined = errors.New("payment was declined")
)

// ValidationError pesan per field, tidak ada yang ditulis ke storage
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

func newValidationError(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}

func invalidField(field, msg string) error {
	return newValidationError(map[string]string{field: msg})
}

// LoadError data gagal dimuat, aman untuk di-retry oleh client
type LoadError struct {
	Resource string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Resource, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
