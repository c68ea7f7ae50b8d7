package client

import (
	"errors"
	"fmt"
	"net/http"

	"movie-booking/pkg/utils"
)

var (
	ErrSelectionLimitExceeded = errors.New("selection limit exceeded")
	ErrNoSeatsSelected        = errors.New("select at least one seat")
	ErrCheckoutInFlight       = errors.New("checkout already in progress")
	ErrNotLoggedIn            = errors.New("not logged in")
	ErrPaymentDeclined        = errors.New("payment was declined")
)

// NetworkError API tidak bisa dihubungi atau membalas non-2xx selain 400/401/409
type NetworkError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %d %s", e.Op, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: %d %s", e.Op, e.Status, http.StatusText(e.Status))
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Retryable 503 dan kegagalan koneksi aman diulang
func (e *NetworkError) Retryable() bool {
	return e.Err != nil || e.Status == http.StatusServiceUnavailable || e.Status == http.StatusBadGateway
}

// ValidationError pesan per field, request tidak dikirim sebagian
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed: " + e.Message
	}
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

// AuthError 401, session lokal sudah dihapus
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication required"
	}
	return "authentication required: " + e.Message
}

// StateError konteks booking hilang atau status tidak mengizinkan aksi, arahkan user ke katalog
type StateError struct {
	Status  int
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}
