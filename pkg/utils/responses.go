package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Envelope bentuk semua response API: {status, message, data, errors}.
// Server menulis Envelope[any], client membaca Envelope[json.RawMessage].
type Envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
	Errors  T      `json:"errors,omitempty"`
}

// Response envelope yang ditulis handler
type Response = Envelope[any]

// RawResponse envelope yang dibaca SDK, data di-decode belakangan
type RawResponse = Envelope[json.RawMessage]

// DecodeResponse baca envelope dari body. Body kosong menghasilkan envelope kosong.
func DecodeResponse(r io.Reader) (RawResponse, error) {
	var env RawResponse
	if err := json.NewDecoder(r).Decode(&env); err != nil && err != io.EOF {
		return env, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// ResponseJSON writes JSON response with custom status code
func ResponseJSON(w http.ResponseWriter, code int, status bool, message string, data, errors any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(Response{
		Status:  status,
		Message: message,
		Data:    data,
		Errors:  errors,
	})
}

// ResponseError response gagal tanpa data
func ResponseError(w http.ResponseWriter, code int, message string, errors any) {
	if code == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "2")
	}
	ResponseJSON(w, code, false, message, nil, errors)
}

// ------------- Success responses -------------

// returns 200 OK
func ResponseSuccess(w http.ResponseWriter, message string, data any) {
	ResponseJSON(w, http.StatusOK, true, message, data, nil)
}

// returns 201 Created
func ResponseCreated(w http.ResponseWriter, message string, data any) {
	ResponseJSON(w, http.StatusCreated, true, message, data, nil)
}

// ------------- Error responses -------------

func ResponseBadRequest(w http.ResponseWriter, message string, errors any) {
	ResponseError(w, http.StatusBadRequest, message, errors)
}

func ResponseUnauthorized(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusUnauthorized, message, nil)
}

// ResponsePaymentRequired dipakai saat pembayaran ditolak gateway
func ResponsePaymentRequired(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusPaymentRequired, message, nil)
}

func ResponseForbidden(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusForbidden, message, nil)
}

func ResponseNotFound(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusNotFound, message, nil)
}

func ResponseConflict(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusConflict, message, nil)
}

func ResponseInternalError(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusInternalServerError, message, nil)
}

// ResponseServiceUnavailable client boleh retry
func ResponseServiceUnavailable(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusServiceUnavailable, message, nil)
}
