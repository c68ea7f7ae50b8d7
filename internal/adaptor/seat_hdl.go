package adaptor

import (
	"net/http"

	"movie-booking/internal/dto/request"
	"movie-booking/internal/usecase"
	"movie-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SeatHandler struct {
	service usecase.SeatService
	log     *zap.Logger
}

func NewSeatHandler(service usecase.SeatService, log *zap.Logger) *SeatHandler {
	return &SeatHandler{
		service: service,
		log:     log.With(zap.String("handler", "seat")),
	}
}

// GetSeatMap handles GET /api/shows/{id}/seats
func (h *SeatHandler) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	seatMap, err := h.service.GetSeatMap(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get seat map")
		return
	}

	utils.ResponseSuccess(w, "success", seatMap)
}

// ReserveSeats handles POST /api/shows/{id}/seats/reserve
func (h *SeatHandler) ReserveSeats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.ReserveSeatsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.ReserveSeats(r.Context(), userID, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "reserve seats")
		return
	}

	utils.ResponseSuccess(w, "Seats reserved", resp)
}

// ReleaseSeats handles POST /api/shows/{id}/seats/release
func (h *SeatHandler) ReleaseSeats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.ReleaseSeatsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ReleaseSeats(r.Context(), userID, chi.URLParam(r, "id"), &req); err != nil {
		handleServiceError(w, h.log, err, "release seats")
		return
	}

	utils.ResponseSuccess(w, "Seats released", nil)
}
