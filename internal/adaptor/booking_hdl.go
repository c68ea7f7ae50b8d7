package adaptor

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"movie-booking/internal/dto/request"
	"movie-booking/internal/usecase"
	"movie-booking/pkg/metrics"
	"movie-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const streamHeartbeat = 15 * time.Second

type BookingHandler struct {
	service  usecase.BookingService
	checkout usecase.CheckoutService
	events   EventStream
	log      *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, checkout usecase.CheckoutService, events EventStream, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service:  service,
		checkout: checkout,
		events:   events,
		log:      log.With(zap.String("handler", "booking")),
	}
}

// Checkout handles POST /api/checkout (protected)
func (h *BookingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.CheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	booking, err := h.checkout.Checkout(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "checkout")
		return
	}

	utils.ResponseCreated(w, "Booking confirmed", booking)
}

// GetMyBookings handles GET /api/bookings (protected)
func (h *BookingHandler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	bookings, err := h.service.GetMyBookings(r.Context(), userID, paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get my bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetBooking handles GET /api/bookings/{id} (owner or admin)
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	booking, err := h.service.GetBooking(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// CancelBooking handles PUT /api/bookings/{id}/cancel (owner or admin)
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	// body opsional, reason boleh kosong
	var req request.CancelBookingRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}

	booking, err := h.service.CancelBooking(r.Context(), userID, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "Booking cancelled", booking)
}

// GetTicket handles GET /api/bookings/{id}/ticket.png
func (h *BookingHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	png, err := h.service.TicketQR(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get ticket")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// Events handles GET /api/bookings/events, server-sent events "bookings changed".
// Customer hanya menerima event miliknya, admin menerima semua.
func (h *BookingHandler) Events(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	isAdmin := utils.IsAdminContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.ResponseInternalError(w, "Streaming unsupported")
		return
	}

	ctx := r.Context()
	stream, err := h.events.Subscribe(ctx)
	if err != nil {
		handleServiceError(w, h.log, err, "subscribe bookings")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	metrics.StreamClientConnected()
	defer metrics.StreamClientDisconnected()

	h.log.Debug("Booking stream opened", zap.String("user_id", userID.String()))

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, open := <-stream:
			if !open {
				return
			}
			if !isAdmin && ev.UserID != userID {
				continue
			}

			payload, err := json.Marshal(ev)
			if err != nil {
				h.log.Warn("Failed to encode booking event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: bookings.changed\ndata: %s\n\n", ev.BookingID, payload)
			flusher.Flush()
		}
	}
}

// ==================== ADMIN METHODS ====================

// GetAllBookings handles GET /api/admin/bookings (admin only)
func (h *BookingHandler) GetAllBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.GetAllBookings(r.Context(), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get all bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}
