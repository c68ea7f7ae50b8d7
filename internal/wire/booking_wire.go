package wire

import (
	"movie-booking/internal/adaptor"
	"movie-booking/internal/data/repository"
	"movie-booking/pkg/middleware"
	"movie-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	seatHandler *adaptor.SeatHandler,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// seat selection
		r.Get("/api/shows/{id}/seats", seatHandler.GetSeatMap)
		r.Post("/api/shows/{id}/seats/reserve", seatHandler.ReserveSeats)
		r.Post("/api/shows/{id}/seats/release", seatHandler.ReleaseSeats)

		r.Post("/api/checkout", bookingHandler.Checkout)

		// events didaftarkan sebelum {id} supaya tidak tertangkap sebagai id
		r.Get("/api/bookings/events", bookingHandler.Events)
		r.Get("/api/bookings", bookingHandler.GetMyBookings)
		r.Get("/api/bookings/{id}", bookingHandler.GetBooking)
		r.Put("/api/bookings/{id}/cancel", bookingHandler.CancelBooking)
		r.Get("/api/bookings/{id}/ticket.png", bookingHandler.GetTicket)
	})

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.Admin(log))

		r.Get("/api/admin/bookings", bookingHandler.GetAllBookings)
	})
}
