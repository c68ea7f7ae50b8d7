package wire

import (
	"movie-booking/internal/adaptor"
	"movie-booking/internal/data/repository"
	"movie-booking/pkg/middleware"
	"movie-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireUser profil, wallet, wishlist dan notifikasi; semua butuh login
func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	notificationHandler *adaptor.NotificationHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		r.Get("/api/me", userHandler.GetProfile)
		r.Put("/api/me", userHandler.UpdateProfile)
		r.Get("/api/me/payments", userHandler.GetPayments)
		r.Get("/api/me/wallet", userHandler.GetWallet)
		r.Post("/api/me/wallet/top-up", userHandler.TopUpWallet)

		r.Get("/api/wishlist", userHandler.GetWishlist)
		r.Post("/api/wishlist", userHandler.AddToWishlist)
		r.Delete("/api/wishlist/{movie_id}", userHandler.RemoveFromWishlist)

		r.Get("/api/notifications", notificationHandler.GetNotifications)
		r.Put("/api/notifications/read-all", notificationHandler.MarkAllRead)
		r.Put("/api/notifications/{id}/read", notificationHandler.MarkRead)
	})
}
