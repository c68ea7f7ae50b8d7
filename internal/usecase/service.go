package usecase

import (
	"movie-booking/internal/data/cache"
	"movie-booking/internal/data/repository"
	"movie-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth         AuthService
	User         UserService
	Catalog      CatalogService
	Seat         SeatService
	Checkout     CheckoutService
	Booking      BookingService
	Review       ReviewService
	Wishlist     WishlistService
	Notification NotificationService
}

// Deps dependency luar yang dipilih saat startup (Redis atau memory, gateway simulasi)
type Deps struct {
	Holds   cache.SeatHoldStore
	Events  EventPublisher
	Gateway PaymentGateway
}

func NewService(repo *repository.Repository, config *utils.Config, deps Deps, log *zap.Logger) *Service {
	loc := config.App.Location()
	policy := NewBookingPolicy(config.Booking)
	store := NewBookingStore(repo.Booking, deps.Events, policy, log)

	gateway := deps.Gateway
	if gateway == nil {
		gateway = NewSimulatedGateway(config.Payment)
	}
	gateway = NewWalletGateway(gateway, repo.Wallet)

	return &Service{
		Auth:         NewAuthService(repo, config, log),
		User:         NewUserService(repo, gateway, log),
		Catalog:      NewCatalogService(repo, loc, log),
		Seat:         NewSeatService(repo, deps.Holds, config.Booking, log),
		Checkout:     NewCheckoutService(repo, store, deps.Holds, gateway, config.Booking, loc, log),
		Booking:      NewBookingService(store, policy, gateway, loc, log),
		Review:       NewReviewService(repo, log),
		Wishlist:     NewWishlistService(repo, log),
		Notification: NewNotificationService(repo, loc, log),
	}
}
