package repository

import (
	"errors"

	"movie-booking/pkg/database"

	"go.uber.org/zap"
)

var (
	// ErrSeatsTaken kursi sudah dibooking transaksi lain
	ErrSeatsTaken = errors.New("one or more seats are no longer available")
	// ErrStaleStatus status booking sudah berubah sejak dibaca
	ErrStaleStatus = errors.New("booking status changed concurrently")
	// ErrInsufficientBalance saldo wallet kurang dari jumlah yang didebit
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
)

type Repository struct {
	User         UserRepository
	Session      SessionRepository
	Movie        MovieRepository
	Venue        VenueRepository
	Show         ShowRepository
	Seat         SeatRepository
	Booking      BookingRepository
	Payment      PaymentRepository
	Wallet       WalletRepository
	Review       ReviewRepository
	Wishlist     WishlistRepository
	Notification NotificationRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		Session:      NewSessionRepository(db, log),
		Movie:        NewMovieRepository(db, log),
		Venue:        NewVenueRepository(db, log),
		Show:         NewShowRepository(db, log),
		Seat:         NewSeatRepository(db, log),
		Booking:      NewBookingRepository(db, log),
		Payment:      NewPaymentRepository(db, log),
		Wallet:       NewWalletRepository(db, log),
		Review:       NewReviewRepository(db, log),
		Wishlist:     NewWishlistRepository(db, log),
		Notification: NewNotificationRepository(db, log),
	}
}
