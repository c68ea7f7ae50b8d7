package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/data/repository"
	"movie-booking/internal/event"
	"movie-booking/pkg/metrics"
	"movie-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher tujuan sinyal "bookings changed"
type EventPublisher interface {
	Publish(ctx context.Context, ev event.BookingsChanged) error
}

// BookingStore satu-satunya penulis record booking. Setiap perubahan yang sudah di-commit
// diikuti tepat satu event bookings changed.
type BookingStore interface {
	Create(ctx context.Context, booking *entity.Booking) (*entity.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, to entity.BookingStatus, reason string) (*entity.Booking, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	List(ctx context.Context, filter entity.BookingFilter) ([]*entity.Booking, int64, error)
}

type bookingStore struct {
	bookings repository.BookingRepository
	events   EventPublisher
	policy   BookingPolicy
	now      func() time.Time
	log      *zap.Logger
}

func NewBookingStore(bookings repository.BookingRepository, events EventPublisher, policy BookingPolicy, log *zap.Logger) BookingStore {
	return &bookingStore{
		bookings: bookings,
		events:   events,
		policy:   policy,
		now:      time.Now,
		log:      log.With(zap.String("service", "booking_store")),
	}
}

func (s *bookingStore) Create(ctx context.Context, booking *entity.Booking) (*entity.Booking, error) {
	now := s.now()
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.Reference == "" {
		booking.Reference = utils.GenerateBookingReference(now)
	}
	booking.Status = entity.BookingStatusConfirmed
	booking.CreatedAt = now
	booking.UpdatedAt = now
	if booking.BookingDate.IsZero() {
		booking.BookingDate = now
	}
	for i := range booking.Seats {
		seat := &booking.Seats[i]
		seat.BookingID = booking.ID
		if seat.ID == uuid.Nil {
			seat.ID = uuid.New()
		}
		seat.CreatedAt = now
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	metrics.BookingCreated(string(booking.PaymentMethod))
	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
		zap.String("user_id", booking.UserID.String()),
		zap.Int("seat_count", len(booking.Seats)),
		zap.String("total_amount", booking.TotalAmount.StringFixed(2)),
	)

	s.publish(ctx, booking, event.KindCreated)
	return booking, nil
}

func (s *bookingStore) UpdateStatus(ctx context.Context, id uuid.UUID, to entity.BookingStatus, reason string) (*entity.Booking, error) {
	current, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find booking %s: %w", id, err)
	}
	if current == nil {
		return nil, ErrNotFound
	}

	from := current.Status
	next, err := s.policy.Transition(current, to, reason, s.now())
	if err != nil {
		metrics.StatusTransition(string(EffectiveStatus(current, s.now())), string(to), false)
		return nil, err
	}

	if err := s.bookings.UpdateStatus(ctx, next, from); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			// booking sudah diubah request lain di antara baca dan tulis
			return nil, fmt.Errorf("booking %s: %w", id, ErrInvalidTransition)
		}
		return nil, err
	}

	metrics.StatusTransition(string(from), string(next.Status), true)
	s.log.Info("Booking status updated",
		zap.String("booking_id", id.String()),
		zap.String("from", string(from)),
		zap.String("to", string(next.Status)),
	)

	kind := event.KindStatusChanged
	if next.Status == entity.BookingStatusCancelled {
		kind = event.KindCancelled
	}
	s.publish(ctx, next, kind)

	return next, nil
}

func (s *bookingStore) Get(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find booking %s: %w", id, err)
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	return booking, nil
}

// List filter user diambil dari argumen setiap kali dipanggil, tidak pernah di-cache
func (s *bookingStore) List(ctx context.Context, filter entity.BookingFilter) ([]*entity.Booking, int64, error) {
	bookings, err := s.bookings.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	total, err := s.bookings.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	return bookings, total, nil
}

// publish dipanggil setelah commit; gagal publish tidak membatalkan write
func (s *bookingStore) publish(ctx context.Context, b *entity.Booking, kind event.Kind) {
	if s.events == nil {
		return
	}

	err := s.events.Publish(ctx, event.BookingsChanged{
		BookingID:  b.ID,
		UserID:     b.UserID,
		Kind:       kind,
		Status:     string(b.Status),
		OccurredAt: s.now().UTC(),
	})
	if err != nil {
		s.log.Warn("Bookings changed event not delivered",
			zap.Error(err),
			zap.String("booking_id", b.ID.String()),
		)
	}
}
