package usecase

import (
	"context"
	"fmt"
	"time"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/data/repository"
	"movie-booking/internal/dto/request"
	"movie-booking/internal/dto/response"
	"movie-booking/internal/event"
	"movie-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NotificationService interface {
	GetNotifications(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.NotificationListResponse, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	// HandleBookingsChanged handler event bus, menulis notifikasi dari booking yang dibaca ulang
	HandleBookingsChanged(ctx context.Context, ev event.BookingsChanged) error
}

type notificationService struct {
	repo *repository.Repository
	loc  *time.Location
	now  func() time.Time
	log  *zap.Logger
}

func NewNotificationService(repo *repository.Repository, loc *time.Location, log *zap.Logger) NotificationService {
	if loc == nil {
		loc = time.UTC
	}
	return &notificationService{
		repo: repo,
		loc:  loc,
		now:  time.Now,
		log:  log.With(zap.String("service", "notification")),
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.NotificationListResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	req.Normalize()

	items, err := s.repo.Notification.FindByUserID(ctx, id, req.Limit(), req.Offset())
	if err != nil {
		return nil, &LoadError{Resource: "notifications", Err: err}
	}
	unread, err := s.repo.Notification.CountUnread(ctx, id)
	if err != nil {
		return nil, &LoadError{Resource: "notifications", Err: err}
	}

	out := &response.NotificationListResponse{
		Unread:        unread,
		Notifications: make([]response.NotificationResponse, len(items)),
	}
	for i, n := range items {
		out.Notifications[i] = response.NotificationToResponse(n)
	}
	return out, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return ErrUnauthorized
	}
	id, err := uuid.Parse(notificationID)
	if err != nil {
		return invalidField("notification_id", "Must be a valid UUID")
	}

	found, err := s.repo.Notification.MarkRead(ctx, id, userUUID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return 0, ErrUnauthorized
	}

	n, err := s.repo.Notification.MarkAllRead(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return n, nil
}

func (s *notificationService) HandleBookingsChanged(ctx context.Context, ev event.BookingsChanged) error {
	var kind entity.NotificationType
	switch ev.Kind {
	case event.KindCreated:
		kind = entity.NotificationBookingConfirmed
	case event.KindCancelled:
		kind = entity.NotificationBookingCancelled
	default:
		return nil
	}

	// event hanya sinyal, isi notifikasi diambil dari data booking terbaru
	booking, err := s.repo.Booking.FindByID(ctx, ev.BookingID)
	if err != nil {
		return fmt.Errorf("reload booking %s: %w", ev.BookingID, err)
	}
	if booking == nil {
		s.log.Warn("Booking from event not found", zap.String("booking_id", ev.BookingID.String()))
		return nil
	}

	// redelivery tidak boleh menggandakan notifikasi
	exists, err := s.repo.Notification.ExistsForBooking(ctx, booking.ID, kind)
	if err != nil {
		return fmt.Errorf("check notification: %w", err)
	}
	if exists {
		return nil
	}

	n := &entity.Notification{
		BaseSimple: entity.NewBaseSimple(s.now()),
		UserID:     booking.UserID,
		BookingID:  &booking.ID,
		Type:       kind,
	}
	starts := booking.ShowStartsAt.In(s.loc).Format("02 Jan 2006 15:04")
	switch kind {
	case entity.NotificationBookingConfirmed:
		n.Title = "Booking confirmed"
		n.Message = fmt.Sprintf("%s at %s on %s, %d seat(s). Reference %s.",
			booking.MovieTitle, booking.VenueName, starts, len(booking.Seats), booking.Reference)
	case entity.NotificationBookingCancelled:
		n.Title = "Booking cancelled"
		refund := "0.00"
		if booking.RefundAmount.Valid {
			refund = booking.RefundAmount.Decimal.StringFixed(2)
		}
		n.Message = fmt.Sprintf("%s on %s was cancelled. Refund of %s will be processed. Reference %s.",
			booking.MovieTitle, starts, refund, booking.Reference)
	}

	if err := s.repo.Notification.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	s.log.Info("Notification created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("type", string(kind)),
		zap.String("correlation_id", utils.GetCorrelationID(ctx)),
	)
	return nil
}
