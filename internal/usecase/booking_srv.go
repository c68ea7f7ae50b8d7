package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/dto/request"
	"movie-booking/internal/dto/response"
	"movie-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	// Customer
	GetMyBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetBooking(ctx context.Context, userID, bookingID string) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, userID, bookingID string, req *request.CancelBookingRequest) (*response.BookingResponse, error)
	TicketQR(ctx context.Context, userID, bookingID string) ([]byte, error)

	// Admin
	GetAllBookings(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
}

type bookingService struct {
	store   BookingStore
	policy  BookingPolicy
	gateway PaymentGateway
	loc     *time.Location
	now     func() time.Time
	log     *zap.Logger
}

func NewBookingService(store BookingStore, policy BookingPolicy, gateway PaymentGateway, loc *time.Location, log *zap.Logger) BookingService {
	return &bookingService{
		store:   store,
		policy:  policy,
		gateway: gateway,
		loc:     loc,
		now:     time.Now,
		log:     log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) GetMyBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	return s.list(ctx, entity.BookingFilter{UserID: &userUUID}, req)
}

func (s *bookingService) GetAllBookings(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	return s.list(ctx, entity.BookingFilter{}, req)
}

func (s *bookingService) list(ctx context.Context, filter entity.BookingFilter, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	req.Normalize()

	filter.Limit = req.Limit()
	filter.Offset = req.Offset()

	bookings, total, err := s.store.List(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list bookings", zap.Error(err), zap.Int("page", req.Page))
		return nil, &LoadError{Resource: "bookings", Err: err}
	}

	now := s.now()
	data := make([]response.BookingResponse, len(bookings))
	for i, b := range bookings {
		data[i] = response.BookingToResponse(b, s.policy.State(b, now), s.loc)
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (s *bookingService) GetBooking(ctx context.Context, userID, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.owned(ctx, userID, bookingID, true)
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(booking, s.policy.State(booking, s.now()), s.loc)
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, userID, bookingID string, req *request.CancelBookingRequest) (*response.BookingResponse, error) {
	// 1. Validasi
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	// 2. Hanya pemilik yang boleh membatalkan, admin juga tidak
	booking, err := s.owned(ctx, userID, bookingID, false)
	if err != nil {
		return nil, err
	}

	// 3. Transisi lewat store supaya event ikut terkirim
	updated, err := s.store.UpdateStatus(ctx, booking.ID, entity.BookingStatusCancelled, strings.TrimSpace(req.Reason))
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrCancellationClosed) {
			s.log.Warn("Cancellation rejected",
				zap.String("booking_id", bookingID),
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return nil, err
		}
		s.log.Error("Failed to cancel booking", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, fmt.Errorf("cancel booking %s: %w", bookingID, err)
	}

	// 4. Refund ke metode pembayaran asal (wallet dikreditkan langsung)
	s.refund(ctx, updated)

	resp := response.BookingToResponse(updated, s.policy.State(updated, s.now()), s.loc)
	return &resp, nil
}

// refund pembatalan sudah commit, kegagalan refund hanya di-log untuk ditangani manual
func (s *bookingService) refund(ctx context.Context, booking *entity.Booking) {
	if s.gateway == nil || !booking.RefundAmount.Valid || !booking.RefundAmount.Decimal.IsPositive() {
		return
	}

	req := ChargeRequest{
		UserID:  booking.UserID,
		Amount:  booking.RefundAmount.Decimal,
		Details: request.PaymentDetails{Method: booking.PaymentMethod},
	}
	if err := s.gateway.Refund(ctx, req, booking.TransactionID); err != nil {
		s.log.Error("Failed to refund cancelled booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("transaction_id", booking.TransactionID),
		)
	}
}

func (s *bookingService) TicketQR(ctx context.Context, userID, bookingID string) ([]byte, error) {
	booking, err := s.owned(ctx, userID, bookingID, true)
	if err != nil {
		return nil, err
	}

	if booking.Status == entity.BookingStatusCancelled {
		return nil, fmt.Errorf("ticket %s: %w", booking.Reference, ErrBookingCancelled)
	}

	png, err := utils.GenerateQRCode(booking.Reference, 256)
	if err != nil {
		s.log.Error("Failed to render ticket QR", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, err
	}
	return png, nil
}

// owned booking milik user. allowAdmin untuk akses baca, admin boleh melihat semua.
func (s *bookingService) owned(ctx context.Context, userID, bookingID string, allowAdmin bool) (*entity.Booking, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, invalidField("id", "Must be a valid UUID")
	}

	booking, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.UserID != userUUID && !(allowAdmin && utils.IsAdminContext(ctx)) {
		s.log.Warn("Booking access denied",
			zap.String("booking_id", bookingID),
			zap.String("user_id", userID),
		)
		// tidak membocorkan keberadaan booking user lain
		return nil, ErrNotFound
	}

	return booking, nil
}
