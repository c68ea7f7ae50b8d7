package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"movie-booking/internal/data/cache"
	"movie-booking/internal/data/entity"
	"movie-booking/internal/data/repository"
	"movie-booking/internal/dto/request"
	"movie-booking/internal/dto/response"
	"movie-booking/pkg/metrics"
	"movie-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// checkoutTimeout batas satu checkout, terlepas dari request yang memicunya
const checkoutTimeout = 30 * time.Second

type CheckoutService interface {
	// Checkout tepat satu booking per idempotency key. Request ulang dengan key yang sama
	// mendapat booking yang sudah ada.
	Checkout(ctx context.Context, userID string, req *request.CheckoutRequest) (*response.BookingResponse, error)
}

type checkoutService struct {
	repo    *repository.Repository
	store   BookingStore
	holds   cache.SeatHoldStore
	gateway PaymentGateway
	policy  BookingPolicy
	cfg     utils.BookingConfig
	loc     *time.Location
	now     func() time.Time
	log     *zap.Logger

	inflight singleflight.Group
}

func NewCheckoutService(
	repo *repository.Repository,
	store BookingStore,
	holds cache.SeatHoldStore,
	gateway PaymentGateway,
	cfg utils.BookingConfig,
	loc *time.Location,
	log *zap.Logger,
) CheckoutService {
	return &checkoutService{
		repo:    repo,
		store:   store,
		holds:   holds,
		gateway: gateway,
		policy:  NewBookingPolicy(cfg),
		cfg:     cfg,
		loc:     loc,
		now:     time.Now,
		log:     log.With(zap.String("service", "checkout")),
	}
}

func (s *checkoutService) Checkout(ctx context.Context, userID string, req *request.CheckoutRequest) (*response.BookingResponse, error) {
	started := time.Now()

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	// 1. Validasi form, tidak ada yang ditulis kalau gagal
	if len(req.SeatIDs) > s.cfg.MaxSeats {
		return nil, fmt.Errorf("%d seats, limit is %d: %w", len(req.SeatIDs), s.cfg.MaxSeats, ErrSelectionLimitExceeded)
	}
	if errs := req.Validate(); len(errs) > 0 {
		s.log.Warn("Checkout validation failed", zap.Any("errors", errs), zap.String("user_id", userID))
		metrics.ObserveCheckout("invalid", started)
		return nil, newValidationError(errs)
	}

	// 2. Double submit dengan key yang sama digabung jadi satu eksekusi
	key := userUUID.String() + ":" + req.IdempotencyKey
	v, err, shared := s.inflight.Do(key, func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), checkoutTimeout)
		defer cancel()
		return s.checkout(runCtx, userUUID, req)
	})
	if shared {
		s.log.Info("Concurrent checkout collapsed", zap.String("idempotency_key", req.IdempotencyKey))
	}
	if err != nil {
		metrics.ObserveCheckout(checkoutOutcome(err), started)
		return nil, err
	}

	booking, _ := v.(*entity.Booking)
	if booking == nil {
		return nil, fmt.Errorf("checkout %s: %w", req.IdempotencyKey, ErrNotFound)
	}
	metrics.ObserveCheckout("confirmed", started)

	resp := response.BookingToResponse(booking, s.policy.State(booking, s.now()), s.loc)
	return &resp, nil
}

func (s *checkoutService) checkout(ctx context.Context, userID uuid.UUID, req *request.CheckoutRequest) (*entity.Booking, error) {
	// 1. Checkout yang sama sudah pernah selesai
	existing, err := s.repo.Booking.FindByIdempotencyKey(ctx, userID, req.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("lookup idempotency key: %w", err)
	}
	if existing != nil {
		s.log.Info("Checkout replayed",
			zap.String("booking_id", existing.ID.String()),
			zap.String("idempotency_key", req.IdempotencyKey),
		)
		return existing, nil
	}

	// 2. Booking context: show dan kursi
	show, seats, err := s.loadContext(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	prices, total := PriceSeats(show.Price, seats)

	// 3. Bayar dulu, booking dibuat hanya kalau pembayaran berhasil
	txnID, err := s.gateway.Charge(ctx, ChargeRequest{UserID: userID, Amount: total, Details: req.Payment})
	if err != nil {
		if errors.Is(err, ErrPaymentDeclined) {
			metrics.Payment(string(req.Payment.Method), "declined")
			s.recordPayment(ctx, userID, nil, req.Payment.Method, total, entity.PaymentStatusFailed, utils.GenerateTransactionID(s.now()), err.Error())
			s.log.Warn("Payment declined", zap.String("user_id", userID.String()), zap.Error(err))
			return nil, err
		}
		metrics.Payment(string(req.Payment.Method), "error")
		return nil, fmt.Errorf("charge payment: %w", err)
	}
	metrics.Payment(string(req.Payment.Method), "completed")

	// 4. Simpan booking lewat store (transaksi + event)
	booking := &entity.Booking{
		UserID:         userID,
		ShowID:         show.ID,
		MovieTitle:     show.MovieTitle,
		VenueName:      show.VenueName,
		ScreenID:       show.ScreenID,
		ShowStartsAt:   show.StartsAt,
		Seats:          snapshotSeats(seats, prices),
		TotalAmount:    total,
		PaymentMethod:  req.Payment.Method,
		TransactionID:  txnID,
		IdempotencyKey: req.IdempotencyKey,
	}

	created, err := s.store.Create(ctx, booking)
	switch {
	case errors.Is(err, repository.ErrDuplicateBooking):
		// proses lain menyelesaikan checkout yang sama lebih dulu
		s.refund(ctx, userID, req.Payment, total, txnID)
		s.recordPayment(ctx, userID, nil, req.Payment.Method, total, entity.PaymentStatusRefunded, txnID, "duplicate checkout")
		return s.repo.Booking.FindByIdempotencyKey(ctx, userID, req.IdempotencyKey)
	case errors.Is(err, repository.ErrSeatsTaken):
		s.refund(ctx, userID, req.Payment, total, txnID)
		s.recordPayment(ctx, userID, nil, req.Payment.Method, total, entity.PaymentStatusRefunded, txnID, "seat taken")
		return nil, fmt.Errorf("%v: %w", err, ErrSeatUnavailable)
	case err != nil:
		s.log.Error("Failed to create booking after payment",
			zap.Error(err),
			zap.String("transaction_id", txnID),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("create booking: %w", err)
	}

	// 5. Catat pembayaran dan lepas hold
	s.recordPayment(ctx, userID, &created.ID, req.Payment.Method, total, entity.PaymentStatusCompleted, txnID, "")
	if err := s.holds.Release(ctx, show.ID, created.SeatIDs(), userID); err != nil {
		s.log.Warn("Failed to release holds after checkout", zap.Error(err))
	}

	return created, nil
}

func (s *checkoutService) loadContext(ctx context.Context, userID uuid.UUID, req *request.CheckoutRequest) (*entity.ShowDetail, []*entity.Seat, error) {
	showID, err := uuid.Parse(req.ShowID)
	if err != nil {
		return nil, nil, invalidField("show_id", "Must be a valid UUID")
	}
	seatIDs, err := utils.ParseUUIDs(req.SeatIDs)
	if err != nil {
		return nil, nil, invalidField("seat_ids", err.Error())
	}

	show, err := s.repo.Show.FindByID(ctx, showID)
	if err != nil {
		return nil, nil, fmt.Errorf("find show: %w", err)
	}
	if show == nil || !show.IsActive {
		return nil, nil, fmt.Errorf("show %s: %w", req.ShowID, ErrBookingContextMissing)
	}
	if !show.StartsAt.After(s.now()) {
		return nil, nil, fmt.Errorf("show %s already started: %w", req.ShowID, ErrBookingContextMissing)
	}

	seats, err := s.repo.Seat.FindByIDs(ctx, showID, seatIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("find seats: %w", err)
	}
	if len(seats) != len(seatIDs) {
		return nil, nil, fmt.Errorf("seats do not belong to show %s: %w", req.ShowID, ErrBookingContextMissing)
	}
	for _, seat := range seats {
		if !seat.IsAvailable {
			return nil, nil, fmt.Errorf("seat %s already booked: %w", seat.Label(), ErrSeatUnavailable)
		}
	}

	// hold bersifat soft: kalau store hold error, database tetap jadi penentu akhir
	holders, err := s.holds.Holders(ctx, showID, seatIDs)
	if err != nil {
		s.log.Warn("Seat holds unavailable during checkout", zap.Error(err))
		return show, seats, nil
	}
	for _, seat := range seats {
		if holder, ok := holders[seat.ID]; ok && holder != userID {
			return nil, nil, fmt.Errorf("seat %s held by another user: %w", seat.Label(), ErrSeatUnavailable)
		}
	}

	return show, seats, nil
}

func snapshotSeats(seats []*entity.Seat, prices []decimal.Decimal) []entity.BookingSeat {
	out := make([]entity.BookingSeat, len(seats))
	for i, seat := range seats {
		out[i] = entity.BookingSeat{
			SeatID:     seat.ID,
			SeatRow:    seat.SeatRow,
			SeatNumber: seat.SeatNumber,
			SeatType:   seat.SeatType,
			Price:      prices[i],
		}
	}
	return out
}

func (s *checkoutService) recordPayment(ctx context.Context, userID uuid.UUID, bookingID *uuid.UUID, method entity.PaymentMethod, amount decimal.Decimal, status entity.PaymentStatus, txnID, failure string) {
	now := s.now()
	payment := &entity.Payment{
		BaseNoDelete:  entity.NewBaseNoDelete(now),
		BookingID:     bookingID,
		UserID:        userID,
		Method:        method,
		Amount:        amount,
		Status:        status,
		TransactionID: txnID,
	}
	if failure != "" {
		payment.FailureReason = &failure
	}

	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		s.log.Error("Failed to record payment",
			zap.Error(err),
			zap.String("transaction_id", txnID),
			zap.String("status", string(status)),
		)
	}
}

// refund dana charge yang tidak jadi booking. Gagal refund hanya di-log, payment tetap tercatat.
func (s *checkoutService) refund(ctx context.Context, userID uuid.UUID, details request.PaymentDetails, amount decimal.Decimal, txnID string) {
	err := s.gateway.Refund(ctx, ChargeRequest{UserID: userID, Amount: amount, Details: details}, txnID)
	if err != nil {
		s.log.Error("Failed to refund payment",
			zap.Error(err),
			zap.String("transaction_id", txnID),
			zap.String("user_id", userID.String()),
		)
	}
}

func checkoutOutcome(err error) string {
	switch {
	case errors.Is(err, ErrPaymentDeclined):
		return "declined"
	case errors.Is(err, ErrSeatUnavailable):
		return "seat_unavailable"
	case errors.Is(err, ErrBookingContextMissing):
		return "context_missing"
	default:
		return "error"
	}
}
