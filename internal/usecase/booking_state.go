package usecase

import (
	"fmt"
	"time"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/dto/response"
	"movie-booking/pkg/utils"

	"github.com/shopspring/decimal"
)

// BookingPolicy aturan pembatalan dan refund
type BookingPolicy struct {
	CancelCutoff  time.Duration
	RefundPercent int
}

func NewBookingPolicy(cfg utils.BookingConfig) BookingPolicy {
	return BookingPolicy{
		CancelCutoff:  cfg.CancelCutoff(),
		RefundPercent: cfg.RefundPercent,
	}
}

// EffectiveStatus COMPLETED tidak disimpan, dihitung dari jam tayang
func EffectiveStatus(b *entity.Booking, now time.Time) entity.BookingStatus {
	if b.Status == entity.BookingStatusConfirmed && !b.ShowStartsAt.After(now) {
		return entity.BookingStatusCompleted
	}
	return b.Status
}

func (p BookingPolicy) CancelDeadline(b *entity.Booking) time.Time {
	return b.ShowStartsAt.Add(-p.CancelCutoff)
}

func (p BookingPolicy) Refund(total decimal.Decimal) decimal.Decimal {
	return total.Mul(decimal.NewFromInt(int64(p.RefundPercent))).
		Div(decimal.NewFromInt(100)).
		Round(2)
}

func (p BookingPolicy) State(b *entity.Booking, now time.Time) response.BookingState {
	status := EffectiveStatus(b, now)
	deadline := p.CancelDeadline(b)
	return response.BookingState{
		Status:         status,
		Cancellable:    status == entity.BookingStatusConfirmed && now.Before(deadline),
		CancelDeadline: deadline,
	}
}

// Transition return salinan booking dengan status baru. Booking asli tidak diubah,
// termasuk saat transisi ditolak.
func (p BookingPolicy) Transition(b *entity.Booking, to entity.BookingStatus, reason string, now time.Time) (*entity.Booking, error) {
	from := EffectiveStatus(b, now)
	if from != entity.BookingStatusConfirmed {
		return nil, fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidTransition)
	}

	next := *b
	next.Touch(now)

	switch to {
	case entity.BookingStatusCancelled:
		if !now.Before(p.CancelDeadline(b)) {
			return nil, fmt.Errorf("deadline was %s: %w", p.CancelDeadline(b).Format(time.RFC3339), ErrCancellationClosed)
		}
		cancelledAt := now
		next.Status = entity.BookingStatusCancelled
		next.CancelledAt = &cancelledAt
		if reason != "" {
			next.CancellationReason = &reason
		}
		next.RefundAmount = decimal.NewNullDecimal(p.Refund(b.TotalAmount))
	default:
		// COMPLETED hanya lewat waktu tayang, CONFIRMED bukan tujuan yang sah
		return nil, fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidTransition)
	}

	return &next, nil
}

// PriceSeats harga tiap kursi dan totalnya dari harga dasar show
func PriceSeats(base decimal.Decimal, seats []*entity.Seat) ([]decimal.Decimal, decimal.Decimal) {
	prices := make([]decimal.Decimal, len(seats))
	total := decimal.Zero
	for i, seat := range seats {
		prices[i] = seat.SeatType.PriceFrom(base)
		total = total.Add(prices[i])
	}
	return prices, total
}
