package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentMethodUPI        PaymentMethod = "UPI"
	PaymentMethodNetBanking PaymentMethod = "NET_BANKING"
	PaymentMethodWallet     PaymentMethod = "WALLET"
)

func (m PaymentMethod) IsCard() bool {
	return m == PaymentMethodCreditCard || m == PaymentMethodDebitCard
}

// Booking satu-satunya bentuk record booking. Setelah dibuat hanya Status dan
// field pembatalan yang boleh berubah.
type Booking struct {
	BaseNoDelete
	Reference          string              `db:"reference"`
	UserID             uuid.UUID           `db:"user_id"`
	ShowID             uuid.UUID           `db:"show_id"`
	MovieTitle         string              `db:"movie_title"`
	VenueName          string              `db:"venue_name"`
	ScreenID           string              `db:"screen_id"`
	ShowStartsAt       time.Time           `db:"show_starts_at"`
	Seats              []BookingSeat       `db:"-"`
	TotalAmount        decimal.Decimal     `db:"total_amount"`
	PaymentMethod      PaymentMethod       `db:"payment_method"`
	TransactionID      string              `db:"transaction_id"`
	Status             BookingStatus       `db:"status"`
	IdempotencyKey     string              `db:"idempotency_key"`
	BookingDate        time.Time           `db:"booking_date"`
	CancelledAt        *time.Time          `db:"cancelled_at"`
	CancellationReason *string             `db:"cancellation_reason"`
	RefundAmount       decimal.NullDecimal `db:"refund_amount"`
}

func (b *Booking) SeatIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(b.Seats))
	for i, s := range b.Seats {
		ids[i] = s.SeatID
	}
	return ids
}

type BookingFilter struct {
	UserID *uuid.UUID
	Limit  int
	Offset int
}
