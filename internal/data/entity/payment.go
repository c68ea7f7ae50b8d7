package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

type Payment struct {
	BaseNoDelete
	BookingID     *uuid.UUID      `db:"booking_id"` // nil kalau pembayaran gagal atau top-up wallet
	UserID        uuid.UUID       `db:"user_id"`
	Method        PaymentMethod   `db:"method"`
	Amount        decimal.Decimal `db:"amount"`
	Status        PaymentStatus   `db:"status"`
	TransactionID string          `db:"transaction_id"`
	FailureReason *string         `db:"failure_reason"`
}
