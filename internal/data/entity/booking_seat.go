package entity

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingSeat snapshot kursi saat booking, harga tidak dihitung ulang
type BookingSeat struct {
	BaseSimple
	BookingID  uuid.UUID       `db:"booking_id"`
	SeatID     uuid.UUID       `db:"seat_id"`
	SeatRow    string          `db:"seat_row"`
	SeatNumber int             `db:"seat_number"`
	SeatType   SeatType        `db:"seat_type"`
	Price      decimal.Decimal `db:"price"`
}

func (s BookingSeat) Label() string {
	return fmt.Sprintf("%s%d", s.SeatRow, s.SeatNumber)
}
