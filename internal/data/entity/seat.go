package entity

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SeatType string

const (
	SeatTypePremium  SeatType = "PREMIUM"
	SeatTypeStandard SeatType = "STANDARD"
	SeatTypeEconomy  SeatType = "ECONOMY"
)

func (t SeatType) Valid() bool {
	switch t {
	case SeatTypePremium, SeatTypeStandard, SeatTypeEconomy:
		return true
	}
	return false
}

var tierOffsets = map[SeatType]decimal.Decimal{
	SeatTypePremium:  decimal.NewFromInt(100),
	SeatTypeStandard: decimal.Zero,
	SeatTypeEconomy:  decimal.NewFromInt(-50),
}

// PriceFrom harga kursi = harga dasar show + offset tier, minimal 0
func (t SeatType) PriceFrom(base decimal.Decimal) decimal.Decimal {
	price := base.Add(tierOffsets[t])
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

type Seat struct {
	BaseNoDelete
	ShowID      uuid.UUID `db:"show_id"`
	SeatRow     string    `db:"seat_row"`    // A, B, C
	SeatNumber  int       `db:"seat_number"` // 1, 2, 3
	SeatType    SeatType  `db:"seat_type"`
	IsAvailable bool      `db:"is_available"` // false kalau sudah dibooking
}

// Label e.g. "A1"
func (s *Seat) Label() string {
	return fmt.Sprintf("%s%d", s.SeatRow, s.SeatNumber)
}
