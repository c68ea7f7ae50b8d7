package response

import (
	"time"

	"movie-booking/internal/data/entity"

	"github.com/shopspring/decimal"
)

type SeatResponse struct {
	ID           string          `json:"id"`
	ShowID       string          `json:"show_id"`
	SeatRow      string          `json:"seat_row"`
	SeatNumber   int             `json:"seat_number"`
	Label        string          `json:"label"`
	SeatType     entity.SeatType `json:"seat_type"`
	IsAvailable  bool            `json:"is_available"`
	IsBlocked    bool            `json:"is_blocked"`
	ReservedByMe bool            `json:"reserved_by_me"`
	Price        decimal.Decimal `json:"price"`
}

type SeatRowResponse struct {
	Row   string         `json:"row"`
	Seats []SeatResponse `json:"seats"`
}

type SeatMapResponse struct {
	ShowID    string            `json:"show_id"`
	BasePrice decimal.Decimal   `json:"base_price"`
	Rows      []SeatRowResponse `json:"rows"`
}

type ReserveSeatsResponse struct {
	ShowID    string    `json:"show_id"`
	SeatIDs   []string  `json:"seat_ids"`
	ExpiresAt time.Time `json:"expires_at"`
}
