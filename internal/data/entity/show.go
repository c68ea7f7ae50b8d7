package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Show struct {
	BaseNoDelete
	MovieID        uuid.UUID       `db:"movie_id"`
	VenueID        uuid.UUID       `db:"venue_id"`
	ScreenID       string          `db:"screen_id"`
	StartsAt       time.Time       `db:"starts_at"`
	Price          decimal.Decimal `db:"price"` // harga dasar, tier dihitung dari sini
	TotalSeats     int             `db:"total_seats"`
	AvailableSeats int             `db:"available_seats"`
	IsActive       bool            `db:"is_active"`
}

// ShowDetail show beserta judul film dan nama venue untuk snapshot booking
type ShowDetail struct {
	Show
	MovieTitle string    `db:"movie_title"`
	VenueName  string    `db:"venue_name"`
	CityID     uuid.UUID `db:"city_id"`
}

type ShowFilter struct {
	MovieID uuid.UUID
	Date    *time.Time
	CityID  *uuid.UUID
	VenueID *uuid.UUID
}
