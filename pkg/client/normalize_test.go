package client

import (
	"encoding/json"
	"testing"
	"time"

	"movie-booking/internal/data/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBooking_Canonical(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "b-1", "reference": "MB1700000000000ABCD", "user_id": "u-1",
		"show": {"show_id": "s-1", "movie_title": "Beyond the Horizon", "venue_name": "CinemaFlix IMAX"},
		"seats": [{"seat_id": "x", "seat_row": "A", "seat_number": 1, "label": "A1", "seat_type": "STANDARD", "price": "250"}],
		"total_amount": "250", "payment_method": "UPI", "status": "CONFIRMED"
	}`)

	b, err := NormalizeBooking(raw)
	require.NoError(t, err)
	assert.Equal(t, "MB1700000000000ABCD", b.Reference)
	assert.Equal(t, "Beyond the Horizon", b.Show.MovieTitle)
	require.Len(t, b.Seats, 1)
	assert.True(t, b.TotalAmount.Equal(decimal.NewFromInt(250)))
}

func TestNormalizeBooking_Legacy(t *testing.T) {
	starts := time.Now().Add(72 * time.Hour).UTC()
	raw := json.RawMessage(`{
		"id": 42, "userId": 7, "showId": 3,
		"movieTitle": "Monsoon Nights", "venue": "Galaxy Multiplex",
		"date": "` + starts.Format("2006-01-02") + `", "showTime": "` + starts.Format("15:04") + `",
		"seats": ["A1", "a2", "B10"], "totalAmount": 700,
		"paymentMethod": "upi", "bookingDate": "2025-01-02T10:00:00Z"
	}`)

	b, err := NormalizeBooking(raw)
	require.NoError(t, err)

	assert.Equal(t, "42", b.ID)
	assert.Equal(t, "BK42", b.Reference)
	assert.Equal(t, "7", b.UserID)
	assert.Equal(t, entity.BookingStatusConfirmed, b.Status)
	assert.Equal(t, entity.PaymentMethodUPI, b.PaymentMethod)
	assert.Equal(t, "Galaxy Multiplex", b.Show.VenueName)
	assert.True(t, b.Cancellable)

	require.Len(t, b.Seats, 3)
	assert.Equal(t, "A", b.Seats[1].SeatRow)
	assert.Equal(t, 2, b.Seats[1].SeatNumber)
	assert.Equal(t, 10, b.Seats[2].SeatNumber)

	sum := decimal.Zero
	for _, s := range b.Seats {
		sum = sum.Add(s.Price)
	}
	assert.True(t, sum.Equal(decimal.NewFromInt(700)), "seat prices must add up to the stored total, got %s", sum)
}

func TestNormalizeBooking_LegacyPastShowIsCompleted(t *testing.T) {
	raw := json.RawMessage(`{"id": "1", "totalAmount": 250, "seats": ["C3"], "date": "2020-01-01", "showTime": "18:00"}`)

	b, err := NormalizeBooking(raw)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCompleted, b.Status)
	assert.False(t, b.Cancellable)
}

func TestNormalizeBooking_UnknownShape(t *testing.T) {
	_, err := NormalizeBooking(json.RawMessage(`{"foo": 1}`))
	assert.ErrorIs(t, err, errUnknownBookingShape)

	_, err = NormalizeBooking(json.RawMessage(`[1,2]`))
	assert.Error(t, err)
}
