package response

import (
	"time"

	"movie-booking/internal/data/entity"

	"github.com/shopspring/decimal"
)

type BookingSeatResponse struct {
	SeatID     string          `json:"seat_id"`
	SeatRow    string          `json:"seat_row"`
	SeatNumber int             `json:"seat_number"`
	Label      string          `json:"label"`
	SeatType   entity.SeatType `json:"seat_type"`
	Price      decimal.Decimal `json:"price"`
}

// BookingShowResponse snapshot show saat booking dibuat
type BookingShowResponse struct {
	ShowID     string    `json:"show_id"`
	MovieTitle string    `json:"movie_title"`
	VenueName  string    `json:"venue_name"`
	ScreenID   string    `json:"screen_id"`
	ShowDate   string    `json:"show_date"`
	ShowTime   string    `json:"show_time"`
	StartsAt   time.Time `json:"starts_at"`
}

type BookingResponse struct {
	ID                 string                `json:"id"`
	Reference          string                `json:"reference"`
	UserID             string                `json:"user_id"`
	Show               BookingShowResponse   `json:"show"`
	Seats              []BookingSeatResponse `json:"seats"`
	TotalAmount        decimal.Decimal       `json:"total_amount"`
	PaymentMethod      entity.PaymentMethod  `json:"payment_method"`
	TransactionID      string                `json:"transaction_id"`
	BookingDate        time.Time             `json:"booking_date"`
	Status             entity.BookingStatus  `json:"status"`
	Cancellable        bool                  `json:"cancellable"`
	CancelDeadline     time.Time             `json:"cancel_deadline"`
	CancelledAt        *time.Time            `json:"cancelled_at,omitempty"`
	CancellationReason *string               `json:"cancellation_reason,omitempty"`
	RefundAmount       *decimal.Decimal      `json:"refund_amount,omitempty"`
}

// BookingState nilai turunan yang dihitung saat dibaca, bukan disimpan
type BookingState struct {
	Status         entity.BookingStatus
	Cancellable    bool
	CancelDeadline time.Time
}

func BookingToResponse(b *entity.Booking, state BookingState, loc *time.Location) BookingResponse {
	starts := b.ShowStartsAt.In(loc)

	seats := make([]BookingSeatResponse, len(b.Seats))
	for i, s := range b.Seats {
		seats[i] = BookingSeatResponse{
			SeatID:     s.SeatID.String(),
			SeatRow:    s.SeatRow,
			SeatNumber: s.SeatNumber,
			Label:      s.Label(),
			SeatType:   s.SeatType,
			Price:      s.Price,
		}
	}

	resp := BookingResponse{
		ID:        b.ID.String(),
		Reference: b.Reference,
		UserID:    b.UserID.String(),
		Show: BookingShowResponse{
			ShowID:     b.ShowID.String(),
			MovieTitle: b.MovieTitle,
			VenueName:  b.VenueName,
			ScreenID:   b.ScreenID,
			ShowDate:   starts.Format(DateLayout),
			ShowTime:   starts.Format(TimeLayout),
			StartsAt:   b.ShowStartsAt,
		},
		Seats:              seats,
		TotalAmount:        b.TotalAmount,
		PaymentMethod:      b.PaymentMethod,
		TransactionID:      b.TransactionID,
		BookingDate:        b.BookingDate,
		Status:             state.Status,
		Cancellable:        state.Cancellable,
		CancelDeadline:     state.CancelDeadline,
		CancelledAt:        b.CancelledAt,
		CancellationReason: b.CancellationReason,
	}
	if b.RefundAmount.Valid {
		refund := b.RefundAmount.Decimal
		resp.RefundAmount = &refund
	}

	return resp
}
