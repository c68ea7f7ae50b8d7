package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/dto/response"
	"movie-booking/pkg/utils"

	"github.com/shopspring/decimal"
)

var errUnknownBookingShape = errors.New("unknown booking shape")

// NormalizeBooking terima bentuk booking kanonik (snake_case, seats berupa object) maupun
// bentuk lama yang datar (camelCase, seats berupa label "A1"). Hanya dipakai saat membaca.
func NormalizeBooking(raw json.RawMessage) (*response.BookingResponse, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("decode booking: %w", err)
	}

	switch {
	case keys["total_amount"] != nil:
		var b response.BookingResponse
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("decode booking: %w", err)
		}
		return &b, nil

	case keys["totalAmount"] != nil:
		var legacy legacyBooking
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return nil, fmt.Errorf("decode legacy booking: %w", err)
		}
		b := legacy.canonical(time.Now())
		return &b, nil
	}

	return nil, errUnknownBookingShape
}

func NormalizeBookings(raws []json.RawMessage) ([]response.BookingResponse, error) {
	out := make([]response.BookingResponse, 0, len(raws))
	for i, raw := range raws {
		b, err := NormalizeBooking(raw)
		if err != nil {
			return nil, fmt.Errorf("booking %d: %w", i, err)
		}
		out = append(out, *b)
	}
	return out, nil
}

// flexString id lama kadang angka kadang string
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type legacyBooking struct {
	ID            flexString       `json:"id"`
	Reference     string           `json:"bookingReference"`
	UserID        flexString       `json:"userId"`
	ShowID        flexString       `json:"showId"`
	MovieTitle    string           `json:"movieTitle"`
	Venue         string           `json:"venue"`
	Date          string           `json:"date"`
	ShowDate      string           `json:"showDate"`
	ShowTime      string           `json:"showTime"`
	Seats         []string         `json:"seats"`
	TotalAmount   decimal.Decimal  `json:"totalAmount"`
	PaymentMethod string           `json:"paymentMethod"`
	TransactionID string           `json:"transactionId"`
	Status        string           `json:"status"`
	BookingDate   string           `json:"bookingDate"`
	RefundAmount  *decimal.Decimal `json:"refundAmount"`
}

func (l legacyBooking) canonical(now time.Time) response.BookingResponse {
	status := entity.BookingStatus(strings.ToUpper(strings.TrimSpace(l.Status)))
	if status == "" {
		status = entity.BookingStatusConfirmed
	}

	reference := l.Reference
	if reference == "" {
		reference = "BK" + string(l.ID)
	}

	showDate := l.ShowDate
	if showDate == "" {
		showDate = l.Date
	}
	startsAt := parseShowStart(showDate, l.ShowTime)

	b := response.BookingResponse{
		ID:        string(l.ID),
		Reference: reference,
		UserID:    string(l.UserID),
		Show: response.BookingShowResponse{
			ShowID:     string(l.ShowID),
			MovieTitle: l.MovieTitle,
			VenueName:  l.Venue,
			ShowDate:   showDate,
			ShowTime:   l.ShowTime,
			StartsAt:   startsAt,
		},
		Seats:         legacySeats(l.Seats, l.TotalAmount),
		TotalAmount:   l.TotalAmount,
		PaymentMethod: entity.PaymentMethod(strings.ToUpper(l.PaymentMethod)),
		TransactionID: l.TransactionID,
		BookingDate:   parseTimestamp(l.BookingDate),
		Status:        status,
	}

	if !startsAt.IsZero() {
		b.CancelDeadline = startsAt.Add(-utils.DefaultBookingConfig().CancelCutoff())
		if status == entity.BookingStatusConfirmed && !now.Before(startsAt) {
			b.Status = entity.BookingStatusCompleted
		}
		b.Cancellable = b.Status == entity.BookingStatusConfirmed && now.Before(b.CancelDeadline)
	}
	if status == entity.BookingStatusCancelled && l.RefundAmount != nil {
		refund := *l.RefundAmount
		b.RefundAmount = &refund
	}

	return b
}

// legacySeats bentuk lama tidak menyimpan harga per kursi, total dibagi rata
// dan sisa pembulatan masuk ke kursi terakhir supaya jumlahnya tetap sama
func legacySeats(labels []string, total decimal.Decimal) []response.BookingSeatResponse {
	if len(labels) == 0 {
		return []response.BookingSeatResponse{}
	}

	each := total.Div(decimal.NewFromInt(int64(len(labels)))).Round(2)
	seats := make([]response.BookingSeatResponse, len(labels))
	assigned := decimal.Zero
	for i, label := range labels {
		row, number := splitSeatLabel(label)
		price := each
		if i == len(labels)-1 {
			price = total.Sub(assigned)
		}
		assigned = assigned.Add(price)

		seats[i] = response.BookingSeatResponse{
			SeatRow:    row,
			SeatNumber: number,
			Label:      strings.ToUpper(strings.TrimSpace(label)),
			SeatType:   entity.SeatTypeStandard,
			Price:      price,
		}
	}
	return seats
}

// splitSeatLabel "A12" -> ("A", 12)
func splitSeatLabel(label string) (string, int) {
	label = strings.ToUpper(strings.TrimSpace(label))
	i := strings.IndexFunc(label, func(r rune) bool { return r >= '0' && r <= '9' })
	if i < 0 {
		return label, 0
	}
	n, err := strconv.Atoi(label[i:])
	if err != nil {
		return label[:i], 0
	}
	return label[:i], n
}

func parseShowStart(date, clock string) time.Time {
	if date == "" {
		return time.Time{}
	}
	if clock == "" {
		clock = "00:00"
	}
	for _, layout := range []string{response.TimeLayout, "3:04 PM", "15:04:05"} {
		if t, err := time.Parse(response.DateLayout+" "+layout, date+" "+clock); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, response.DateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
