package client

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"movie-booking/internal/dto/request"
	"movie-booking/internal/dto/response"

	"github.com/lithammer/shortuuid/v3"
)

// Checkout satu percobaan pembayaran untuk satu Selection. Idempotency key dibuat sekali
// sehingga retry setelah timeout tidak membuat booking kedua.
type Checkout struct {
	api       API
	selection *Selection
	key       string

	inFlight atomic.Bool

	mu      sync.Mutex
	booking *response.BookingResponse
}

func NewCheckout(api API, selection *Selection) (*Checkout, error) {
	if selection == nil || selection.ShowID == "" || len(selection.Seats) == 0 {
		return nil, &StateError{Status: http.StatusConflict, Message: "booking context is missing, pick a show and seats first"}
	}
	return &Checkout{
		api:       api,
		selection: selection,
		key:       "ck-" + shortuuid.New(),
	}, nil
}

func (c *Checkout) IdempotencyKey() string { return c.key }

// InFlight true selama Submit berjalan, tombol bayar harus nonaktif
func (c *Checkout) InFlight() bool { return c.inFlight.Load() }

// Submit validasi form lalu kirim checkout. Submit kedua saat yang pertama masih
// berjalan ditolak dengan ErrCheckoutInFlight; setelah berhasil booking yang sama dikembalikan.
func (c *Checkout) Submit(ctx context.Context, payment request.PaymentDetails) (*response.BookingResponse, error) {
	if b := c.result(); b != nil {
		return b, nil
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, ErrCheckoutInFlight
	}
	defer c.inFlight.Store(false)

	req := &request.CheckoutRequest{
		IdempotencyKey: c.key,
		ShowID:         c.selection.ShowID,
		SeatIDs:        c.selection.SeatIDs(),
		Payment:        payment,
	}
	if errs := req.Validate(); errs != nil {
		return nil, &ValidationError{Message: "Validation failed", Fields: errs}
	}

	booking, err := c.api.Checkout(ctx, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.booking = booking
	c.mu.Unlock()
	return booking, nil
}

func (c *Checkout) result() *response.BookingResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.booking
}
