package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"movie-booking/internal/dto/request"
	"movie-booking/internal/dto/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowCheckoutAPI menahan Checkout sampai release ditutup
type slowCheckoutAPI struct {
	API
	calls   atomic.Int32
	keys    chan string
	started chan struct{}
	release chan struct{}
}

func (s *slowCheckoutAPI) Checkout(ctx context.Context, req *request.CheckoutRequest) (*response.BookingResponse, error) {
	s.calls.Add(1)
	s.keys <- req.IdempotencyKey
	if s.started != nil {
		s.started <- struct{}{}
		<-s.release
	}
	return s.API.Checkout(ctx, req)
}

func newCheckoutFixture(t *testing.T) (*slowCheckoutAPI, *Selection) {
	t.Helper()
	api := &slowCheckoutAPI{API: loggedInFallback(t, "asha"), keys: make(chan string, 10)}
	seatMap, _ := firstShow(t, api)

	sel := NewSeatSelection(api, seatMap, SelectionOptions{Debounce: time.Hour})
	t.Cleanup(sel.Close)
	require.NoError(t, sel.Toggle(seatByLabel(t, seatMap, "B1").ID))
	require.NoError(t, sel.Toggle(seatByLabel(t, seatMap, "A2").ID))

	confirmed, err := sel.Confirm()
	require.NoError(t, err)
	return api, confirmed
}

func TestCheckout_MissingContext(t *testing.T) {
	_, err := NewCheckout(nil, nil)
	var stateErr *StateError
	assert.True(t, errors.As(err, &stateErr))

	_, err = NewCheckout(nil, &Selection{ShowID: "x"})
	assert.True(t, errors.As(err, &stateErr))
}

func TestCheckout_ValidationBlocksSubmit(t *testing.T) {
	api, sel := newCheckoutFixture(t)
	co, err := NewCheckout(api, sel)
	require.NoError(t, err)

	payment := cardPayment()
	payment.Expiry = "13/25"
	payment.CVV = "1234"

	_, err = co.Submit(context.Background(), payment)
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Fields, "payment.expiry")
	assert.Contains(t, vErr.Fields, "payment.cvv")
	assert.Equal(t, int32(0), api.calls.Load())
	assert.False(t, co.InFlight())
}

func TestCheckout_RejectsMalformedCVV(t *testing.T) {
	api, sel := newCheckoutFixture(t)
	co, err := NewCheckout(api, sel)
	require.NoError(t, err)

	for _, cvv := range []string{"-12", "+12", "1.5", "12a"} {
		t.Run(cvv, func(t *testing.T) {
			payment := cardPayment()
			payment.CVV = cvv

			_, err := co.Submit(context.Background(), payment)
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "want ValidationError, got %v", err)
			assert.Equal(t, "CVV must be exactly 3 digits", vErr.Fields["payment.cvv"])
		})
	}
	assert.Equal(t, int32(0), api.calls.Load())
}

func TestCheckout_DoubleSubmitWhileInFlight(t *testing.T) {
	api, sel := newCheckoutFixture(t)
	api.started = make(chan struct{}, 1)
	api.release = make(chan struct{})

	co, err := NewCheckout(api, sel)
	require.NoError(t, err)

	type result struct {
		booking *response.BookingResponse
		err     error
	}
	first := make(chan result, 1)
	go func() {
		b, err := co.Submit(context.Background(), cardPayment())
		first <- result{b, err}
	}()

	select {
	case <-api.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first submit never reached the API")
	}
	assert.True(t, co.InFlight())

	_, err = co.Submit(context.Background(), cardPayment())
	assert.ErrorIs(t, err, ErrCheckoutInFlight)

	close(api.release)
	res := <-first
	require.NoError(t, res.err)
	assert.True(t, res.booking.TotalAmount.Equal(sel.Total))

	// setelah berhasil, submit mengembalikan booking yang sama tanpa request baru
	again, err := co.Submit(context.Background(), cardPayment())
	require.NoError(t, err)
	assert.Equal(t, res.booking.ID, again.ID)
	assert.Equal(t, int32(1), api.calls.Load())

	bookings, err := api.MyBookings(context.Background())
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestCheckout_RetryReusesIdempotencyKey(t *testing.T) {
	api, sel := newCheckoutFixture(t)
	co, err := NewCheckout(api, sel)
	require.NoError(t, err)

	// percobaan pertama gagal validasi, key tidak berubah untuk percobaan berikutnya
	bad := cardPayment()
	bad.CardholderName = " "
	_, err = co.Submit(context.Background(), bad)
	require.Error(t, err)

	_, err = co.Submit(context.Background(), cardPayment())
	require.NoError(t, err)

	assert.Equal(t, co.IdempotencyKey(), <-api.keys)
	assert.Regexp(t, `^ck-`, co.IdempotencyKey())
}
