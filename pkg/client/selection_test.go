package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"movie-booking/internal/dto/response"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingAPI catat setiap ReserveSeats, method lain diteruskan ke API asli
type recordingAPI struct {
	API
	fail bool

	mu    sync.Mutex
	calls [][]string
}

func (r *recordingAPI) ReserveSeats(ctx context.Context, showID string, seatIDs []string) (*response.ReserveSeatsResponse, error) {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string(nil), seatIDs...))
	r.mu.Unlock()

	if r.fail {
		return nil, &NetworkError{Op: "reserve seats", Err: errors.New("connection refused")}
	}
	return r.API.ReserveSeats(ctx, showID, seatIDs)
}

func (r *recordingAPI) reserveCalls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

func newSelectionFixture(t *testing.T, debounce time.Duration) (*recordingAPI, *SeatSelection, *response.SeatMapResponse) {
	t.Helper()
	api := &recordingAPI{API: loggedInFallback(t, "asha")}
	seatMap, _ := firstShow(t, api)

	sel := NewSeatSelection(api, seatMap, SelectionOptions{Debounce: debounce})
	t.Cleanup(sel.Close)
	return api, sel, seatMap
}

func TestSeatSelection_TotalFromTierPrices(t *testing.T) {
	_, sel, seatMap := newSelectionFixture(t, time.Hour)

	require.NoError(t, sel.Toggle(seatByLabel(t, seatMap, "B1").ID))
	require.NoError(t, sel.Toggle(seatByLabel(t, seatMap, "A2").ID))
	assert.True(t, sel.Total().Equal(decimal.NewFromInt(600)), "got %s", sel.Total())

	require.NoError(t, sel.Toggle(seatByLabel(t, seatMap, "D1").ID))
	assert.True(t, sel.Total().Equal(decimal.NewFromInt(800)))

	// toggle lagi = batal pilih
	require.NoError(t, sel.Toggle(seatByLabel(t, seatMap, "A2").ID))
	assert.True(t, sel.Total().Equal(decimal.NewFromInt(450)))
	assert.Len(t, sel.Selected(), 2)
}

func TestSeatSelection_LimitAndUnavailableSeats(t *testing.T) {
	_, sel, seatMap := newSelectionFixture(t, time.Hour)

	row := seatMap.Rows[1].Seats
	for i := 0; i < 10; i++ {
		require.NoError(t, sel.Toggle(row[i].ID))
	}
	assert.ErrorIs(t, sel.Toggle(seatMap.Rows[2].Seats[0].ID), ErrSelectionLimitExceeded)
	assert.Len(t, sel.Selected(), 10)

	blocked := NewSeatSelection(sel.api, &response.SeatMapResponse{
		ShowID: seatMap.ShowID,
		Rows: []response.SeatRowResponse{{Row: "Z", Seats: []response.SeatResponse{
			{ID: "sold", IsAvailable: false},
			{ID: "held", IsAvailable: true, IsBlocked: true},
		}}},
	}, SelectionOptions{Debounce: time.Hour})
	defer blocked.Close()

	require.NoError(t, blocked.Toggle("sold"))
	require.NoError(t, blocked.Toggle("held"))
	require.NoError(t, blocked.Toggle("unknown"))
	assert.Empty(t, blocked.Selected())
}

func TestSeatSelection_DebounceSendsLatestNewSeats(t *testing.T) {
	api, sel, seatMap := newSelectionFixture(t, 50*time.Millisecond)
	c1 := seatByLabel(t, seatMap, "C1").ID
	c2 := seatByLabel(t, seatMap, "C2").ID
	c3 := seatByLabel(t, seatMap, "C3").ID

	require.NoError(t, sel.Toggle(c1))
	require.NoError(t, sel.Toggle(c2))
	require.NoError(t, sel.Toggle(c1)) // batal sebelum debounce habis
	require.NoError(t, sel.Toggle(c3))

	require.Eventually(t, func() bool { return sel.ReservedByMe(c2) && sel.ReservedByMe(c3) }, 2*time.Second, 10*time.Millisecond)

	calls := api.reserveCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{c2, c3}, calls[0])
	assert.False(t, sel.ReservedByMe(c1))
	assert.False(t, sel.HoldExpiresAt().IsZero())

	// kursi yang sudah di-hold tidak dikirim ulang
	c4 := seatByLabel(t, seatMap, "C4").ID
	require.NoError(t, sel.Toggle(c4))
	require.Eventually(t, func() bool { return sel.ReservedByMe(c4) }, 2*time.Second, 10*time.Millisecond)

	calls = api.reserveCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, []string{c4}, calls[1])
}

func TestSeatSelection_FailedHoldKeepsSelection(t *testing.T) {
	api, sel, seatMap := newSelectionFixture(t, 10*time.Millisecond)
	api.fail = true

	done := make(chan error, 1)
	sel.onReserve = func(_ []string, err error) { done <- err }

	seat := seatByLabel(t, seatMap, "E5").ID
	require.NoError(t, sel.Toggle(seat))

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reserve was never attempted")
	}

	assert.True(t, sel.IsSelected(seat))
	assert.False(t, sel.ReservedByMe(seat))
}

func TestSeatSelection_Confirm(t *testing.T) {
	_, sel, seatMap := newSelectionFixture(t, time.Hour)

	_, err := sel.Confirm()
	assert.ErrorIs(t, err, ErrNoSeatsSelected)

	require.NoError(t, sel.Toggle(seatByLabel(t, seatMap, "B2").ID))
	confirmed, err := sel.Confirm()
	require.NoError(t, err)
	assert.Equal(t, seatMap.ShowID, confirmed.ShowID)
	assert.Len(t, confirmed.SeatIDs(), 1)
	assert.True(t, confirmed.Total.Equal(decimal.NewFromInt(250)))
}
