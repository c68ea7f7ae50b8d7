package adaptor

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/event"
	"movie-booking/internal/usecase"
	"movie-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &usecase.ValidationError{Fields: map[string]string{"payment.cvv": "invalid"}}, http.StatusBadRequest},
		{"selection limit", usecase.ErrSelectionLimitExceeded, http.StatusBadRequest},
		{"unauthorized", usecase.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", usecase.ErrForbidden, http.StatusForbidden},
		{"not found", fmt.Errorf("booking: %w", usecase.ErrNotFound), http.StatusNotFound},
		{"declined", usecase.ErrPaymentDeclined, http.StatusPaymentRequired},
		{"invalid transition", usecase.ErrInvalidTransition, http.StatusConflict},
		{"cancellation closed", usecase.ErrCancellationClosed, http.StatusConflict},
		{"seat unavailable", usecase.ErrSeatUnavailable, http.StatusConflict},
		{"context missing", usecase.ErrBookingContextMissing, http.StatusConflict},
		{"load error", &usecase.LoadError{Resource: "bookings", Err: errors.New("conn reset")}, http.StatusServiceUnavailable},
		{"timeout", fmt.Errorf("checkout: %w", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleServiceError(rec, zap.NewNop(), tt.err, "test")

			assert.Equal(t, tt.want, rec.Code)

			var body utils.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Status)
		})
	}
}

func TestHandleServiceError_ValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	handleServiceError(rec, zap.NewNop(), &usecase.ValidationError{Fields: map[string]string{"payment.upi_id": "invalid UPI id"}}, "checkout")

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid UPI id", body.Errors["payment.upi_id"])
}

type chanStream struct {
	ch chan event.BookingsChanged
}

func (s *chanStream) Subscribe(context.Context) (<-chan event.BookingsChanged, error) {
	return s.ch, nil
}

func TestBookingHandler_EventsFiltersByOwner(t *testing.T) {
	stream := &chanStream{ch: make(chan event.BookingsChanged, 2)}
	h := NewBookingHandler(nil, nil, stream, zap.NewNop())

	me := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := utils.SetUserContext(r.Context(), me, string(entity.RoleCustomer))
		h.Events(w, r.WithContext(ctx))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	mine := uuid.New()
	stream.ch <- event.BookingsChanged{BookingID: uuid.New(), UserID: uuid.New(), Kind: event.KindCreated}
	stream.ch <- event.BookingsChanged{BookingID: mine, UserID: me, Kind: event.KindCancelled}

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "data: ") {
			lines = append(lines, line)
			break
		}
		if line != "" {
			lines = append(lines, line)
		}
	}

	assert.Equal(t, ": connected", lines[0])
	assert.Contains(t, lines, "id: "+mine.String())
	assert.Contains(t, lines, "event: bookings.changed")

	var ev event.BookingsChanged
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(lines[len(lines)-1], "data: ")), &ev))
	assert.Equal(t, mine, ev.BookingID)
	assert.Equal(t, event.KindCancelled, ev.Kind)
}

func TestBookingHandler_EventsRequiresUser(t *testing.T) {
	h := NewBookingHandler(nil, nil, &chanStream{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Events(rec, httptest.NewRequest(http.MethodGet, "/api/bookings/events", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
