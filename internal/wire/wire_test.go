package wire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"movie-booking/internal/data/cache"
	"movie-booking/internal/data/repository"
	"movie-booking/internal/event"
	"movie-booking/internal/usecase"
	"movie-booking/pkg/middleware"
	"movie-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type noopEvents struct{}

func (noopEvents) Publish(context.Context, event.BookingsChanged) error { return nil }

func (noopEvents) Subscribe(context.Context) (<-chan event.BookingsChanged, error) {
	return make(chan event.BookingsChanged), nil
}

func setupApp(t *testing.T) (*App, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	config := &utils.Config{
		App:     utils.AppConfig{Name: "movie-booking-test"},
		Session: utils.SessionConfig{ExpiryHours: 24},
		Booking: utils.DefaultBookingConfig(),
	}
	repo := repository.NewRepository(mock, zap.NewNop())
	deps := usecase.Deps{Holds: cache.NewMemorySeatHoldStore(), Events: noopEvents{}}

	return Wiring(repo, config, deps, noopEvents{}, zap.NewNop()), mock
}

func TestRouter_Health(t *testing.T) {
	app, _ := setupApp(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.CorrelationHeader))
}

func TestRouter_Metrics(t *testing.T) {
	app, _ := setupApp(t)

	// satu request supaya histogram http punya sample
	app.Router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "movie_booking_http_request_duration_seconds"))
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	app, _ := setupApp(t)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/logout"},
		{http.MethodGet, "/api/me"},
		{http.MethodGet, "/api/me/wallet"},
		{http.MethodPost, "/api/me/wallet/top-up"},
		{http.MethodGet, "/api/bookings"},
		{http.MethodGet, "/api/bookings/events"},
		{http.MethodPost, "/api/checkout"},
		{http.MethodGet, "/api/shows/" + uuid.NewString() + "/seats"},
		{http.MethodGet, "/api/notifications"},
		{http.MethodGet, "/api/wishlist"},
		{http.MethodPut, "/api/reviews/" + uuid.NewString()},
		{http.MethodGet, "/api/admin/bookings"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			app.Router.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouter_ExpiredSessionRejected(t *testing.T) {
	app, mock := setupApp(t)
	token := uuid.NewString()

	mock.ExpectQuery("FROM sessions s").WithArgs(token).WillReturnError(pgx.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouter_Preflight(t *testing.T) {
	app, _ := setupApp(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/checkout", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestRouter_InvalidRegisterBody(t *testing.T) {
	app, _ := setupApp(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
