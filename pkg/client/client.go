package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"movie-booking/internal/dto/request"
	"movie-booking/internal/dto/response"

	"go.uber.org/zap"
)

// API operasi yang dipakai UI. RealClient dan FallbackClient mengembalikan bentuk yang sama.
type API interface {
	Login(ctx context.Context, username, password string) (*Session, error)
	Logout(ctx context.Context) error

	Movies(ctx context.Context, filter MovieFilter) ([]response.MovieResponse, error)
	ShowsByMovie(ctx context.Context, movieID string, filter ShowFilter) ([]response.ShowResponse, error)
	Cities(ctx context.Context) ([]response.CityResponse, error)
	Venues(ctx context.Context, cityID string) ([]response.VenueResponse, error)

	SeatMap(ctx context.Context, showID string) (*response.SeatMapResponse, error)
	ReserveSeats(ctx context.Context, showID string, seatIDs []string) (*response.ReserveSeatsResponse, error)

	Checkout(ctx context.Context, req *request.CheckoutRequest) (*response.BookingResponse, error)
	MyBookings(ctx context.Context) ([]response.BookingResponse, error)
	AllBookings(ctx context.Context) ([]response.BookingResponse, error)
	CancelBooking(ctx context.Context, bookingID, reason string) (*response.BookingResponse, error)

	Notifications(ctx context.Context) (*response.NotificationListResponse, error)

	Wallet(ctx context.Context) (*response.WalletResponse, error)
	TopUpWallet(ctx context.Context, req *request.TopUpWalletRequest) (*response.WalletResponse, error)
}

type MovieFilter struct {
	Query    string
	Genre    string
	Language string
}

type ShowFilter struct {
	Date    string // 2006-01-02
	CityID  string
	VenueID string
}

type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeReal     Mode = "real"
	ModeFallback Mode = "fallback"
)

type Options struct {
	BaseURL string
	Mode    Mode
	// SessionPath file JSON session, kosong berarti session hanya di memory
	SessionPath string
	HTTPClient  *http.Client
	Timeout     time.Duration
	Logger      *zap.Logger
}

// New pilih implementasi sekali saat startup. ModeAuto cek /health, kalau gagal pakai data demo.
func New(ctx context.Context, opts Options) (API, *SessionStore, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	store := NewSessionStore(opts.SessionPath)
	if _, err := store.Load(); err != nil {
		log.Warn("Stored session unreadable, starting logged out", zap.Error(err))
		_ = store.Clear()
	}

	mode := opts.Mode
	if mode == "" {
		mode = ModeAuto
	}

	switch mode {
	case ModeFallback:
		log.Info("Using fallback client")
		return NewFallbackClient(store, log), store, nil
	case ModeReal:
		return NewRealClient(opts, store), store, nil
	}

	rc := NewRealClient(opts, store)
	if err := rc.Health(ctx); err != nil {
		log.Warn("API unreachable, using fallback client",
			zap.String("base_url", opts.BaseURL),
			zap.Error(err))
		return NewFallbackClient(store, log), store, nil
	}

	log.Info("Using API", zap.String("base_url", opts.BaseURL))
	return rc, store, nil
}

func normalizeBaseURL(raw string) string {
	if raw == "" {
		raw = "http://localhost:8080"
	}
	return strings.TrimRight(raw, "/")
}
