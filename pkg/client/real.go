package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"movie-booking/internal/dto/request"
	"movie-booking/internal/dto/response"
	"movie-booking/pkg/utils"
)

const defaultTimeout = 30 * time.Second

type RealClient struct {
	baseURL string
	http    *http.Client
	session *SessionStore
}

func NewRealClient(opts Options, store *SessionStore) *RealClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if store == nil {
		store = NewSessionStore("")
	}

	return &RealClient{
		baseURL: normalizeBaseURL(opts.BaseURL),
		http:    httpClient,
		session: store,
	}
}

func (c *RealClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: "health", Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &NetworkError{Op: "health", Status: resp.StatusCode}
	}
	return nil
}

func (c *RealClient) Login(ctx context.Context, username, password string) (*Session, error) {
	var auth response.AuthResponse
	body := request.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, "login", http.MethodPost, "/api/login", nil, body, &auth); err != nil {
		return nil, err
	}

	session := &Session{User: auth.User, Token: auth.Token}
	if err := c.session.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Logout session lokal tetap dihapus walaupun server gagal dihubungi
func (c *RealClient) Logout(ctx context.Context) error {
	var err error
	if c.session.token() != "" {
		err = c.do(ctx, "logout", http.MethodPost, "/api/logout", nil, nil, nil)
	}
	if clearErr := c.session.Clear(); clearErr != nil {
		return clearErr
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return nil
	}
	return err
}

func (c *RealClient) Movies(ctx context.Context, filter MovieFilter) ([]response.MovieResponse, error) {
	q := url.Values{}
	setIf(q, "q", filter.Query)
	setIf(q, "genre", filter.Genre)
	setIf(q, "language", filter.Language)
	q.Set("per_page", "100")

	var page response.PaginatedResponse[response.MovieResponse]
	if err := c.do(ctx, "movies", http.MethodGet, "/api/movies", q, nil, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (c *RealClient) ShowsByMovie(ctx context.Context, movieID string, filter ShowFilter) ([]response.ShowResponse, error) {
	q := url.Values{}
	setIf(q, "date", filter.Date)
	setIf(q, "city_id", filter.CityID)
	setIf(q, "venue_id", filter.VenueID)

	var shows []response.ShowResponse
	path := "/api/movies/" + url.PathEscape(movieID) + "/shows"
	if err := c.do(ctx, "shows", http.MethodGet, path, q, nil, &shows); err != nil {
		return nil, err
	}
	return shows, nil
}

func (c *RealClient) Cities(ctx context.Context) ([]response.CityResponse, error) {
	var cities []response.CityResponse
	if err := c.do(ctx, "cities", http.MethodGet, "/api/cities", nil, nil, &cities); err != nil {
		return nil, err
	}
	return cities, nil
}

func (c *RealClient) Venues(ctx context.Context, cityID string) ([]response.VenueResponse, error) {
	q := url.Values{}
	setIf(q, "city_id", cityID)

	var venues []response.VenueResponse
	if err := c.do(ctx, "venues", http.MethodGet, "/api/venues", q, nil, &venues); err != nil {
		return nil, err
	}
	return venues, nil
}

func (c *RealClient) SeatMap(ctx context.Context, showID string) (*response.SeatMapResponse, error) {
	var seatMap response.SeatMapResponse
	path := "/api/shows/" + url.PathEscape(showID) + "/seats"
	if err := c.do(ctx, "seat map", http.MethodGet, path, nil, nil, &seatMap); err != nil {
		return nil, err
	}
	return &seatMap, nil
}

func (c *RealClient) ReserveSeats(ctx context.Context, showID string, seatIDs []string) (*response.ReserveSeatsResponse, error) {
	var resp response.ReserveSeatsResponse
	path := "/api/shows/" + url.PathEscape(showID) + "/seats/reserve"
	body := request.ReserveSeatsRequest{SeatIDs: seatIDs}
	if err := c.do(ctx, "reserve seats", http.MethodPost, path, nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *RealClient) Checkout(ctx context.Context, req *request.CheckoutRequest) (*response.BookingResponse, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "checkout", http.MethodPost, "/api/checkout", nil, req, &raw); err != nil {
		return nil, err
	}
	return NormalizeBooking(raw)
}

func (c *RealClient) MyBookings(ctx context.Context) ([]response.BookingResponse, error) {
	return c.bookings(ctx, "my bookings", "/api/bookings")
}

func (c *RealClient) AllBookings(ctx context.Context) ([]response.BookingResponse, error) {
	return c.bookings(ctx, "all bookings", "/api/admin/bookings")
}

func (c *RealClient) bookings(ctx context.Context, op, path string) ([]response.BookingResponse, error) {
	q := url.Values{}
	q.Set("per_page", "100")

	var page response.PaginatedResponse[json.RawMessage]
	if err := c.do(ctx, op, http.MethodGet, path, q, nil, &page); err != nil {
		return nil, err
	}
	return NormalizeBookings(page.Data)
}

func (c *RealClient) CancelBooking(ctx context.Context, bookingID, reason string) (*response.BookingResponse, error) {
	var raw json.RawMessage
	path := "/api/bookings/" + url.PathEscape(bookingID) + "/cancel"
	body := request.CancelBookingRequest{Reason: reason}
	if err := c.do(ctx, "cancel booking", http.MethodPut, path, nil, body, &raw); err != nil {
		return nil, err
	}
	return NormalizeBooking(raw)
}

func (c *RealClient) Notifications(ctx context.Context) (*response.NotificationListResponse, error) {
	var list response.NotificationListResponse
	if err := c.do(ctx, "notifications", http.MethodGet, "/api/notifications", nil, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *RealClient) Wallet(ctx context.Context) (*response.WalletResponse, error) {
	var wallet response.WalletResponse
	if err := c.do(ctx, "wallet", http.MethodGet, "/api/me/wallet", nil, nil, &wallet); err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (c *RealClient) TopUpWallet(ctx context.Context, req *request.TopUpWalletRequest) (*response.WalletResponse, error) {
	var wallet response.WalletResponse
	if err := c.do(ctx, "top up wallet", http.MethodPost, "/api/me/wallet/top-up", nil, req, &wallet); err != nil {
		return nil, err
	}
	return &wallet, nil
}

// do kirim request JSON lalu decode field data dari envelope ke out
func (c *RealClient) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	env, err := utils.DecodeResponse(resp.Body)
	if err != nil {
		if resp.StatusCode >= 300 {
			return &NetworkError{Op: op, Status: resp.StatusCode}
		}
		return &NetworkError{Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= 300 {
		return c.statusError(op, resp.StatusCode, env)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

func (c *RealClient) statusError(op string, status int, env utils.RawResponse) error {
	switch status {
	case http.StatusUnauthorized:
		_ = c.session.Clear()
		return &AuthError{Message: env.Message}

	case http.StatusBadRequest:
		vErr := &ValidationError{Message: env.Message}
		if len(env.Errors) > 0 {
			_ = json.Unmarshal(env.Errors, &vErr.Fields)
		}
		return vErr

	case http.StatusPaymentRequired:
		return fmt.Errorf("%s: %w", op, ErrPaymentDeclined)

	case http.StatusNotFound, http.StatusConflict:
		return &StateError{Status: status, Message: env.Message}

	default:
		return &NetworkError{Op: op, Status: status, Message: env.Message}
	}
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
