package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/dto/request"
	"movie-booking/internal/dto/response"
	"movie-booking/internal/usecase"
	"movie-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var demoNamespace = uuid.MustParse("6f1c3b1e-8d2a-4c55-9a61-3f7f0c2a9b10")

// declinedTestCard kartu uji yang selalu ditolak, sama dengan gateway simulasi server
const declinedTestCard = "4000000000000002"

type demoHold struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// FallbackClient data demo in-memory dengan bentuk dan aturan yang sama dengan API,
// dipakai saat development tanpa backend
type FallbackClient struct {
	session *SessionStore
	policy  usecase.BookingPolicy
	config  utils.BookingConfig
	loc     *time.Location
	now     func() time.Time
	log     *zap.Logger

	mu            sync.Mutex
	cities        []*entity.City
	venues        []*entity.Venue
	movies        []*entity.Movie
	shows         map[uuid.UUID]*entity.ShowDetail
	seats         map[uuid.UUID]*entity.Seat
	holds         map[uuid.UUID]demoHold
	bookings      []*entity.Booking
	byKey         map[string]*entity.Booking
	notifications []*entity.Notification
	wallets       map[uuid.UUID]*entity.Wallet
}

func NewFallbackClient(store *SessionStore, log *zap.Logger) *FallbackClient {
	if store == nil {
		store = NewSessionStore("")
	}
	if log == nil {
		log = zap.NewNop()
	}

	cfg := utils.DefaultBookingConfig()
	c := &FallbackClient{
		session: store,
		policy:  usecase.NewBookingPolicy(cfg),
		config:  cfg,
		loc:     time.Local,
		now:     time.Now,
		log:     log.With(zap.String("client", "fallback")),
		shows:   make(map[uuid.UUID]*entity.ShowDetail),
		seats:   make(map[uuid.UUID]*entity.Seat),
		holds:   make(map[uuid.UUID]demoHold),
		byKey:   make(map[string]*entity.Booking),
		wallets: make(map[uuid.UUID]*entity.Wallet),
	}
	c.seed(c.now())
	return c
}

func demoID(parts ...string) uuid.UUID {
	return uuid.NewSHA1(demoNamespace, []byte(strings.Join(parts, "/")))
}

func (c *FallbackClient) seed(now time.Time) {
	bangalore := &entity.City{BaseSimple: entity.BaseSimple{ID: demoID("city", "bangalore")}, Name: "Bangalore", State: "Karnataka"}
	mumbai := &entity.City{BaseSimple: entity.BaseSimple{ID: demoID("city", "mumbai")}, Name: "Mumbai", State: "Maharashtra"}
	c.cities = []*entity.City{bangalore, mumbai}

	c.venues = []*entity.Venue{
		{BaseNoDelete: entity.BaseNoDelete{ID: demoID("venue", "imax")}, CityID: bangalore.ID, Name: "CinemaFlix IMAX", Address: "MG Road, Bangalore"},
		{BaseNoDelete: entity.BaseNoDelete{ID: demoID("venue", "galaxy")}, CityID: mumbai.ID, Name: "Galaxy Multiplex", Address: "Bandra West, Mumbai"},
	}

	release := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	c.movies = []*entity.Movie{
		{Base: entity.Base{ID: demoID("movie", "horizon")}, Title: "Beyond the Horizon", Genre: "Sci-Fi", Language: "English", DurationMinutes: 148, Rating: "UA", ReleaseDate: release},
		{Base: entity.Base{ID: demoID("movie", "monsoon")}, Title: "Monsoon Nights", Genre: "Drama", Language: "Hindi", DurationMinutes: 132, Rating: "U", ReleaseDate: release},
		{Base: entity.Base{ID: demoID("movie", "heist")}, Title: "The Last Heist", Genre: "Action", Language: "Tamil", DurationMinutes: 155, Rating: "A", ReleaseDate: release},
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)
	for _, movie := range c.movies {
		for _, venue := range c.venues {
			for _, offset := range []time.Duration{24*time.Hour + 18*time.Hour, 72*time.Hour + 21*time.Hour} {
				starts := day.Add(offset)
				show := &entity.ShowDetail{
					Show: entity.Show{
						BaseNoDelete: entity.BaseNoDelete{ID: demoID("show", movie.ID.String(), venue.ID.String(), starts.Format(time.RFC3339))},
						MovieID:      movie.ID,
						VenueID:      venue.ID,
						ScreenID:     "Screen 1",
						StartsAt:     starts,
						Price:        decimal.NewFromInt(250),
						IsActive:     true,
					},
					MovieTitle: movie.Title,
					VenueName:  venue.Name,
					CityID:     venue.CityID,
				}
				c.shows[show.ID] = show
				c.seedSeats(show)
			}
		}
	}
}

// seedSeats baris A premium, B-C standard, D-E economy, 10 kursi per baris
func (c *FallbackClient) seedSeats(show *entity.ShowDetail) {
	rows := []struct {
		row  string
		kind entity.SeatType
	}{
		{"A", entity.SeatTypePremium},
		{"B", entity.SeatTypeStandard},
		{"C", entity.SeatTypeStandard},
		{"D", entity.SeatTypeEconomy},
		{"E", entity.SeatTypeEconomy},
	}
	for _, r := range rows {
		for n := 1; n <= 10; n++ {
			seat := &entity.Seat{
				BaseNoDelete: entity.BaseNoDelete{ID: demoID("seat", show.ID.String(), fmt.Sprintf("%s%d", r.row, n))},
				ShowID:       show.ID,
				SeatRow:      r.row,
				SeatNumber:   n,
				SeatType:     r.kind,
				IsAvailable:  true,
			}
			c.seats[seat.ID] = seat
			show.TotalSeats++
			show.AvailableSeats++
		}
	}
}

func (c *FallbackClient) currentUser() (uuid.UUID, *Session, error) {
	session := c.session.Current()
	if session == nil {
		return uuid.Nil, nil, &AuthError{Message: ErrNotLoggedIn.Error()}
	}
	id, err := uuid.Parse(session.User.ID)
	if err != nil {
		_ = c.session.Clear()
		return uuid.Nil, nil, &AuthError{Message: "invalid session"}
	}
	return id, session, nil
}

func (c *FallbackClient) Login(_ context.Context, username, password string) (*Session, error) {
	if errs := utils.ValidateStruct(&request.LoginRequest{Username: username, Password: password}); errs != nil {
		return nil, &ValidationError{Message: "Validation failed", Fields: errs}
	}

	name := strings.ToLower(strings.TrimSpace(username))
	roles := []string{string(entity.RoleCustomer)}
	if name == "admin" {
		roles = append(roles, string(entity.RoleAdmin))
	}

	session := &Session{
		User: response.UserResponse{
			ID:        demoID("user", name).String(),
			Username:  name,
			Email:     name + "@demo.local",
			Name:      username,
			Roles:     roles,
			CreatedAt: c.now(),
		},
		Token: uuid.NewString(),
	}
	if err := c.session.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (c *FallbackClient) Logout(context.Context) error {
	return c.session.Clear()
}

func (c *FallbackClient) Movies(_ context.Context, filter MovieFilter) ([]response.MovieResponse, error) {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	out := make([]response.MovieResponse, 0, len(c.movies))
	for _, m := range c.movies {
		if query != "" && !strings.Contains(strings.ToLower(m.Title), query) {
			continue
		}
		if filter.Genre != "" && !strings.EqualFold(m.Genre, filter.Genre) {
			continue
		}
		if filter.Language != "" && !strings.EqualFold(m.Language, filter.Language) {
			continue
		}
		out = append(out, response.MovieToResponse(m, nil))
	}
	return out, nil
}

func (c *FallbackClient) ShowsByMovie(_ context.Context, movieID string, filter ShowFilter) ([]response.ShowResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	out := []response.ShowResponse{}
	for _, show := range c.shows {
		if show.MovieID.String() != movieID || !show.StartsAt.After(now) {
			continue
		}
		if filter.Date != "" && show.StartsAt.In(c.loc).Format(response.DateLayout) != filter.Date {
			continue
		}
		if filter.CityID != "" && show.CityID.String() != filter.CityID {
			continue
		}
		if filter.VenueID != "" && show.VenueID.String() != filter.VenueID {
			continue
		}
		out = append(out, response.ShowToResponse(show, c.loc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (c *FallbackClient) Cities(context.Context) ([]response.CityResponse, error) {
	out := make([]response.CityResponse, len(c.cities))
	for i, city := range c.cities {
		out[i] = response.CityToResponse(city)
	}
	return out, nil
}

func (c *FallbackClient) Venues(_ context.Context, cityID string) ([]response.VenueResponse, error) {
	out := []response.VenueResponse{}
	for _, v := range c.venues {
		if cityID == "" || v.CityID.String() == cityID {
			out = append(out, response.VenueToResponse(v))
		}
	}
	return out, nil
}

func (c *FallbackClient) SeatMap(_ context.Context, showID string) (*response.SeatMapResponse, error) {
	userID, _, err := c.currentUser()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	show, err := c.findShow(showID)
	if err != nil {
		return nil, err
	}

	now := c.now()
	byRow := make(map[string][]response.SeatResponse)
	for _, seat := range c.seats {
		if seat.ShowID != show.ID {
			continue
		}
		hold, held := c.activeHold(seat.ID, now)
		byRow[seat.SeatRow] = append(byRow[seat.SeatRow], response.SeatResponse{
			ID:           seat.ID.String(),
			ShowID:       show.ID.String(),
			SeatRow:      seat.SeatRow,
			SeatNumber:   seat.SeatNumber,
			Label:        seat.Label(),
			SeatType:     seat.SeatType,
			IsAvailable:  seat.IsAvailable,
			IsBlocked:    held && hold.userID != userID,
			ReservedByMe: held && hold.userID == userID,
			Price:        seat.SeatType.PriceFrom(show.Price),
		})
	}

	rows := make([]string, 0, len(byRow))
	for row := range byRow {
		rows = append(rows, row)
	}
	sort.Strings(rows)

	resp := &response.SeatMapResponse{ShowID: show.ID.String(), BasePrice: show.Price}
	for _, row := range rows {
		seats := byRow[row]
		sort.Slice(seats, func(i, j int) bool { return seats[i].SeatNumber < seats[j].SeatNumber })
		resp.Rows = append(resp.Rows, response.SeatRowResponse{Row: row, Seats: seats})
	}
	return resp, nil
}

func (c *FallbackClient) ReserveSeats(_ context.Context, showID string, seatIDs []string) (*response.ReserveSeatsResponse, error) {
	userID, _, err := c.currentUser()
	if err != nil {
		return nil, err
	}
	if len(seatIDs) > c.config.MaxSeats {
		return nil, ErrSelectionLimitExceeded
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	show, err := c.findShow(showID)
	if err != nil {
		return nil, err
	}
	now := c.now()
	seats, err := c.availableSeats(show, seatIDs, userID, now)
	if err != nil {
		return nil, err
	}

	expires := now.Add(c.config.HoldDuration())
	for _, seat := range seats {
		c.holds[seat.ID] = demoHold{userID: userID, expiresAt: expires}
	}
	return &response.ReserveSeatsResponse{ShowID: show.ID.String(), SeatIDs: seatIDs, ExpiresAt: expires}, nil
}

func (c *FallbackClient) Checkout(_ context.Context, req *request.CheckoutRequest) (*response.BookingResponse, error) {
	userID, _, err := c.currentUser()
	if err != nil {
		return nil, err
	}
	if len(req.SeatIDs) > c.config.MaxSeats {
		return nil, ErrSelectionLimitExceeded
	}
	if errs := req.Validate(); errs != nil {
		return nil, &ValidationError{Message: "Validation failed", Fields: errs}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := userID.String() + ":" + req.IdempotencyKey
	if existing, ok := c.byKey[key]; ok {
		return c.toResponse(existing), nil
	}

	show, err := c.findShow(req.ShowID)
	if err != nil {
		return nil, err
	}
	now := c.now()
	if !show.StartsAt.After(now) {
		return nil, &StateError{Status: http.StatusConflict, Message: usecase.ErrBookingContextMissing.Error()}
	}
	seats, err := c.availableSeats(show, req.SeatIDs, userID, now)
	if err != nil {
		return nil, err
	}

	_, total := usecase.PriceSeats(show.Price, seats)
	if req.Payment.Method == entity.PaymentMethodWallet {
		if err := c.debit(userID, total, now); err != nil {
			return nil, err
		}
	}
	booking := &entity.Booking{
		BaseNoDelete:   entity.NewBaseNoDelete(now),
		Reference:      utils.GenerateBookingReference(now),
		UserID:         userID,
		ShowID:         show.ID,
		MovieTitle:     show.MovieTitle,
		VenueName:      show.VenueName,
		ScreenID:       show.ScreenID,
		ShowStartsAt:   show.StartsAt,
		TotalAmount:    total,
		PaymentMethod:  req.Payment.Method,
		TransactionID:  utils.GenerateTransactionID(now),
		Status:         entity.BookingStatusConfirmed,
		IdempotencyKey: req.IdempotencyKey,
		BookingDate:    now,
	}
	for _, seat := range seats {
		booking.Seats = append(booking.Seats, entity.BookingSeat{
			BaseSimple: entity.NewBaseSimple(now),
			BookingID:  booking.ID,
			SeatID:     seat.ID,
			SeatRow:    seat.SeatRow,
			SeatNumber: seat.SeatNumber,
			SeatType:   seat.SeatType,
			Price:      seat.SeatType.PriceFrom(show.Price),
		})
		seat.IsAvailable = false
		delete(c.holds, seat.ID)
	}
	show.AvailableSeats -= len(seats)

	c.bookings = append(c.bookings, booking)
	c.byKey[key] = booking
	c.notify(booking, entity.NotificationBookingConfirmed, "Booking confirmed",
		fmt.Sprintf("Your booking %s for %s is confirmed.", booking.Reference, booking.MovieTitle))

	c.log.Debug("Demo booking created", zap.String("reference", booking.Reference))
	return c.toResponse(booking), nil
}

func (c *FallbackClient) MyBookings(context.Context) ([]response.BookingResponse, error) {
	userID, _, err := c.currentUser()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := []response.BookingResponse{}
	for i := len(c.bookings) - 1; i >= 0; i-- {
		if c.bookings[i].UserID == userID {
			out = append(out, *c.toResponse(c.bookings[i]))
		}
	}
	return out, nil
}

func (c *FallbackClient) AllBookings(context.Context) ([]response.BookingResponse, error) {
	_, session, err := c.currentUser()
	if err != nil {
		return nil, err
	}
	if !session.IsAdmin() {
		return nil, &NetworkError{Op: "all bookings", Status: http.StatusForbidden, Message: "Admin access required"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]response.BookingResponse, 0, len(c.bookings))
	for i := len(c.bookings) - 1; i >= 0; i-- {
		out = append(out, *c.toResponse(c.bookings[i]))
	}
	return out, nil
}

func (c *FallbackClient) CancelBooking(_ context.Context, bookingID, reason string) (*response.BookingResponse, error) {
	userID, _, err := c.currentUser()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// pembatalan hanya oleh pemilik booking, admin juga tidak
	idx := -1
	for i, b := range c.bookings {
		if b.ID.String() == bookingID && b.UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, &StateError{Status: http.StatusNotFound, Message: usecase.ErrNotFound.Error()}
	}

	next, err := c.policy.Transition(c.bookings[idx], entity.BookingStatusCancelled, strings.TrimSpace(reason), c.now())
	if err != nil {
		if errors.Is(err, usecase.ErrCancellationClosed) {
			return nil, &StateError{Status: http.StatusConflict, Message: usecase.ErrCancellationClosed.Error()}
		}
		return nil, &StateError{Status: http.StatusConflict, Message: usecase.ErrInvalidTransition.Error()}
	}

	// kursi dilepas lagi, sama seperti server
	for _, bs := range next.Seats {
		if seat, ok := c.seats[bs.SeatID]; ok && !seat.IsAvailable {
			seat.IsAvailable = true
			if show, ok := c.shows[next.ShowID]; ok {
				show.AvailableSeats++
			}
		}
	}
	if next.PaymentMethod == entity.PaymentMethodWallet && next.RefundAmount.Valid {
		c.credit(userID, next.RefundAmount.Decimal, c.now())
	}
	c.bookings[idx] = next
	c.byKey[next.UserID.String()+":"+next.IdempotencyKey] = next
	c.notify(next, entity.NotificationBookingCancelled, "Booking cancelled",
		fmt.Sprintf("Your booking %s was cancelled. Refund of %s will be credited.", next.Reference, next.RefundAmount.Decimal.StringFixed(2)))

	return c.toResponse(next), nil
}

func (c *FallbackClient) Notifications(context.Context) (*response.NotificationListResponse, error) {
	userID, _, err := c.currentUser()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	list := &response.NotificationListResponse{Notifications: []response.NotificationResponse{}}
	for i := len(c.notifications) - 1; i >= 0; i-- {
		n := c.notifications[i]
		if n.UserID != userID {
			continue
		}
		if !n.IsRead {
			list.Unread++
		}
		list.Notifications = append(list.Notifications, response.NotificationToResponse(n))
	}
	return list, nil
}

// ---- helpers, dipanggil dengan c.mu terkunci ----

func (c *FallbackClient) Wallet(context.Context) (*response.WalletResponse, error) {
	userID, _, err := c.currentUser()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	resp := response.WalletToResponse(c.wallet(userID))
	return &resp, nil
}

// TopUpWallet kartu uji yang ditolak server juga ditolak di sini
func (c *FallbackClient) TopUpWallet(_ context.Context, req *request.TopUpWalletRequest) (*response.WalletResponse, error) {
	userID, _, err := c.currentUser()
	if err != nil {
		return nil, err
	}
	if errs := req.Validate(); errs != nil {
		return nil, &ValidationError{Message: "Validation failed", Fields: errs}
	}
	if utils.NormalizeCardNumber(req.Payment.CardNumber) == declinedTestCard {
		return nil, fmt.Errorf("top up wallet: %w", ErrPaymentDeclined)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	resp := response.WalletToResponse(c.credit(userID, req.Amount.Round(2), now))
	resp.TransactionID = utils.GenerateTransactionID(now)
	return &resp, nil
}

// wallet, credit dan debit dipanggil dengan c.mu terkunci
func (c *FallbackClient) wallet(userID uuid.UUID) *entity.Wallet {
	w, ok := c.wallets[userID]
	if !ok {
		w = &entity.Wallet{UserID: userID, Balance: decimal.Zero}
		c.wallets[userID] = w
	}
	return w
}

func (c *FallbackClient) credit(userID uuid.UUID, amount decimal.Decimal, now time.Time) *entity.Wallet {
	w := c.wallet(userID)
	w.Balance = w.Balance.Add(amount)
	w.UpdatedAt = now
	return w
}

func (c *FallbackClient) debit(userID uuid.UUID, amount decimal.Decimal, now time.Time) error {
	w := c.wallet(userID)
	if w.Balance.LessThan(amount) {
		return fmt.Errorf("checkout: wallet balance %s: %w", w.Balance.StringFixed(2), ErrPaymentDeclined)
	}
	w.Balance = w.Balance.Sub(amount)
	w.UpdatedAt = now
	return nil
}

func (c *FallbackClient) findShow(showID string) (*entity.ShowDetail, error) {
	id, err := uuid.Parse(showID)
	if err != nil {
		return nil, &ValidationError{Message: "Validation failed", Fields: map[string]string{"show_id": "Must be a valid UUID"}}
	}
	show, ok := c.shows[id]
	if !ok {
		return nil, &StateError{Status: http.StatusNotFound, Message: usecase.ErrBookingContextMissing.Error()}
	}
	return show, nil
}

func (c *FallbackClient) activeHold(seatID uuid.UUID, now time.Time) (demoHold, bool) {
	hold, ok := c.holds[seatID]
	if !ok {
		return demoHold{}, false
	}
	if !now.Before(hold.expiresAt) {
		delete(c.holds, seatID)
		return demoHold{}, false
	}
	return hold, true
}

// availableSeats semua kursi harus milik show, belum terjual dan tidak di-hold orang lain
func (c *FallbackClient) availableSeats(show *entity.ShowDetail, seatIDs []string, userID uuid.UUID, now time.Time) ([]*entity.Seat, error) {
	ids, err := utils.ParseUUIDs(seatIDs)
	if err != nil {
		return nil, &ValidationError{Message: "Validation failed", Fields: map[string]string{"seat_ids": err.Error()}}
	}

	seats := make([]*entity.Seat, 0, len(ids))
	for _, id := range ids {
		seat, ok := c.seats[id]
		if !ok || seat.ShowID != show.ID {
			return nil, &StateError{Status: http.StatusConflict, Message: usecase.ErrBookingContextMissing.Error()}
		}
		if !seat.IsAvailable {
			return nil, &StateError{Status: http.StatusConflict, Message: usecase.ErrSeatUnavailable.Error()}
		}
		if hold, held := c.activeHold(id, now); held && hold.userID != userID {
			return nil, &StateError{Status: http.StatusConflict, Message: usecase.ErrSeatUnavailable.Error()}
		}
		seats = append(seats, seat)
	}
	return seats, nil
}

func (c *FallbackClient) notify(b *entity.Booking, kind entity.NotificationType, title, message string) {
	bookingID := b.ID
	c.notifications = append(c.notifications, &entity.Notification{
		BaseSimple: entity.NewBaseSimple(c.now()),
		UserID:     b.UserID,
		BookingID:  &bookingID,
		Type:       kind,
		Title:      title,
		Message:    message,
	})
}

func (c *FallbackClient) toResponse(b *entity.Booking) *response.BookingResponse {
	resp := response.BookingToResponse(b, c.policy.State(b, c.now()), c.loc)
	return &resp
}
