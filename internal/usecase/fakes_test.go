package usecase

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/data/repository"
	"movie-booking/internal/event"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memDB state bersama untuk semua fake repository
type memDB struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*entity.User
	movies        map[uuid.UUID]*entity.Movie
	shows         map[uuid.UUID]*entity.ShowDetail
	seats         map[uuid.UUID]*entity.Seat
	bookings      map[uuid.UUID]*entity.Booking
	payments      []*entity.Payment
	notifications []*entity.Notification
	reviews       map[uuid.UUID]*entity.Review
	wishlist      []*entity.WishlistItem
	wallets       map[uuid.UUID]*entity.Wallet
	cities        []*entity.City
	venues        []*entity.Venue
}

func newMemDB() *memDB {
	return &memDB{
		users:    make(map[uuid.UUID]*entity.User),
		movies:   make(map[uuid.UUID]*entity.Movie),
		shows:    make(map[uuid.UUID]*entity.ShowDetail),
		seats:    make(map[uuid.UUID]*entity.Seat),
		bookings: make(map[uuid.UUID]*entity.Booking),
		reviews:  make(map[uuid.UUID]*entity.Review),
		wallets:  make(map[uuid.UUID]*entity.Wallet),
	}
}

func (db *memDB) repository() *repository.Repository {
	return &repository.Repository{
		User:         &fakeUserRepo{db},
		Movie:        &fakeMovieRepo{db},
		Venue:        &fakeVenueRepo{db},
		Show:         &fakeShowRepo{db},
		Seat:         &fakeSeatRepo{db},
		Booking:      &fakeBookingRepo{db: db},
		Payment:      &fakePaymentRepo{db},
		Wallet:       &fakeWalletRepo{db},
		Review:       &fakeReviewRepo{db},
		Wishlist:     &fakeWishlistRepo{db},
		Notification: &fakeNotificationRepo{db},
	}
}

// addShow show dengan harga dasar base dan kursi "A1", "A2", ... sesuai tipe
func (db *memDB) addShow(base int64, startsAt time.Time, types ...entity.SeatType) (*entity.ShowDetail, []*entity.Seat) {
	db.mu.Lock()
	defer db.mu.Unlock()

	movie := &entity.Movie{Base: entity.Base{ID: uuid.New()}, Title: "Interstellar"}
	db.movies[movie.ID] = movie

	show := &entity.ShowDetail{
		Show: entity.Show{
			BaseNoDelete:   entity.BaseNoDelete{ID: uuid.New()},
			MovieID:        movie.ID,
			VenueID:        uuid.New(),
			ScreenID:       "SCREEN-1",
			StartsAt:       startsAt,
			Price:          decimal.NewFromInt(base),
			TotalSeats:     len(types),
			AvailableSeats: len(types),
			IsActive:       true,
		},
		MovieTitle: movie.Title,
		VenueName:  "PVR Phoenix",
	}
	db.shows[show.ID] = show

	seats := make([]*entity.Seat, len(types))
	for i, t := range types {
		seat := &entity.Seat{
			BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
			ShowID:       show.ID,
			SeatRow:      "A",
			SeatNumber:   i + 1,
			SeatType:     t,
			IsAvailable:  true,
		}
		db.seats[seat.ID] = seat
		seats[i] = seat
	}
	return show, seats
}

func (db *memDB) bookingCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.bookings)
}

func (db *memDB) paymentsWithStatus(status entity.PaymentStatus) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, p := range db.payments {
		if p.Status == status {
			n++
		}
	}
	return n
}

func cloneBooking(b *entity.Booking) *entity.Booking {
	c := *b
	c.Seats = append([]entity.BookingSeat(nil), b.Seats...)
	return &c
}

type fakeUserRepo struct{ db *memDB }

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.users[id], nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	return r.Create(context.Background(), user)
}

type fakeMovieRepo struct{ db *memDB }

func (r *fakeMovieRepo) FindAll(_ context.Context, _ entity.MovieFilter) ([]*entity.Movie, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*entity.Movie, 0, len(r.db.movies))
	for _, m := range r.db.movies {
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeMovieRepo) Count(ctx context.Context, f entity.MovieFilter) (int64, error) {
	all, _ := r.FindAll(ctx, f)
	return int64(len(all)), nil
}

func (r *fakeMovieRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Movie, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.movies[id], nil
}

type fakeShowRepo struct{ db *memDB }

func (r *fakeShowRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.ShowDetail, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	show, ok := r.db.shows[id]
	if !ok {
		return nil, nil
	}
	c := *show
	return &c, nil
}

func (r *fakeShowRepo) FindByFilter(_ context.Context, f entity.ShowFilter) ([]*entity.ShowDetail, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.ShowDetail
	for _, s := range r.db.shows {
		if s.MovieID != f.MovieID || !s.IsActive {
			continue
		}
		if f.CityID != nil && s.CityID != *f.CityID {
			continue
		}
		if f.VenueID != nil && s.VenueID != *f.VenueID {
			continue
		}
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

type fakeSeatRepo struct{ db *memDB }

func (r *fakeSeatRepo) FindByShowID(_ context.Context, showID uuid.UUID) ([]*entity.Seat, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.Seat
	for _, s := range r.db.seats {
		if s.ShowID == showID {
			c := *s
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeSeatRepo) FindByIDs(_ context.Context, showID uuid.UUID, ids []uuid.UUID) ([]*entity.Seat, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.Seat
	for _, id := range ids {
		if s, ok := r.db.seats[id]; ok && s.ShowID == showID {
			c := *s
			out = append(out, &c)
		}
	}
	return out, nil
}

type fakeBookingRepo struct {
	db      *memDB
	creates atomic.Int32
}

func (r *fakeBookingRepo) Create(_ context.Context, b *entity.Booking) error {
	r.creates.Add(1)
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.bookings {
		if existing.UserID == b.UserID && existing.IdempotencyKey == b.IdempotencyKey {
			return repository.ErrDuplicateBooking
		}
	}
	for _, s := range b.Seats {
		if seat := r.db.seats[s.SeatID]; seat == nil || !seat.IsAvailable {
			return repository.ErrSeatsTaken
		}
	}
	for _, s := range b.Seats {
		r.db.seats[s.SeatID].IsAvailable = false
	}
	if show := r.db.shows[b.ShowID]; show != nil {
		show.AvailableSeats -= len(b.Seats)
	}
	r.db.bookings[b.ID] = cloneBooking(b)
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.bookings[id]
	if !ok {
		return nil, nil
	}
	return cloneBooking(b), nil
}

func (r *fakeBookingRepo) FindByIdempotencyKey(_ context.Context, userID uuid.UUID, key string) (*entity.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, b := range r.db.bookings {
		if b.UserID == userID && b.IdempotencyKey == key {
			return cloneBooking(b), nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) FindAll(_ context.Context, f entity.BookingFilter) ([]*entity.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.db.bookings {
		if f.UserID != nil && b.UserID != *f.UserID {
			continue
		}
		out = append(out, cloneBooking(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeBookingRepo) Count(ctx context.Context, f entity.BookingFilter) (int64, error) {
	all, _ := r.FindAll(ctx, f)
	return int64(len(all)), nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, b *entity.Booking, from entity.BookingStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.bookings[b.ID]
	if !ok || stored.Status != from {
		return repository.ErrStaleStatus
	}
	stored.Status = b.Status
	stored.CancelledAt = b.CancelledAt
	stored.CancellationReason = b.CancellationReason
	stored.RefundAmount = b.RefundAmount
	stored.UpdatedAt = b.UpdatedAt

	// sama seperti repository postgres: pembatalan melepas kursi
	if b.Status == entity.BookingStatusCancelled {
		for _, bs := range stored.Seats {
			if seat := r.db.seats[bs.SeatID]; seat != nil && !seat.IsAvailable {
				seat.IsAvailable = true
				if show := r.db.shows[stored.ShowID]; show != nil {
					show.AvailableSeats++
				}
			}
		}
	}
	return nil
}

type fakePaymentRepo struct{ db *memDB }

func (r *fakePaymentRepo) Create(_ context.Context, p *entity.Payment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.payments = append(r.db.payments, p)
	return nil
}

func (r *fakePaymentRepo) FindByUserID(_ context.Context, userID uuid.UUID, _, _ int) ([]*entity.Payment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.Payment
	for _, p := range r.db.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	all, _ := r.FindByUserID(ctx, userID, 0, 0)
	return int64(len(all)), nil
}

type fakeWalletRepo struct{ db *memDB }

func (r *fakeWalletRepo) Get(_ context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if w, ok := r.db.wallets[userID]; ok {
		c := *w
		return &c, nil
	}
	return &entity.Wallet{UserID: userID, Balance: decimal.Zero}, nil
}

func (r *fakeWalletRepo) Credit(_ context.Context, userID uuid.UUID, amount decimal.Decimal, at time.Time) (*entity.Wallet, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	w, ok := r.db.wallets[userID]
	if !ok {
		w = &entity.Wallet{UserID: userID, Balance: decimal.Zero}
		r.db.wallets[userID] = w
	}
	w.Balance = w.Balance.Add(amount)
	w.UpdatedAt = at
	c := *w
	return &c, nil
}

func (r *fakeWalletRepo) Debit(_ context.Context, userID uuid.UUID, amount decimal.Decimal, at time.Time) (*entity.Wallet, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	w, ok := r.db.wallets[userID]
	if !ok || w.Balance.LessThan(amount) {
		return nil, repository.ErrInsufficientBalance
	}
	w.Balance = w.Balance.Sub(amount)
	w.UpdatedAt = at
	c := *w
	return &c, nil
}

func (db *memDB) balance(userID uuid.UUID) string {
	db.mu.Lock()
	defer db.mu.Unlock()
	if w, ok := db.wallets[userID]; ok {
		return w.Balance.StringFixed(2)
	}
	return "0.00"
}

type fakeVenueRepo struct{ db *memDB }

func (r *fakeVenueRepo) FindAllCities(context.Context) ([]*entity.City, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return append([]*entity.City(nil), r.db.cities...), nil
}

func (r *fakeVenueRepo) FindVenues(_ context.Context, cityID *uuid.UUID) ([]*entity.Venue, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.Venue
	for _, v := range r.db.venues {
		if cityID == nil || v.CityID == *cityID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeVenueRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Venue, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, v := range r.db.venues {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, nil
}

type fakeWishlistRepo struct{ db *memDB }

func (r *fakeWishlistRepo) Add(_ context.Context, item *entity.WishlistItem) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, w := range r.db.wishlist {
		if w.UserID == item.UserID && w.MovieID == item.MovieID {
			return nil
		}
	}
	c := *item
	r.db.wishlist = append(r.db.wishlist, &c)
	return nil
}

func (r *fakeWishlistRepo) Remove(_ context.Context, userID, movieID uuid.UUID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, w := range r.db.wishlist {
		if w.UserID == userID && w.MovieID == movieID {
			r.db.wishlist = append(r.db.wishlist[:i], r.db.wishlist[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeWishlistRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]*entity.WishlistItem, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.WishlistItem
	for _, w := range r.db.wishlist {
		if w.UserID != userID {
			continue
		}
		c := *w
		c.Movie = r.db.movies[w.MovieID]
		out = append(out, &c)
	}
	return out, nil
}

type fakeReviewRepo struct{ db *memDB }

func (r *fakeReviewRepo) Create(_ context.Context, review *entity.Review) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.reviews[review.ID] = review
	return nil
}

func (r *fakeReviewRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Review, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if review, ok := r.db.reviews[id]; ok {
		c := *review
		return &c, nil
	}
	return nil, nil
}

func (r *fakeReviewRepo) FindByMovieID(_ context.Context, movieID uuid.UUID, _, _ int) ([]*entity.Review, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.Review
	for _, review := range r.db.reviews {
		if review.MovieID == movieID {
			out = append(out, review)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) FindByUserAndMovie(_ context.Context, userID, movieID uuid.UUID) (*entity.Review, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, review := range r.db.reviews {
		if review.UserID == userID && review.MovieID == movieID {
			return review, nil
		}
	}
	return nil, nil
}

func (r *fakeReviewRepo) Update(ctx context.Context, review *entity.Review) error {
	return r.Create(ctx, review)
}

func (r *fakeReviewRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.reviews, id)
	return nil
}

func (r *fakeReviewRepo) GetStats(ctx context.Context, movieID uuid.UUID) (*entity.ReviewStats, error) {
	reviews, _ := r.FindByMovieID(ctx, movieID, 0, 0)
	stats := &entity.ReviewStats{TotalReviews: int64(len(reviews))}
	for _, review := range reviews {
		stats.AverageRating += float64(review.Rating)
	}
	if len(reviews) > 0 {
		stats.AverageRating /= float64(len(reviews))
	}
	return stats, nil
}

type fakeNotificationRepo struct{ db *memDB }

func (r *fakeNotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.notifications = append(r.db.notifications, n)
	return nil
}

func (r *fakeNotificationRepo) ExistsForBooking(_ context.Context, bookingID uuid.UUID, kind entity.NotificationType) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, n := range r.db.notifications {
		if n.BookingID != nil && *n.BookingID == bookingID && n.Type == kind {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) FindByUserID(_ context.Context, userID uuid.UUID, _, _ int) ([]*entity.Notification, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.Notification
	for _, n := range r.db.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	all, _ := r.FindByUserID(ctx, userID, 0, 0)
	var n int64
	for _, item := range all {
		if !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, userID uuid.UUID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, n := range r.db.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var count int64
	for _, n := range r.db.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

// recordingPublisher menyimpan event yang dikirim booking store
type recordingPublisher struct {
	mu     sync.Mutex
	events []event.BookingsChanged
}

func (p *recordingPublisher) Publish(_ context.Context, ev event.BookingsChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) all() []event.BookingsChanged {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.BookingsChanged(nil), p.events...)
}

// stubGateway gateway yang bisa ditahan untuk menguji checkout bersamaan
type stubGateway struct {
	charges atomic.Int32
	refunds atomic.Int32
	decline bool
	started chan struct{}
	release chan struct{}
	// onCharge dipanggil setelah charge, misal untuk mensimulasikan kursi diambil transaksi lain
	onCharge func()
}

func (g *stubGateway) Charge(ctx context.Context, req ChargeRequest) (string, error) {
	g.charges.Add(1)
	if g.onCharge != nil {
		defer g.onCharge()
	}
	if g.started != nil {
		select {
		case g.started <- struct{}{}:
		default:
		}
	}
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if g.decline {
		return "", ErrPaymentDeclined
	}
	return "TXN-" + uuid.NewString()[:8], nil
}

func (g *stubGateway) Refund(context.Context, ChargeRequest, string) error {
	g.refunds.Add(1)
	return nil
}
