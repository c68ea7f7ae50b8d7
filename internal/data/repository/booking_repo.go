package repository

import (
	"context"
	"errors"
	"fmt"

	"movie-booking/internal/data/entity"
	"movie-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ErrDuplicateBooking idempotency key yang sama sudah dipakai user ini
var ErrDuplicateBooking = errors.New("booking already exists for this checkout")

type BookingRepository interface {
	// Create menyimpan booking + snapshot kursi dan menandai kursi terjual dalam satu transaksi
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*entity.Booking, error)
	FindAll(ctx context.Context, filter entity.BookingFilter) ([]*entity.Booking, error)
	Count(ctx context.Context, filter entity.BookingFilter) (int64, error)
	// UpdateStatus hanya menulis status dan field pembatalan, gagal kalau status di DB bukan from
	UpdateStatus(ctx context.Context, booking *entity.Booking, from entity.BookingStatus) error
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, reference, user_id, show_id, movie_title, venue_name, screen_id,
	show_starts_at, total_amount, payment_method, transaction_id, status, idempotency_key,
	booking_date, cancelled_at, cancellation_reason, refund_amount, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID,
		&b.Reference,
		&b.UserID,
		&b.ShowID,
		&b.MovieTitle,
		&b.VenueName,
		&b.ScreenID,
		&b.ShowStartsAt,
		&b.TotalAmount,
		&b.PaymentMethod,
		&b.TransactionID,
		&b.Status,
		&b.IdempotencyKey,
		&b.BookingDate,
		&b.CancelledAt,
		&b.CancellationReason,
		&b.RefundAmount,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create booking: %w", err)
	}
	defer tx.Rollback(ctx)

	// Insert booking dulu supaya duplikat idempotency key terdeteksi sebelum kursi disentuh
	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`,
		booking.ID,
		booking.Reference,
		booking.UserID,
		booking.ShowID,
		booking.MovieTitle,
		booking.VenueName,
		booking.ScreenID,
		booking.ShowStartsAt,
		booking.TotalAmount,
		booking.PaymentMethod,
		booking.TransactionID,
		booking.Status,
		booking.IdempotencyKey,
		booking.BookingDate,
		booking.CancelledAt,
		booking.CancellationReason,
		booking.RefundAmount,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateBooking
		}
		r.log.Error("Failed to insert booking",
			zap.Error(err),
			zap.String("reference", booking.Reference),
			zap.String("user_id", booking.UserID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.Reference, err)
	}

	for _, seat := range booking.Seats {
		_, err = tx.Exec(ctx, `
			INSERT INTO booking_seats (id, booking_id, seat_id, seat_row, seat_number, seat_type, price, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, seat.ID, booking.ID, seat.SeatID, seat.SeatRow, seat.SeatNumber, seat.SeatType, seat.Price, seat.CreatedAt)
		if err != nil {
			return fmt.Errorf("create booking seat %s: %w", seat.Label(), err)
		}
	}

	result, err := tx.Exec(ctx, `
		UPDATE seats SET is_available = FALSE, updated_at = $3
		WHERE show_id = $1 AND id = ANY($2) AND is_available
	`, booking.ShowID, booking.SeatIDs(), booking.CreatedAt)
	if err != nil {
		return fmt.Errorf("mark seats booked: %w", err)
	}
	if result.RowsAffected() != int64(len(booking.Seats)) {
		return ErrSeatsTaken
	}

	_, err = tx.Exec(ctx, `
		UPDATE shows SET available_seats = available_seats - $2, updated_at = $3 WHERE id = $1
	`, booking.ShowID, len(booking.Seats), booking.CreatedAt)
	if err != nil {
		return fmt.Errorf("update show availability: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create booking: %w", err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.findOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

func (r *bookingRepository) FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*entity.Booking, error) {
	return r.findOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 AND idempotency_key = $2`, userID, key)
}

func (r *bookingRepository) findOne(ctx context.Context, query string, args ...any) (*entity.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking", zap.Error(err))
		return nil, fmt.Errorf("find booking: %w", err)
	}

	seats, err := r.loadSeats(ctx, []uuid.UUID{booking.ID})
	if err != nil {
		return nil, err
	}
	booking.Seats = seats[booking.ID]

	return booking, nil
}

// FindAll filter user dibaca tiap kali query, bukan di-cache
func (r *bookingRepository) FindAll(ctx context.Context, filter entity.BookingFilter) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE ($1::uuid IS NULL OR user_id = $1)
		ORDER BY booking_date DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, filter.UserID, filter.Limit, filter.Offset)
	if err != nil {
		r.log.Error("Failed to list bookings", zap.Error(err))
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	var ids []uuid.UUID
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	if len(ids) == 0 {
		return bookings, nil
	}

	seats, err := r.loadSeats(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		b.Seats = seats[b.ID]
	}

	return bookings, nil
}

func (r *bookingRepository) Count(ctx context.Context, filter entity.BookingFilter) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE ($1::uuid IS NULL OR user_id = $1)`, filter.UserID).Scan(&total)
	if err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return 0, fmt.Errorf("count bookings: %w", err)
	}

	return total, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, booking *entity.Booking, from entity.BookingStatus) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update booking status: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE bookings
		SET status = $2, cancelled_at = $3, cancellation_reason = $4, refund_amount = $5, updated_at = $6
		WHERE id = $1 AND status = $7
	`,
		booking.ID,
		booking.Status,
		booking.CancelledAt,
		booking.CancellationReason,
		booking.RefundAmount,
		booking.UpdatedAt,
		from,
	)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("status", string(booking.Status)),
		)
		return fmt.Errorf("update booking %s status: %w", booking.ID, err)
	}
	if result.RowsAffected() == 0 {
		return ErrStaleStatus
	}

	// Kursi booking yang dibatalkan bisa dijual lagi
	if booking.Status == entity.BookingStatusCancelled && len(booking.Seats) > 0 {
		if _, err := tx.Exec(ctx, `
			UPDATE seats SET is_available = TRUE, updated_at = $2 WHERE id = ANY($1)
		`, booking.SeatIDs(), booking.UpdatedAt); err != nil {
			return fmt.Errorf("release seats of booking %s: %w", booking.ID, err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE shows SET available_seats = available_seats + $2, updated_at = $3 WHERE id = $1
		`, booking.ShowID, len(booking.Seats), booking.UpdatedAt); err != nil {
			return fmt.Errorf("restore show availability: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update booking status: %w", err)
	}

	return nil
}

func (r *bookingRepository) loadSeats(ctx context.Context, bookingIDs []uuid.UUID) (map[uuid.UUID][]entity.BookingSeat, error) {
	query := `
		SELECT id, booking_id, seat_id, seat_row, seat_number, seat_type, price, created_at
		FROM booking_seats
		WHERE booking_id = ANY($1)
		ORDER BY seat_row, seat_number
	`

	rows, err := r.db.Query(ctx, query, bookingIDs)
	if err != nil {
		r.log.Error("Failed to load booking seats", zap.Error(err))
		return nil, fmt.Errorf("load booking seats: %w", err)
	}
	defer rows.Close()

	seats := make(map[uuid.UUID][]entity.BookingSeat, len(bookingIDs))
	for rows.Next() {
		var s entity.BookingSeat
		if err := rows.Scan(&s.ID, &s.BookingID, &s.SeatID, &s.SeatRow, &s.SeatNumber, &s.SeatType, &s.Price, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking seat: %w", err)
		}
		seats[s.BookingID] = append(seats[s.BookingID], s)
	}

	return seats, rows.Err()
}
