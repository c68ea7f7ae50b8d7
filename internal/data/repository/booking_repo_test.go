package repository

import (
	"context"
	"testing"
	"time"

	"movie-booking/internal/data/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func newTestBooking() *entity.Booking {
	now := time.Now()
	id := uuid.New()
	return &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{ID: id, CreatedAt: now, UpdatedAt: now},
		Reference:    "MB1700000000000001",
		UserID:       uuid.New(),
		ShowID:       uuid.New(),
		MovieTitle:   "Interstellar",
		VenueName:    "PVR Phoenix",
		ScreenID:     "SCREEN-1",
		ShowStartsAt: now.Add(48 * time.Hour),
		Seats: []entity.BookingSeat{
			{BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now}, BookingID: id, SeatID: uuid.New(), SeatRow: "A", SeatNumber: 1, SeatType: entity.SeatTypeStandard, Price: decimal.NewFromInt(250)},
			{BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now}, BookingID: id, SeatID: uuid.New(), SeatRow: "A", SeatNumber: 2, SeatType: entity.SeatTypePremium, Price: decimal.NewFromInt(350)},
		},
		TotalAmount:    decimal.NewFromInt(600),
		PaymentMethod:  entity.PaymentMethodCreditCard,
		TransactionID:  "TXN_1",
		Status:         entity.BookingStatusConfirmed,
		IdempotencyKey: "checkout-1",
		BookingDate:    now,
	}
}

func setupBookingRepo(t *testing.T) (BookingRepository, pgxmock.PgxPoolIface) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewBookingRepository(mock, zap.NewNop()), mock
}

func TestBookingRepository_Create(t *testing.T) {
	repo, mock := setupBookingRepo(t)
	booking := newTestBooking()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WithArgs(anyArgs(19)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO booking_seats").WithArgs(anyArgs(8)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO booking_seats").WithArgs(anyArgs(8)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE seats SET is_available = FALSE").WithArgs(anyArgs(3)...).WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectExec("UPDATE shows SET available_seats = available_seats -").
		WithArgs(booking.ShowID, 2, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), booking)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Create_SeatTakenRollsBack(t *testing.T) {
	repo, mock := setupBookingRepo(t)
	booking := newTestBooking()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WithArgs(anyArgs(19)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO booking_seats").WithArgs(anyArgs(8)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO booking_seats").WithArgs(anyArgs(8)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE seats SET is_available = FALSE").WithArgs(anyArgs(3)...).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), booking)

	assert.ErrorIs(t, err, ErrSeatsTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Create_DuplicateIdempotencyKey(t *testing.T) {
	repo, mock := setupBookingRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WithArgs(anyArgs(19)...).WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), newTestBooking())

	assert.ErrorIs(t, err, ErrDuplicateBooking)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_UpdateStatus_CancelReleasesSeats(t *testing.T) {
	repo, mock := setupBookingRepo(t)
	booking := newTestBooking()
	now := time.Now()
	reason := "plans changed"
	booking.Status = entity.BookingStatusCancelled
	booking.CancelledAt = &now
	booking.CancellationReason = &reason
	booking.RefundAmount = decimal.NewNullDecimal(decimal.NewFromInt(540))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings").
		WithArgs(booking.ID, entity.BookingStatusCancelled, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), entity.BookingStatusConfirmed).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE seats SET is_available = TRUE").WithArgs(anyArgs(2)...).WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectExec("UPDATE shows SET available_seats = available_seats \\+").
		WithArgs(booking.ShowID, 2, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := repo.UpdateStatus(context.Background(), booking, entity.BookingStatusConfirmed)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_UpdateStatus_Stale(t *testing.T) {
	repo, mock := setupBookingRepo(t)
	booking := newTestBooking()
	booking.Status = entity.BookingStatusCancelled

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings").WithArgs(anyArgs(7)...).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.UpdateStatus(context.Background(), booking, entity.BookingStatusConfirmed)

	assert.ErrorIs(t, err, ErrStaleStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_FindByID_NotFound(t *testing.T) {
	repo, mock := setupBookingRepo(t)
	id := uuid.New()

	mock.ExpectQuery("FROM bookings WHERE id =").WithArgs(id).WillReturnError(pgx.ErrNoRows)

	booking, err := repo.FindByID(context.Background(), id)

	require.NoError(t, err)
	assert.Nil(t, booking)
	assert.NoError(t, mock.ExpectationsWereMet())
}
