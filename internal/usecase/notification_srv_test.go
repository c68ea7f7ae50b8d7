package usecase

import (
	"context"
	"testing"
	"time"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/dto/request"
	"movie-booking/internal/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotificationService_HandleBookingsChanged(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	srv := NewNotificationService(f.db.repository(), time.UTC, zap.NewNop())

	created, err := f.checkout.Checkout(ctx, f.userID.String(), f.request("notify-00001", f.seats[0]))
	require.NoError(t, err)
	bookingID := uuid.MustParse(created.ID)

	ev := event.BookingsChanged{BookingID: bookingID, UserID: f.userID, Kind: event.KindCreated}
	require.NoError(t, srv.HandleBookingsChanged(ctx, ev))
	// redelivery tidak menggandakan
	require.NoError(t, srv.HandleBookingsChanged(ctx, ev))

	list, err := srv.GetNotifications(ctx, f.userID.String(), &request.PaginatedRequest{})
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, int64(1), list.Unread)
	assert.Equal(t, entity.NotificationBookingConfirmed, list.Notifications[0].Type)
	assert.Contains(t, list.Notifications[0].Message, created.Reference)

	_, err = f.bookings.CancelBooking(ctx, f.userID.String(), created.ID, &request.CancelBookingRequest{})
	require.NoError(t, err)
	require.NoError(t, srv.HandleBookingsChanged(ctx, event.BookingsChanged{BookingID: bookingID, UserID: f.userID, Kind: event.KindCancelled}))

	list, err = srv.GetNotifications(ctx, f.userID.String(), &request.PaginatedRequest{})
	require.NoError(t, err)
	require.Len(t, list.Notifications, 2)
	assert.Contains(t, list.Notifications[1].Message, "Refund of 225.00")

	n, err := srv.MarkAllRead(ctx, f.userID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	err = srv.MarkRead(ctx, uuid.NewString(), list.Notifications[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotificationService_IgnoresUnknownBooking(t *testing.T) {
	db := newMemDB()
	srv := NewNotificationService(db.repository(), time.UTC, zap.NewNop())

	err := srv.HandleBookingsChanged(context.Background(), event.BookingsChanged{BookingID: uuid.New(), Kind: event.KindCreated})
	require.NoError(t, err)
	assert.Empty(t, db.notifications)
}
