package entity

import "github.com/google/uuid"

type NotificationType string

const (
	NotificationBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	NotificationBookingCancelled NotificationType = "BOOKING_CANCELLED"
)

type Notification struct {
	BaseSimple
	UserID    uuid.UUID        `db:"user_id"`
	BookingID *uuid.UUID       `db:"booking_id"`
	Type      NotificationType `db:"type"`
	Title     string           `db:"title"`
	Message   string           `db:"message"`
	IsRead    bool             `db:"is_read"`
}
