package response

import (
	"time"

	"movie-booking/internal/data/entity"

	"github.com/shopspring/decimal"
)

type PaymentResponse struct {
	ID            string               `json:"id"`
	BookingID     *string              `json:"booking_id,omitempty"`
	Method        entity.PaymentMethod `json:"method"`
	Amount        decimal.Decimal      `json:"amount"`
	Status        entity.PaymentStatus `json:"status"`
	TransactionID string               `json:"transaction_id"`
	FailureReason *string              `json:"failure_reason,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

type WalletResponse struct {
	Balance       decimal.Decimal `json:"balance"`
	TransactionID string          `json:"transaction_id,omitempty"` // hanya di response top-up
	UpdatedAt     *time.Time      `json:"updated_at,omitempty"`
}

type NotificationResponse struct {
	ID        string                  `json:"id"`
	BookingID *string                 `json:"booking_id,omitempty"`
	Type      entity.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	IsRead    bool                    `json:"is_read"`
	CreatedAt time.Time               `json:"created_at"`
}

type NotificationListResponse struct {
	Unread        int64                  `json:"unread"`
	Notifications []NotificationResponse `json:"notifications"`
}

type WishlistItemResponse struct {
	ID      string        `json:"id"`
	Movie   MovieResponse `json:"movie"`
	AddedAt time.Time     `json:"added_at"`
}

func PaymentToResponse(p *entity.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:            p.ID.String(),
		Method:        p.Method,
		Amount:        p.Amount,
		Status:        p.Status,
		TransactionID: p.TransactionID,
		FailureReason: p.FailureReason,
		CreatedAt:     p.CreatedAt,
	}
	if p.BookingID != nil {
		id := p.BookingID.String()
		resp.BookingID = &id
	}
	return resp
}

func WalletToResponse(w *entity.Wallet) WalletResponse {
	resp := WalletResponse{Balance: w.Balance}
	if !w.UpdatedAt.IsZero() {
		updated := w.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

func NotificationToResponse(n *entity.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID.String(),
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
	if n.BookingID != nil {
		id := n.BookingID.String()
		resp.BookingID = &id
	}
	return resp
}

func WishlistItemToResponse(item *entity.WishlistItem) WishlistItemResponse {
	resp := WishlistItemResponse{ID: item.ID.String(), AddedAt: item.CreatedAt}
	if item.Movie != nil {
		resp.Movie = MovieToResponse(item.Movie, nil)
	}
	return resp
}
