package adaptor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"movie-booking/internal/dto/request"
	"movie-booking/internal/event"
	"movie-booking/internal/usecase"
	"movie-booking/pkg/utils"

	"go.uber.org/zap"
)

// EventStream sumber event untuk live feed booking
type EventStream interface {
	Subscribe(ctx context.Context) (<-chan event.BookingsChanged, error)
}

type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Catalog      *CatalogHandler
	Seat         *SeatHandler
	Booking      *BookingHandler
	Review       *ReviewHandler
	Notification *NotificationHandler
}

func NewHandler(service *usecase.Service, events EventStream, log *zap.Logger) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(service.Auth, log),
		User:         NewUserHandler(service.User, service.Wishlist, log),
		Catalog:      NewCatalogHandler(service.Catalog, log),
		Seat:         NewSeatHandler(service.Seat, log),
		Booking:      NewBookingHandler(service.Booking, service.Checkout, events, log),
		Review:       NewReviewHandler(service.Review, log),
		Notification: NewNotificationHandler(service.Notification, log),
	}
}

// handleServiceError satu tempat untuk mapping error usecase ke status HTTP
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var validationErr *usecase.ValidationError
	var loadErr *usecase.LoadError

	switch {
	case errors.As(err, &validationErr):
		log.Warn(operation+" validation failed", zap.Any("errors", validationErr.Fields))
		utils.ResponseBadRequest(w, "Validation failed", validationErr.Fields)

	case errors.Is(err, usecase.ErrSelectionLimitExceeded):
		log.Warn(operation+" failed - selection limit", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrUnauthorized):
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, usecase.ErrUnauthorized.Error())

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, usecase.ErrNotFound.Error())

	case errors.Is(err, usecase.ErrPaymentDeclined):
		log.Warn(operation+" failed - payment declined", zap.Error(err))
		utils.ResponsePaymentRequired(w, err.Error())

	case errors.Is(err, usecase.ErrConflict),
		errors.Is(err, usecase.ErrInvalidTransition),
		errors.Is(err, usecase.ErrCancellationClosed),
		errors.Is(err, usecase.ErrBookingContextMissing),
		errors.Is(err, usecase.ErrSeatUnavailable),
		errors.Is(err, usecase.ErrBookingCancelled):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.As(err, &loadErr):
		log.Error(operation+" failed - load error", zap.Error(err))
		utils.ResponseServiceUnavailable(w, "Could not load "+loadErr.Resource+", please retry")

	case errors.Is(err, context.DeadlineExceeded):
		log.Error(operation+" timed out", zap.Error(err))
		utils.ResponseServiceUnavailable(w, "Request timed out, please retry")

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

func paginationFromQuery(r *http.Request) *request.PaginatedRequest {
	query := r.URL.Query()
	return &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}
}

// currentUser user id dari context, sudah diset AuthSession
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return "", false
	}
	return userID.String(), true
}
