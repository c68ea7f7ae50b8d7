package adaptor

import (
	"net/http"

	"movie-booking/internal/dto/request"
	"movie-booking/internal/usecase"
	"movie-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type UserHandler struct {
	service  usecase.UserService
	wishlist usecase.WishlistService
	log      *zap.Logger
}

func NewUserHandler(service usecase.UserService, wishlist usecase.WishlistService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service:  service,
		wishlist: wishlist,
		log:      log.With(zap.String("handler", "user")),
	}
}

// GetProfile handles GET /api/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "success", profile)
}

// UpdateProfile handles PUT /api/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update profile")
		return
	}

	utils.ResponseSuccess(w, "Profile updated", profile)
}

// GetPayments handles GET /api/me/payments
func (h *UserHandler) GetPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	payments, err := h.service.GetPayments(r.Context(), userID, paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get payments")
		return
	}

	utils.ResponseSuccess(w, "success", payments)
}

// GetWallet handles GET /api/me/wallet
func (h *UserHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	wallet, err := h.service.GetWallet(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get wallet")
		return
	}

	utils.ResponseSuccess(w, "success", wallet)
}

// TopUpWallet handles POST /api/me/wallet/top-up
func (h *UserHandler) TopUpWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.TopUpWalletRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wallet, err := h.service.TopUpWallet(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "top up wallet")
		return
	}

	utils.ResponseSuccess(w, "Wallet topped up", wallet)
}

// ==================== WISHLIST ====================

// GetWishlist handles GET /api/wishlist
func (h *UserHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	items, err := h.wishlist.GetWishlist(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get wishlist")
		return
	}

	utils.ResponseSuccess(w, "success", items)
}

// AddToWishlist handles POST /api/wishlist
func (h *UserHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.AddWishlistRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.wishlist.AddToWishlist(r.Context(), userID, &req); err != nil {
		handleServiceError(w, h.log, err, "add to wishlist")
		return
	}

	utils.ResponseCreated(w, "Added to wishlist", nil)
}

// RemoveFromWishlist handles DELETE /api/wishlist/{movie_id}
func (h *UserHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.wishlist.RemoveFromWishlist(r.Context(), userID, chi.URLParam(r, "movie_id")); err != nil {
		handleServiceError(w, h.log, err, "remove from wishlist")
		return
	}

	utils.ResponseSuccess(w, "Removed from wishlist", nil)
}
