package usecase

import (
	"context"
	"fmt"
	"time"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/data/repository"
	"movie-booking/internal/dto/request"
	"movie-booking/internal/dto/response"
	"movie-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WishlistService interface {
	GetWishlist(ctx context.Context, userID string) ([]response.WishlistItemResponse, error)
	AddToWishlist(ctx context.Context, userID string, req *request.AddWishlistRequest) error
	RemoveFromWishlist(ctx context.Context, userID, movieID string) error
}

type wishlistService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewWishlistService(repo *repository.Repository, log *zap.Logger) WishlistService {
	return &wishlistService{
		repo: repo,
		log:  log.With(zap.String("service", "wishlist")),
	}
}

func (s *wishlistService) GetWishlist(ctx context.Context, userID string) ([]response.WishlistItemResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	items, err := s.repo.Wishlist.FindByUserID(ctx, id)
	if err != nil {
		return nil, &LoadError{Resource: "wishlist", Err: err}
	}

	out := make([]response.WishlistItemResponse, len(items))
	for i, item := range items {
		out[i] = response.WishlistItemToResponse(item)
	}
	return out, nil
}

// AddToWishlist idempotent, film yang sudah ada di wishlist tidak error
func (s *wishlistService) AddToWishlist(ctx context.Context, userID string, req *request.AddWishlistRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return newValidationError(errs)
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return ErrUnauthorized
	}
	movieID := uuid.MustParse(req.MovieID)

	movie, err := s.repo.Movie.FindByID(ctx, movieID)
	if err != nil {
		return fmt.Errorf("find movie: %w", err)
	}
	if movie == nil {
		return ErrNotFound
	}

	item := &entity.WishlistItem{
		BaseSimple: entity.NewBaseSimple(time.Now()),
		UserID:     userUUID,
		MovieID:    movieID,
	}
	if err := s.repo.Wishlist.Add(ctx, item); err != nil {
		return fmt.Errorf("add to wishlist: %w", err)
	}

	s.log.Info("Movie added to wishlist", zap.String("user_id", userID), zap.String("movie_id", req.MovieID))
	return nil
}

func (s *wishlistService) RemoveFromWishlist(ctx context.Context, userID, movieID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return ErrUnauthorized
	}
	movieUUID, err := uuid.Parse(movieID)
	if err != nil {
		return invalidField("movie_id", "Must be a valid UUID")
	}

	removed, err := s.repo.Wishlist.Remove(ctx, userUUID, movieUUID)
	if err != nil {
		return fmt.Errorf("remove from wishlist: %w", err)
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}
