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

type ReviewService interface {
	CreateReview(ctx context.Context, userID, movieID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
	GetMovieReviews(ctx context.Context, movieID string, req *request.PaginatedRequest) (*response.MovieReviewsResponse, error)
	UpdateReview(ctx context.Context, reviewID, userID string, req *request.UpdateReviewRequest) (*response.ReviewResponse, error)
	DeleteReview(ctx context.Context, reviewID, userID string) error
}

type reviewService struct {
	repo *repository.Repository
	now  func() time.Time
	log  *zap.Logger
}

func NewReviewService(repo *repository.Repository, log *zap.Logger) ReviewService {
	return &reviewService{
		repo: repo,
		now:  time.Now,
		log:  log.With(zap.String("service", "review")),
	}
}

func (s *reviewService) CreateReview(ctx context.Context, userID, movieID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	// 1. Validasi
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create review validation failed", zap.Any("errors", errs))
		return nil, newValidationError(errs)
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	movieUUID, err := uuid.Parse(movieID)
	if err != nil {
		return nil, invalidField("movie_id", "Must be a valid UUID")
	}

	// 2. Film harus ada
	movie, err := s.repo.Movie.FindByID(ctx, movieUUID)
	if err != nil {
		return nil, fmt.Errorf("find movie: %w", err)
	}
	if movie == nil {
		return nil, ErrNotFound
	}

	// 3. Satu review per user per film
	existing, err := s.repo.Review.FindByUserAndMovie(ctx, userUUID, movieUUID)
	if err != nil {
		s.log.Error("Failed to check existing review", zap.Error(err))
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("movie already reviewed: %w", ErrConflict)
	}

	now := s.now()
	review := &entity.Review{
		BaseNoDelete: entity.NewBaseNoDelete(now),
		UserID:       userUUID,
		MovieID:      movieUUID,
		Rating:       req.Rating,
		Comment:      req.Comment,
	}

	if err := s.repo.Review.Create(ctx, review); err != nil {
		s.log.Error("Failed to create review", zap.Error(err), zap.String("movie_id", movieID))
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("movie_id", movieID),
		zap.Int("rating", review.Rating),
	)

	resp := response.ReviewToResponse(review, s.username(ctx, userUUID))
	return &resp, nil
}

func (s *reviewService) GetMovieReviews(ctx context.Context, movieID string, req *request.PaginatedRequest) (*response.MovieReviewsResponse, error) {
	movieUUID, err := uuid.Parse(movieID)
	if err != nil {
		return nil, invalidField("movie_id", "Must be a valid UUID")
	}
	req.Normalize()

	reviews, err := s.repo.Review.FindByMovieID(ctx, movieUUID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get reviews", zap.Error(err), zap.String("movie_id", movieID))
		return nil, &LoadError{Resource: "reviews", Err: err}
	}

	stats, err := s.repo.Review.GetStats(ctx, movieUUID)
	if err != nil {
		return nil, &LoadError{Resource: "review stats", Err: err}
	}

	// cache username supaya satu user tidak dibaca berkali-kali
	names := make(map[uuid.UUID]string)
	out := &response.MovieReviewsResponse{Reviews: make([]response.ReviewResponse, len(reviews))}
	if stats != nil {
		out.AverageRating = stats.AverageRating
		out.ReviewCount = stats.TotalReviews
	}
	for i, r := range reviews {
		name, ok := names[r.UserID]
		if !ok {
			name = s.username(ctx, r.UserID)
			names[r.UserID] = name
		}
		out.Reviews[i] = response.ReviewToResponse(r, name)
	}

	return out, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, reviewID, userID string, req *request.UpdateReviewRequest) (*response.ReviewResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	review, err := s.ownedReview(ctx, reviewID, userID)
	if err != nil {
		return nil, err
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = req.Comment
	}
	review.Touch(s.now())

	if err := s.repo.Review.Update(ctx, review); err != nil {
		s.log.Error("Failed to update review", zap.Error(err), zap.String("review_id", reviewID))
		return nil, fmt.Errorf("update review: %w", err)
	}

	resp := response.ReviewToResponse(review, s.username(ctx, review.UserID))
	return &resp, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, reviewID, userID string) error {
	review, err := s.ownedReview(ctx, reviewID, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Review.Delete(ctx, review.ID); err != nil {
		s.log.Error("Failed to delete review", zap.Error(err), zap.String("review_id", reviewID))
		return fmt.Errorf("delete review: %w", err)
	}

	s.log.Info("Review deleted", zap.String("review_id", reviewID))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *reviewService) ownedReview(ctx context.Context, reviewID, userID string) (*entity.Review, error) {
	id, err := uuid.Parse(reviewID)
	if err != nil {
		return nil, invalidField("review_id", "Must be a valid UUID")
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	review, err := s.repo.Review.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find review: %w", err)
	}
	if review == nil {
		return nil, ErrNotFound
	}
	if review.UserID != userUUID {
		return nil, fmt.Errorf("review %s: %w", reviewID, ErrForbidden)
	}
	return review, nil
}

func (s *reviewService) username(ctx context.Context, userID uuid.UUID) string {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil || user == nil {
		return ""
	}
	return user.Username
}
