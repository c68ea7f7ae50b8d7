package usecase

import (
	"context"
	"errors"
	"testing"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupReviewService(t *testing.T) (ReviewService, *memDB, *entity.Movie) {
	t.Helper()

	db := newMemDB()
	movie := &entity.Movie{Base: entity.Base{ID: uuid.New()}, Title: "Dune: Part Two"}
	db.movies[movie.ID] = movie

	return NewReviewService(db.repository(), zap.NewNop()), db, movie
}

func addUser(db *memDB, username string) uuid.UUID {
	user := &entity.User{Base: entity.Base{ID: uuid.New()}, Username: username, Email: username + "@example.com"}
	db.users[user.ID] = user
	return user.ID
}

func TestReviewService_CreateAndAverage(t *testing.T) {
	svc, db, movie := setupReviewService(t)
	ctx := context.Background()
	asha := addUser(db, "asha")
	ravi := addUser(db, "ravi")

	comment := "Loved the sound design"
	created, err := svc.CreateReview(ctx, asha.String(), movie.ID.String(), &request.CreateReviewRequest{Rating: 5, Comment: &comment})
	require.NoError(t, err)
	assert.Equal(t, "asha", created.Username)
	assert.Equal(t, 5, created.Rating)

	_, err = svc.CreateReview(ctx, ravi.String(), movie.ID.String(), &request.CreateReviewRequest{Rating: 2})
	require.NoError(t, err)

	list, err := svc.GetMovieReviews(ctx, movie.ID.String(), &request.PaginatedRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Reviews, 2)
	assert.Equal(t, int64(2), list.ReviewCount)
	assert.InDelta(t, 3.5, list.AverageRating, 0.001)
}

func TestReviewService_CreateRejections(t *testing.T) {
	svc, db, movie := setupReviewService(t)
	ctx := context.Background()
	asha := addUser(db, "asha")

	_, err := svc.CreateReview(ctx, asha.String(), movie.ID.String(), &request.CreateReviewRequest{Rating: 6})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr), "want ValidationError, got %v", err)
	assert.Contains(t, vErr.Fields, "rating")

	_, err = svc.CreateReview(ctx, asha.String(), uuid.NewString(), &request.CreateReviewRequest{Rating: 4})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CreateReview(ctx, asha.String(), movie.ID.String(), &request.CreateReviewRequest{Rating: 4})
	require.NoError(t, err)
	_, err = svc.CreateReview(ctx, asha.String(), movie.ID.String(), &request.CreateReviewRequest{Rating: 3})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestReviewService_OnlyAuthorUpdatesOrDeletes(t *testing.T) {
	svc, db, movie := setupReviewService(t)
	ctx := context.Background()
	author := addUser(db, "asha")
	other := addUser(db, "ravi")

	created, err := svc.CreateReview(ctx, author.String(), movie.ID.String(), &request.CreateReviewRequest{Rating: 3})
	require.NoError(t, err)

	rating := 1
	_, err = svc.UpdateReview(ctx, created.ID, other.String(), &request.UpdateReviewRequest{Rating: &rating})
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.DeleteReview(ctx, created.ID, other.String())
	assert.ErrorIs(t, err, ErrForbidden)

	// review tidak berubah oleh user lain
	list, err := svc.GetMovieReviews(ctx, movie.ID.String(), &request.PaginatedRequest{})
	require.NoError(t, err)
	require.Len(t, list.Reviews, 1)
	assert.Equal(t, 3, list.Reviews[0].Rating)

	rating = 4
	updated, err := svc.UpdateReview(ctx, created.ID, author.String(), &request.UpdateReviewRequest{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)

	require.NoError(t, svc.DeleteReview(ctx, created.ID, author.String()))
	assert.ErrorIs(t, svc.DeleteReview(ctx, created.ID, author.String()), ErrNotFound)

	list, err = svc.GetMovieReviews(ctx, movie.ID.String(), &request.PaginatedRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Reviews)
	assert.Zero(t, list.AverageRating)
}
