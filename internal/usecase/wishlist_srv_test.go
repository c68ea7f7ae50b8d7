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

func TestWishlistService_AddIsIdempotentAndRemove(t *testing.T) {
	db := newMemDB()
	movie := &entity.Movie{Base: entity.Base{ID: uuid.New()}, Title: "Oppenheimer"}
	db.movies[movie.ID] = movie
	svc := NewWishlistService(db.repository(), zap.NewNop())
	ctx := context.Background()
	userID := uuid.NewString()

	req := &request.AddWishlistRequest{MovieID: movie.ID.String()}
	require.NoError(t, svc.AddToWishlist(ctx, userID, req))
	require.NoError(t, svc.AddToWishlist(ctx, userID, req))

	items, err := svc.GetWishlist(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Oppenheimer", items[0].Movie.Title)

	// wishlist user lain terpisah
	others, err := svc.GetWishlist(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, others)

	require.NoError(t, svc.RemoveFromWishlist(ctx, userID, movie.ID.String()))
	assert.ErrorIs(t, svc.RemoveFromWishlist(ctx, userID, movie.ID.String()), ErrNotFound)

	items, err = svc.GetWishlist(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWishlistService_AddRejections(t *testing.T) {
	svc := NewWishlistService(newMemDB().repository(), zap.NewNop())
	ctx := context.Background()

	err := svc.AddToWishlist(ctx, uuid.NewString(), &request.AddWishlistRequest{MovieID: "not-a-uuid"})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr), "want ValidationError, got %v", err)
	assert.Contains(t, vErr.Fields, "movie_id")

	err = svc.AddToWishlist(ctx, uuid.NewString(), &request.AddWishlistRequest{MovieID: uuid.NewString()})
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.AddToWishlist(ctx, "", &request.AddWishlistRequest{MovieID: uuid.NewString()})
	assert.ErrorIs(t, err, ErrUnauthorized)
}
