package repository

import (
	"context"
	"fmt"

	"movie-booking/internal/data/entity"
	"movie-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WishlistRepository interface {
	// Add idempotent, item yang sudah ada tidak diduplikasi
	Add(ctx context.Context, item *entity.WishlistItem) error
	Remove(ctx context.Context, userID, movieID uuid.UUID) (bool, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.WishlistItem, error)
}

type wishlistRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewWishlistRepository(db database.PgxIface, log *zap.Logger) WishlistRepository {
	return &wishlistRepository{
		db:  db,
		log: log.With(zap.String("repository", "wishlist")),
	}
}

func (r *wishlistRepository) Add(ctx context.Context, item *entity.WishlistItem) error {
	query := `
		INSERT INTO wishlist_items (id, user_id, movie_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, movie_id) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, item.ID, item.UserID, item.MovieID, item.CreatedAt); err != nil {
		r.log.Error("Failed to add wishlist item",
			zap.Error(err),
			zap.String("user_id", item.UserID.String()),
			zap.String("movie_id", item.MovieID.String()),
		)
		return fmt.Errorf("add movie %s to wishlist: %w", item.MovieID, err)
	}

	return nil
}

func (r *wishlistRepository) Remove(ctx context.Context, userID, movieID uuid.UUID) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND movie_id = $2`, userID, movieID)
	if err != nil {
		return false, fmt.Errorf("remove movie %s from wishlist: %w", movieID, err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *wishlistRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.WishlistItem, error) {
	query := `
		SELECT w.id, w.user_id, w.movie_id, w.created_at,
		       m.title, m.genre, m.language, m.duration_minutes, m.rating, m.poster_url, m.release_date
		FROM wishlist_items w
		JOIN movies m ON m.id = w.movie_id AND m.deleted_at IS NULL
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list wishlist", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("list wishlist for user %s: %w", userID, err)
	}
	defer rows.Close()

	var items []*entity.WishlistItem
	for rows.Next() {
		item := entity.WishlistItem{Movie: &entity.Movie{}}
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.MovieID,
			&item.CreatedAt,
			&item.Movie.Title,
			&item.Movie.Genre,
			&item.Movie.Language,
			&item.Movie.DurationMinutes,
			&item.Movie.Rating,
			&item.Movie.PosterURL,
			&item.Movie.ReleaseDate,
		); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		item.Movie.ID = item.MovieID
		items = append(items, &item)
	}

	return items, rows.Err()
}
