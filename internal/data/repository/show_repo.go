package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"movie-booking/internal/data/entity"
	"movie-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ShowRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ShowDetail, error)
	FindByFilter(ctx context.Context, filter entity.ShowFilter) ([]*entity.ShowDetail, error)
}

type showRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewShowRepository(db database.PgxIface, log *zap.Logger) ShowRepository {
	return &showRepository{
		db:  db,
		log: log.With(zap.String("repository", "show")),
	}
}

const showDetailSelect = `
	SELECT s.id, s.movie_id, s.venue_id, s.screen_id, s.starts_at, s.price,
	       s.total_seats, s.available_seats, s.is_active, s.created_at, s.updated_at,
	       m.title, v.name, v.city_id
	FROM shows s
	JOIN movies m ON m.id = s.movie_id
	JOIN venues v ON v.id = s.venue_id
`

func scanShowDetail(row pgx.Row) (*entity.ShowDetail, error) {
	var s entity.ShowDetail
	err := row.Scan(
		&s.ID,
		&s.MovieID,
		&s.VenueID,
		&s.ScreenID,
		&s.StartsAt,
		&s.Price,
		&s.TotalSeats,
		&s.AvailableSeats,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.MovieTitle,
		&s.VenueName,
		&s.CityID,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *showRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ShowDetail, error) {
	show, err := scanShowDetail(r.db.QueryRow(ctx, showDetailSelect+` WHERE s.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find show", zap.Error(err), zap.String("show_id", id.String()))
		return nil, fmt.Errorf("find show %s: %w", id, err)
	}

	return show, nil
}

// FindByFilter show aktif satu film. Date adalah awal hari di zona waktu bioskop, kota dan venue opsional
func (r *showRepository) FindByFilter(ctx context.Context, filter entity.ShowFilter) ([]*entity.ShowDetail, error) {
	var from, to *time.Time
	if filter.Date != nil {
		d := *filter.Date
		start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
		end := start.AddDate(0, 0, 1)
		from, to = &start, &end
	}

	query := showDetailSelect + `
		WHERE s.movie_id = $1
		  AND s.is_active
		  AND ($2::timestamptz IS NULL OR s.starts_at >= $2)
		  AND ($3::timestamptz IS NULL OR s.starts_at < $3)
		  AND ($4::uuid IS NULL OR v.city_id = $4)
		  AND ($5::uuid IS NULL OR s.venue_id = $5)
		ORDER BY s.starts_at, v.name
	`

	rows, err := r.db.Query(ctx, query, filter.MovieID, from, to, filter.CityID, filter.VenueID)
	if err != nil {
		r.log.Error("Failed to list shows", zap.Error(err), zap.String("movie_id", filter.MovieID.String()))
		return nil, fmt.Errorf("list shows for movie %s: %w", filter.MovieID, err)
	}
	defer rows.Close()

	var shows []*entity.ShowDetail
	for rows.Next() {
		s, err := scanShowDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan show: %w", err)
		}
		shows = append(shows, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shows: %w", err)
	}

	return shows, nil
}
