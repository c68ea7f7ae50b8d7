package repository

import (
	"context"
	"errors"
	"fmt"

	"movie-booking/internal/data/entity"
	"movie-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type VenueRepository interface {
	FindAllCities(ctx context.Context) ([]*entity.City, error)
	FindVenues(ctx context.Context, cityID *uuid.UUID) ([]*entity.Venue, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Venue, error)
}

type venueRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewVenueRepository(db database.PgxIface, log *zap.Logger) VenueRepository {
	return &venueRepository{
		db:  db,
		log: log.With(zap.String("repository", "venue")),
	}
}

func (r *venueRepository) FindAllCities(ctx context.Context) ([]*entity.City, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, state, created_at FROM cities ORDER BY name`)
	if err != nil {
		r.log.Error("Failed to list cities", zap.Error(err))
		return nil, fmt.Errorf("list cities: %w", err)
	}
	defer rows.Close()

	var cities []*entity.City
	for rows.Next() {
		var c entity.City
		if err := rows.Scan(&c.ID, &c.Name, &c.State, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		cities = append(cities, &c)
	}

	return cities, rows.Err()
}

// FindVenues semua venue, atau venue di satu kota kalau cityID diisi
func (r *venueRepository) FindVenues(ctx context.Context, cityID *uuid.UUID) ([]*entity.Venue, error) {
	query := `
		SELECT id, city_id, name, address, created_at, updated_at
		FROM venues
		WHERE ($1::uuid IS NULL OR city_id = $1)
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query, cityID)
	if err != nil {
		r.log.Error("Failed to list venues", zap.Error(err))
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	var venues []*entity.Venue
	for rows.Next() {
		var v entity.Venue
		if err := rows.Scan(&v.ID, &v.CityID, &v.Name, &v.Address, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		venues = append(venues, &v)
	}

	return venues, rows.Err()
}

func (r *venueRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Venue, error) {
	query := `SELECT id, city_id, name, address, created_at, updated_at FROM venues WHERE id = $1`

	var v entity.Venue
	err := r.db.QueryRow(ctx, query, id).Scan(&v.ID, &v.CityID, &v.Name, &v.Address, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find venue", zap.Error(err), zap.String("venue_id", id.String()))
		return nil, fmt.Errorf("find venue %s: %w", id, err)
	}

	return &v, nil
}
