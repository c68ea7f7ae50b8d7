package repository

import (
	"context"
	"fmt"

	"movie-booking/internal/data/entity"
	"movie-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SeatRepository interface {
	FindByShowID(ctx context.Context, showID uuid.UUID) ([]*entity.Seat, error)
	FindByIDs(ctx context.Context, showID uuid.UUID, seatIDs []uuid.UUID) ([]*entity.Seat, error)
}

type seatRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeatRepository(db database.PgxIface, log *zap.Logger) SeatRepository {
	return &seatRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat")),
	}
}

const seatColumns = `id, show_id, seat_row, seat_number, seat_type, is_available, created_at, updated_at`

func collectSeats(rows pgx.Rows) ([]*entity.Seat, error) {
	defer rows.Close()

	var seats []*entity.Seat
	for rows.Next() {
		var s entity.Seat
		if err := rows.Scan(
			&s.ID,
			&s.ShowID,
			&s.SeatRow,
			&s.SeatNumber,
			&s.SeatType,
			&s.IsAvailable,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan seat: %w", err)
		}
		seats = append(seats, &s)
	}

	return seats, rows.Err()
}

func (r *seatRepository) FindByShowID(ctx context.Context, showID uuid.UUID) ([]*entity.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE show_id = $1 ORDER BY seat_row, seat_number`

	rows, err := r.db.Query(ctx, query, showID)
	if err != nil {
		r.log.Error("Failed to find seats by show", zap.Error(err), zap.String("show_id", showID.String()))
		return nil, fmt.Errorf("find seats for show %s: %w", showID, err)
	}

	return collectSeats(rows)
}

// FindByIDs hanya mengembalikan kursi yang memang milik show tersebut
func (r *seatRepository) FindByIDs(ctx context.Context, showID uuid.UUID, seatIDs []uuid.UUID) ([]*entity.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE show_id = $1 AND id = ANY($2) ORDER BY seat_row, seat_number`

	rows, err := r.db.Query(ctx, query, showID, seatIDs)
	if err != nil {
		r.log.Error("Failed to find seats by IDs",
			zap.Error(err),
			zap.String("show_id", showID.String()),
			zap.Int("count", len(seatIDs)),
		)
		return nil, fmt.Errorf("find seats for show %s: %w", showID, err)
	}

	return collectSeats(rows)
}
