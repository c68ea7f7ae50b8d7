package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"movie-booking/internal/data/cache"
	"movie-booking/internal/data/entity"
	"movie-booking/internal/data/repository"
	"movie-booking/internal/dto/request"
	"movie-booking/internal/dto/response"
	"movie-booking/pkg/metrics"
	"movie-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SeatService interface {
	GetSeatMap(ctx context.Context, userID, showID string) (*response.SeatMapResponse, error)
	ReserveSeats(ctx context.Context, userID, showID string, req *request.ReserveSeatsRequest) (*response.ReserveSeatsResponse, error)
	ReleaseSeats(ctx context.Context, userID, showID string, req *request.ReleaseSeatsRequest) error
}

type seatService struct {
	repo  *repository.Repository
	holds cache.SeatHoldStore
	cfg   utils.BookingConfig
	now   func() time.Time
	log   *zap.Logger
}

func NewSeatService(repo *repository.Repository, holds cache.SeatHoldStore, cfg utils.BookingConfig, log *zap.Logger) SeatService {
	return &seatService{
		repo:  repo,
		holds: holds,
		cfg:   cfg,
		now:   time.Now,
		log:   log.With(zap.String("service", "seat")),
	}
}

// GetSeatMap seluruh layout kursi, atau error. Tidak pernah mengembalikan map sebagian.
func (s *seatService) GetSeatMap(ctx context.Context, userID, showID string) (*response.SeatMapResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	showUUID, err := uuid.Parse(showID)
	if err != nil {
		return nil, invalidField("show_id", "Must be a valid UUID")
	}

	show, err := s.repo.Show.FindByID(ctx, showUUID)
	if err != nil {
		s.log.Error("Failed to load show", zap.Error(err), zap.String("show_id", showID))
		return nil, &LoadError{Resource: "show", Err: err}
	}
	if show == nil {
		return nil, ErrNotFound
	}

	seats, err := s.repo.Seat.FindByShowID(ctx, showUUID)
	if err != nil {
		s.log.Error("Failed to load seats", zap.Error(err), zap.String("show_id", showID))
		return nil, &LoadError{Resource: "seats", Err: err}
	}

	ids := make([]uuid.UUID, len(seats))
	for i, seat := range seats {
		ids[i] = seat.ID
	}
	holders, err := s.holds.Holders(ctx, showUUID, ids)
	if err != nil {
		s.log.Error("Failed to load seat holds", zap.Error(err), zap.String("show_id", showID))
		return nil, &LoadError{Resource: "seat holds", Err: err}
	}

	return &response.SeatMapResponse{
		ShowID:    show.ID.String(),
		BasePrice: show.Price,
		Rows:      groupSeatRows(show, seats, holders, userUUID),
	}, nil
}

// groupSeatRows kelompokkan per baris, baris A..Z lalu AA.., kursi diurutkan angka
func groupSeatRows(show *entity.ShowDetail, seats []*entity.Seat, holders map[uuid.UUID]uuid.UUID, userID uuid.UUID) []response.SeatRowResponse {
	byRow := make(map[string][]response.SeatResponse)
	for _, seat := range seats {
		holder, held := holders[seat.ID]
		byRow[seat.SeatRow] = append(byRow[seat.SeatRow], response.SeatResponse{
			ID:           seat.ID.String(),
			ShowID:       seat.ShowID.String(),
			SeatRow:      seat.SeatRow,
			SeatNumber:   seat.SeatNumber,
			Label:        seat.Label(),
			SeatType:     seat.SeatType,
			IsAvailable:  seat.IsAvailable,
			IsBlocked:    held && holder != userID,
			ReservedByMe: held && holder == userID,
			Price:        seat.SeatType.PriceFrom(show.Price),
		})
	}

	rowNames := make([]string, 0, len(byRow))
	for row := range byRow {
		rowNames = append(rowNames, row)
	}
	sort.Slice(rowNames, func(i, j int) bool {
		if len(rowNames[i]) != len(rowNames[j]) {
			return len(rowNames[i]) < len(rowNames[j])
		}
		return rowNames[i] < rowNames[j]
	})

	rows := make([]response.SeatRowResponse, len(rowNames))
	for i, row := range rowNames {
		rowSeats := byRow[row]
		sort.Slice(rowSeats, func(a, b int) bool {
			return rowSeats[a].SeatNumber < rowSeats[b].SeatNumber
		})
		rows[i] = response.SeatRowResponse{Row: row, Seats: rowSeats}
	}
	return rows
}

func (s *seatService) ReserveSeats(ctx context.Context, userID, showID string, req *request.ReserveSeatsRequest) (*response.ReserveSeatsResponse, error) {
	// 1. Validasi
	if len(req.SeatIDs) > s.cfg.MaxSeats {
		return nil, fmt.Errorf("%d seats requested, limit is %d: %w", len(req.SeatIDs), s.cfg.MaxSeats, ErrSelectionLimitExceeded)
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	showUUID, err := uuid.Parse(showID)
	if err != nil {
		return nil, invalidField("show_id", "Must be a valid UUID")
	}
	seatIDs, err := utils.ParseUUIDs(req.SeatIDs)
	if err != nil {
		return nil, invalidField("seat_ids", err.Error())
	}

	// 2. Show masih bisa dipesan
	show, err := s.repo.Show.FindByID(ctx, showUUID)
	if err != nil {
		return nil, fmt.Errorf("find show %s: %w", showID, err)
	}
	if show == nil {
		return nil, ErrNotFound
	}
	if !show.IsActive || !show.StartsAt.After(s.now()) {
		return nil, fmt.Errorf("show %s is closed: %w", showID, ErrBookingContextMissing)
	}

	// 3. Kursi ada di show ini dan belum terjual
	if err := s.checkSeatsOpen(ctx, showUUID, seatIDs); err != nil {
		return nil, err
	}

	// 4. Hold semua atau tidak sama sekali
	ttl := s.cfg.HoldDuration()
	if req.HoldMinutes > 0 {
		ttl = time.Duration(req.HoldMinutes) * time.Minute
	}

	if err := s.holds.Hold(ctx, showUUID, seatIDs, userUUID, ttl); err != nil {
		if errors.Is(err, cache.ErrSeatHeld) {
			metrics.SeatHold("conflict", len(seatIDs))
			return nil, fmt.Errorf("%v: %w", err, ErrSeatUnavailable)
		}
		metrics.SeatHold("error", len(seatIDs))
		s.log.Error("Failed to hold seats", zap.Error(err), zap.String("show_id", showID))
		return nil, fmt.Errorf("hold seats: %w", err)
	}
	metrics.SeatHold("held", len(seatIDs))

	s.log.Info("Seats held",
		zap.String("show_id", showID),
		zap.String("user_id", userID),
		zap.Int("seat_count", len(seatIDs)),
		zap.Duration("ttl", ttl),
	)

	ids := make([]string, len(seatIDs))
	for i, id := range seatIDs {
		ids[i] = id.String()
	}
	return &response.ReserveSeatsResponse{
		ShowID:    showID,
		SeatIDs:   ids,
		ExpiresAt: s.now().Add(ttl),
	}, nil
}

func (s *seatService) ReleaseSeats(ctx context.Context, userID, showID string, req *request.ReleaseSeatsRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return newValidationError(errs)
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return ErrUnauthorized
	}
	showUUID, err := uuid.Parse(showID)
	if err != nil {
		return invalidField("show_id", "Must be a valid UUID")
	}
	seatIDs, err := utils.ParseUUIDs(req.SeatIDs)
	if err != nil {
		return invalidField("seat_ids", err.Error())
	}

	if err := s.holds.Release(ctx, showUUID, seatIDs, userUUID); err != nil {
		s.log.Error("Failed to release seats", zap.Error(err), zap.String("show_id", showID))
		return fmt.Errorf("release seats: %w", err)
	}
	metrics.SeatHold("released", len(seatIDs))
	return nil
}

func (s *seatService) checkSeatsOpen(ctx context.Context, showID uuid.UUID, seatIDs []uuid.UUID) error {
	seats, err := s.repo.Seat.FindByIDs(ctx, showID, seatIDs)
	if err != nil {
		return fmt.Errorf("find seats: %w", err)
	}
	if len(seats) != len(seatIDs) {
		return fmt.Errorf("seat does not belong to show %s: %w", showID, ErrSeatUnavailable)
	}
	for _, seat := range seats {
		if !seat.IsAvailable {
			return fmt.Errorf("seat %s already booked: %w", seat.Label(), ErrSeatUnavailable)
		}
	}
	return nil
}
