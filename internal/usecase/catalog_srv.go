package usecase

import (
	"context"
	"strings"
	"time"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/data/repository"
	"movie-booking/internal/dto/request"
	"movie-booking/internal/dto/response"
	"movie-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CatalogService interface {
	GetMovies(ctx context.Context, req *request.MovieListRequest) (*response.PaginatedResponse[response.MovieResponse], error)
	GetMovieByID(ctx context.Context, movieID string) (*response.MovieResponse, error)
	GetShows(ctx context.Context, movieID string, req *request.ShowListRequest) ([]response.ShowResponse, error)
	GetCities(ctx context.Context) ([]response.CityResponse, error)
	GetVenues(ctx context.Context, cityID string) ([]response.VenueResponse, error)
}

type catalogService struct {
	repo *repository.Repository
	loc  *time.Location
	now  func() time.Time
	log  *zap.Logger
}

func NewCatalogService(repo *repository.Repository, loc *time.Location, log *zap.Logger) CatalogService {
	if loc == nil {
		loc = time.UTC
	}
	return &catalogService{
		repo: repo,
		loc:  loc,
		now:  time.Now,
		log:  log.With(zap.String("service", "catalog")),
	}
}

func (s *catalogService) GetMovies(ctx context.Context, req *request.MovieListRequest) (*response.PaginatedResponse[response.MovieResponse], error) {
	req.Normalize()

	filter := entity.MovieFilter{
		Query:    strings.TrimSpace(req.Query),
		Genre:    strings.TrimSpace(req.Genre),
		Language: strings.TrimSpace(req.Language),
		Limit:    req.Limit(),
		Offset:   req.Offset(),
	}

	movies, err := s.repo.Movie.FindAll(ctx, filter)
	if err != nil {
		s.log.Error("Failed to get movies",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.String("query", filter.Query),
		)
		return nil, &LoadError{Resource: "movies", Err: err}
	}

	total, err := s.repo.Movie.Count(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count movies", zap.Error(err))
		return nil, &LoadError{Resource: "movies", Err: err}
	}

	data := make([]response.MovieResponse, len(movies))
	for i, movie := range movies {
		data[i] = response.MovieToResponse(movie, s.reviewStats(ctx, movie.ID))
	}

	s.log.Debug("Movies retrieved",
		zap.Int("count", len(movies)),
		zap.Int64("total", total),
	)

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (s *catalogService) GetMovieByID(ctx context.Context, movieID string) (*response.MovieResponse, error) {
	id, err := uuid.Parse(movieID)
	if err != nil {
		return nil, invalidField("movie_id", "Must be a valid UUID")
	}

	movie, err := s.repo.Movie.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get movie", zap.Error(err), zap.String("movie_id", movieID))
		return nil, &LoadError{Resource: "movie", Err: err}
	}
	if movie == nil {
		return nil, ErrNotFound
	}

	resp := response.MovieToResponse(movie, s.reviewStats(ctx, movie.ID))
	return &resp, nil
}

// GetShows jadwal satu film. Tanpa tanggal hanya show yang belum mulai.
func (s *catalogService) GetShows(ctx context.Context, movieID string, req *request.ShowListRequest) ([]response.ShowResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	id, err := uuid.Parse(movieID)
	if err != nil {
		return nil, invalidField("movie_id", "Must be a valid UUID")
	}

	filter := entity.ShowFilter{MovieID: id}
	if req.Date != "" {
		// tanggal dibaca di zona waktu bioskop
		date, err := time.ParseInLocation(response.DateLayout, req.Date, s.loc)
		if err != nil {
			return nil, invalidField("date", "Must be a date in YYYY-MM-DD format")
		}
		filter.Date = &date
	}
	if req.CityID != "" {
		cityID := uuid.MustParse(req.CityID)
		filter.CityID = &cityID
	}
	if req.VenueID != "" {
		venueID := uuid.MustParse(req.VenueID)
		filter.VenueID = &venueID
	}

	shows, err := s.repo.Show.FindByFilter(ctx, filter)
	if err != nil {
		s.log.Error("Failed to get shows", zap.Error(err), zap.String("movie_id", movieID))
		return nil, &LoadError{Resource: "shows", Err: err}
	}

	now := s.now()
	out := make([]response.ShowResponse, 0, len(shows))
	for _, show := range shows {
		if filter.Date != nil && !sameLocalDay(show.StartsAt, *filter.Date, s.loc) {
			continue
		}
		if filter.Date == nil && !show.StartsAt.After(now) {
			continue
		}
		out = append(out, response.ShowToResponse(show, s.loc))
	}

	return out, nil
}

func (s *catalogService) GetCities(ctx context.Context) ([]response.CityResponse, error) {
	cities, err := s.repo.Venue.FindAllCities(ctx)
	if err != nil {
		s.log.Error("Failed to get cities", zap.Error(err))
		return nil, &LoadError{Resource: "cities", Err: err}
	}

	out := make([]response.CityResponse, len(cities))
	for i, c := range cities {
		out[i] = response.CityToResponse(c)
	}
	return out, nil
}

func (s *catalogService) GetVenues(ctx context.Context, cityID string) ([]response.VenueResponse, error) {
	var filter *uuid.UUID
	if cityID != "" {
		id, err := uuid.Parse(cityID)
		if err != nil {
			return nil, invalidField("city_id", "Must be a valid UUID")
		}
		filter = &id
	}

	venues, err := s.repo.Venue.FindVenues(ctx, filter)
	if err != nil {
		s.log.Error("Failed to get venues", zap.Error(err), zap.String("city_id", cityID))
		return nil, &LoadError{Resource: "venues", Err: err}
	}

	out := make([]response.VenueResponse, len(venues))
	for i, v := range venues {
		out[i] = response.VenueToResponse(v)
	}
	return out, nil
}

// reviewStats statistik review bersifat tambahan, error hanya di-log
func (s *catalogService) reviewStats(ctx context.Context, movieID uuid.UUID) *entity.ReviewStats {
	stats, err := s.repo.Review.GetStats(ctx, movieID)
	if err != nil {
		s.log.Warn("Failed to get review stats",
			zap.Error(err),
			zap.String("movie_id", movieID.String()),
		)
		return nil
	}
	return stats
}

func sameLocalDay(t, day time.Time, loc *time.Location) bool {
	a := t.In(loc)
	b := day.In(loc)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
