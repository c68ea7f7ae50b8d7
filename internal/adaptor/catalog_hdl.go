package adaptor

import (
	"net/http"

	"movie-booking/internal/dto/request"
	"movie-booking/internal/usecase"
	"movie-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	service usecase.CatalogService
	log     *zap.Logger
}

func NewCatalogHandler(service usecase.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		log:     log.With(zap.String("handler", "catalog")),
	}
}

// GetMovies handles GET /api/movies?q=&genre=&language=&page=&per_page=
func (h *CatalogHandler) GetMovies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.MovieListRequest{
		PaginatedRequest: *paginationFromQuery(r),
		Query:            query.Get("q"),
		Genre:            query.Get("genre"),
		Language:         query.Get("language"),
	}

	movies, err := h.service.GetMovies(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "get movies")
		return
	}

	utils.ResponseSuccess(w, "success", movies)
}

// GetMovieByID handles GET /api/movies/{id}
func (h *CatalogHandler) GetMovieByID(w http.ResponseWriter, r *http.Request) {
	movie, err := h.service.GetMovieByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get movie")
		return
	}

	utils.ResponseSuccess(w, "success", movie)
}

// GetShows handles GET /api/movies/{id}/shows?date=&city_id=&venue_id=
func (h *CatalogHandler) GetShows(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.ShowListRequest{
		Date:    query.Get("date"),
		CityID:  query.Get("city_id"),
		VenueID: query.Get("venue_id"),
	}

	shows, err := h.service.GetShows(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, h.log, err, "get shows")
		return
	}

	utils.ResponseSuccess(w, "success", shows)
}

// GetCities handles GET /api/cities
func (h *CatalogHandler) GetCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.service.GetCities(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "get cities")
		return
	}

	utils.ResponseSuccess(w, "success", cities)
}

// GetVenues handles GET /api/venues?city_id=
func (h *CatalogHandler) GetVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.service.GetVenues(r.Context(), r.URL.Query().Get("city_id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get venues")
		return
	}

	utils.ResponseSuccess(w, "success", venues)
}
