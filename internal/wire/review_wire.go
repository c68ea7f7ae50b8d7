package wire

import (
	"movie-booking/internal/adaptor"
	"movie-booking/internal/data/repository"
	"movie-booking/pkg/middleware"
	"movie-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireCatalog katalog film dan review
func wireCatalog(
	r chi.Router,
	catalogHandler *adaptor.CatalogHandler,
	reviewHandler *adaptor.ReviewHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/movies", catalogHandler.GetMovies)
	r.Get("/api/movies/{id}", catalogHandler.GetMovieByID)
	r.Get("/api/movies/{id}/shows", catalogHandler.GetShows)
	r.Get("/api/movies/{id}/reviews", reviewHandler.GetMovieReviews)
	r.Get("/api/cities", catalogHandler.GetCities)
	r.Get("/api/venues", catalogHandler.GetVenues)

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		r.Post("/api/movies/{id}/reviews", reviewHandler.CreateReview)
		r.Put("/api/reviews/{id}", reviewHandler.UpdateReview)
		r.Delete("/api/reviews/{id}", reviewHandler.DeleteReview)
	})
}
