package response

import (
	"time"

	"movie-booking/internal/data/entity"

	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type MovieResponse struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	Genre           string  `json:"genre"`
	Language        string  `json:"language"`
	DurationMinutes int     `json:"duration_minutes"`
	Rating          string  `json:"rating"`
	PosterURL       string  `json:"poster_url,omitempty"`
	ReleaseDate     string  `json:"release_date"`
	AverageRating   float64 `json:"average_rating,omitempty"`
	ReviewCount     int64   `json:"review_count,omitempty"`
}

type CityResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state,omitempty"`
}

type VenueResponse struct {
	ID      string `json:"id"`
	CityID  string `json:"city_id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type ShowResponse struct {
	ID             string          `json:"id"`
	MovieID        string          `json:"movie_id"`
	MovieTitle     string          `json:"movie_title"`
	VenueID        string          `json:"venue_id"`
	VenueName      string          `json:"venue_name"`
	ScreenID       string          `json:"screen_id"`
	ShowDate       string          `json:"show_date"`
	ShowTime       string          `json:"show_time"`
	StartsAt       time.Time       `json:"starts_at"`
	Price          decimal.Decimal `json:"price"`
	AvailableSeats int             `json:"available_seats"`
}

func MovieToResponse(movie *entity.Movie, stats *entity.ReviewStats) MovieResponse {
	resp := MovieResponse{
		ID:              movie.ID.String(),
		Title:           movie.Title,
		Description:     movie.Description,
		Genre:           movie.Genre,
		Language:        movie.Language,
		DurationMinutes: movie.DurationMinutes,
		Rating:          movie.Rating,
		PosterURL:       movie.PosterURL,
		ReleaseDate:     movie.ReleaseDate.Format(DateLayout),
	}
	if stats != nil {
		resp.AverageRating = stats.AverageRating
		resp.ReviewCount = stats.TotalReviews
	}
	return resp
}

func CityToResponse(city *entity.City) CityResponse {
	return CityResponse{ID: city.ID.String(), Name: city.Name, State: city.State}
}

func VenueToResponse(venue *entity.Venue) VenueResponse {
	return VenueResponse{
		ID:      venue.ID.String(),
		CityID:  venue.CityID.String(),
		Name:    venue.Name,
		Address: venue.Address,
	}
}

// ShowToResponse tanggal dan jam ditampilkan di zona waktu loc
func ShowToResponse(show *entity.ShowDetail, loc *time.Location) ShowResponse {
	starts := show.StartsAt.In(loc)
	return ShowResponse{
		ID:             show.ID.String(),
		MovieID:        show.MovieID.String(),
		MovieTitle:     show.MovieTitle,
		VenueID:        show.VenueID.String(),
		VenueName:      show.VenueName,
		ScreenID:       show.ScreenID,
		ShowDate:       starts.Format(DateLayout),
		ShowTime:       starts.Format(TimeLayout),
		StartsAt:       show.StartsAt,
		Price:          show.Price,
		AvailableSeats: show.AvailableSeats,
	}
}
