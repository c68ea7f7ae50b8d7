package request

type MovieListRequest struct {
	PaginatedRequest
	Query    string `json:"q"`
	Genre    string `json:"genre"`
	Language string `json:"language"`
}

// ShowListRequest Date format 2006-01-02, kosong berarti semua jadwal mendatang
type ShowListRequest struct {
	Date    string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	CityID  string `json:"city_id" validate:"omitempty,uuid"`
	VenueID string `json:"venue_id" validate:"omitempty,uuid"`
}
