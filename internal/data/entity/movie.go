package entity

import (
	"time"
)

type Movie struct {
	Base
	Title           string    `db:"title"`
	Description     string    `db:"description"`
	Genre           string    `db:"genre"`
	Language        string    `db:"language"`
	DurationMinutes int       `db:"duration_minutes"`
	Rating          string    `db:"rating"` // U, UA, A
	PosterURL       string    `db:"poster_url"`
	ReleaseDate     time.Time `db:"release_date"`
}

type MovieFilter struct {
	Query    string
	Genre    string
	Language string
	Limit    int
	Offset   int
}
