package entity

import "github.com/google/uuid"

type WishlistItem struct {
	BaseSimple
	UserID  uuid.UUID `db:"user_id"`
	MovieID uuid.UUID `db:"movie_id"`
	Movie   *Movie    `db:"-"`
}
