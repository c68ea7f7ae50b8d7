package entity

import "github.com/google/uuid"

type City struct {
	BaseSimple
	Name  string `db:"name"`
	State string `db:"state"`
}

type Venue struct {
	BaseNoDelete
	CityID  uuid.UUID `db:"city_id"`
	Name    string    `db:"name"`
	Address string    `db:"address"`
}
