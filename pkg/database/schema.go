package database

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username VARCHAR(50) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		full_name VARCHAR(100) NOT NULL DEFAULT '',
		password VARCHAR(255) NOT NULL,
		phone VARCHAR(20),
		role VARCHAR(20) NOT NULL DEFAULT 'customer',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		token UUID NOT NULL UNIQUE,
		user_agent TEXT,
		ip_address VARCHAR(64),
		expires_at TIMESTAMPTZ NOT NULL,
		revoked_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id UUID PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		genre VARCHAR(50) NOT NULL DEFAULT '',
		language VARCHAR(50) NOT NULL DEFAULT '',
		duration_minutes INT NOT NULL,
		rating VARCHAR(10) NOT NULL DEFAULT '',
		poster_url TEXT NOT NULL DEFAULT '',
		release_date DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS cities (
		id UUID PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		state VARCHAR(100) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS venues (
		id UUID PRIMARY KEY,
		city_id UUID NOT NULL REFERENCES cities(id),
		name VARCHAR(255) NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS shows (
		id UUID PRIMARY KEY,
		movie_id UUID NOT NULL REFERENCES movies(id),
		venue_id UUID NOT NULL REFERENCES venues(id),
		screen_id VARCHAR(50) NOT NULL,
		starts_at TIMESTAMPTZ NOT NULL,
		price NUMERIC(10, 2) NOT NULL,
		total_seats INT NOT NULL,
		available_seats INT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shows_movie_starts ON shows (movie_id, starts_at)`,
	`CREATE TABLE IF NOT EXISTS seats (
		id UUID PRIMARY KEY,
		show_id UUID NOT NULL REFERENCES shows(id),
		seat_row VARCHAR(5) NOT NULL,
		seat_number INT NOT NULL,
		seat_type VARCHAR(20) NOT NULL,
		is_available BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (show_id, seat_row, seat_number)
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY,
		reference VARCHAR(32) NOT NULL UNIQUE,
		user_id UUID NOT NULL REFERENCES users(id),
		show_id UUID NOT NULL REFERENCES shows(id),
		movie_title VARCHAR(255) NOT NULL,
		venue_name VARCHAR(255) NOT NULL,
		screen_id VARCHAR(50) NOT NULL,
		show_starts_at TIMESTAMPTZ NOT NULL,
		total_amount NUMERIC(10, 2) NOT NULL,
		payment_method VARCHAR(20) NOT NULL,
		transaction_id VARCHAR(64) NOT NULL,
		status VARCHAR(20) NOT NULL,
		idempotency_key VARCHAR(64) NOT NULL,
		booking_date TIMESTAMPTZ NOT NULL,
		cancelled_at TIMESTAMPTZ,
		cancellation_reason TEXT,
		refund_amount NUMERIC(10, 2),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, idempotency_key)
	)`,
	`CREATE TABLE IF NOT EXISTS booking_seats (
		id UUID PRIMARY KEY,
		booking_id UUID NOT NULL REFERENCES bookings(id),
		seat_id UUID NOT NULL REFERENCES seats(id),
		seat_row VARCHAR(5) NOT NULL,
		seat_number INT NOT NULL,
		seat_type VARCHAR(20) NOT NULL,
		price NUMERIC(10, 2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		booking_id UUID REFERENCES bookings(id),
		user_id UUID NOT NULL REFERENCES users(id),
		method VARCHAR(20) NOT NULL,
		amount NUMERIC(10, 2) NOT NULL,
		status VARCHAR(20) NOT NULL,
		transaction_id VARCHAR(64) NOT NULL,
		failure_reason TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS wallets (
		user_id UUID PRIMARY KEY REFERENCES users(id),
		balance NUMERIC(12, 2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		movie_id UUID NOT NULL REFERENCES movies(id),
		rating INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, movie_id)
	)`,
	`CREATE TABLE IF NOT EXISTS wishlist_items (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		movie_id UUID NOT NULL REFERENCES movies(id),
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, movie_id)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		booking_id UUID REFERENCES bookings(id),
		type VARCHAR(30) NOT NULL,
		title VARCHAR(255) NOT NULL,
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate membuat tabel yang belum ada, aman dipanggil berulang
func Migrate(ctx context.Context, db PgxIface) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}
	return nil
}
