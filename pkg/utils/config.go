package utils

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Booking  BookingConfig
	Payment  PaymentConfig
}

type AppConfig struct {
	Name     string
	Port     string
	Debug    bool
	LogPath  string
	Timezone string
}

// Location zona waktu untuk menampilkan tanggal/jam show, fallback ke UTC
func (c AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

// RedisConfig kosong berarti hold kursi disimpan in-memory dan event bus in-process
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	ExpiryHours            int
	CleanupIntervalMinutes int
}

type BookingConfig struct {
	MaxSeats             int
	HoldMinutes          int
	CancelCutoffHours    int
	RefundPercent        int
	HoldSweepIntervalSec int
}

type PaymentConfig struct {
	DelayMs     int
	FailureRate float64
}

func (c BookingConfig) HoldDuration() time.Duration {
	return time.Duration(c.HoldMinutes) * time.Minute
}

func (c BookingConfig) CancelCutoff() time.Duration {
	return time.Duration(c.CancelCutoffHours) * time.Hour
}

func (c PaymentConfig) Delay() time.Duration {
	return time.Duration(c.DelayMs) * time.Millisecond
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "movie-booking")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("APP_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SESSION_EXPIRY_HOURS", 24)
	viper.SetDefault("SESSION_CLEANUP_INTERVAL_MINUTES", 60)
	viper.SetDefault("BOOKING_MAX_SEATS", 10)
	viper.SetDefault("BOOKING_HOLD_MINUTES", 10)
	viper.SetDefault("BOOKING_CANCEL_CUTOFF_HOURS", 2)
	viper.SetDefault("BOOKING_REFUND_PERCENT", 90)
	viper.SetDefault("BOOKING_HOLD_SWEEP_INTERVAL_SEC", 30)
	viper.SetDefault("PAYMENT_DELAY_MS", 1500)
	viper.SetDefault("PAYMENT_FAILURE_RATE", 0)

	// .env opsional, env variable tetap dibaca
	if _, err := os.Stat(".env"); err == nil {
		if err := viper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:     viper.GetString("APP_NAME"),
			Port:     viper.GetString("PORT"),
			Debug:    viper.GetBool("DEBUG"),
			LogPath:  viper.GetString("LOG_PATH"),
			Timezone: viper.GetString("APP_TIMEZONE"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Session: SessionConfig{
			ExpiryHours:            viper.GetInt("SESSION_EXPIRY_HOURS"),
			CleanupIntervalMinutes: viper.GetInt("SESSION_CLEANUP_INTERVAL_MINUTES"),
		},
		Booking: BookingConfig{
			MaxSeats:             viper.GetInt("BOOKING_MAX_SEATS"),
			HoldMinutes:          viper.GetInt("BOOKING_HOLD_MINUTES"),
			CancelCutoffHours:    viper.GetInt("BOOKING_CANCEL_CUTOFF_HOURS"),
			RefundPercent:        viper.GetInt("BOOKING_REFUND_PERCENT"),
			HoldSweepIntervalSec: viper.GetInt("BOOKING_HOLD_SWEEP_INTERVAL_SEC"),
		},
		Payment: PaymentConfig{
			DelayMs:     viper.GetInt("PAYMENT_DELAY_MS"),
			FailureRate: viper.GetFloat64("PAYMENT_FAILURE_RATE"),
		},
	}

	return config, nil
}

// DefaultBookingConfig dipakai test dan client fallback
func DefaultBookingConfig() BookingConfig {
	return BookingConfig{
		MaxSeats:             10,
		HoldMinutes:          10,
		CancelCutoffHours:    2,
		RefundPercent:        90,
		HoldSweepIntervalSec: 30,
	}
}
