// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"movie-booking/cmd"
	"movie-booking/internal/data/cache"
	"movie-booking/internal/data/repository"
	"movie-booking/internal/event"
	"movie-booking/internal/usecase"
	"movie-booking/internal/wire"
	"movie-booking/pkg/database"
	"movie-booking/pkg/scheduler"
	"movie-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.String("timezone", config.App.Location().String()),
	)

	// Connect to database
	db, err := database.InitDB(ctx, config.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Redis opsional: tanpa REDIS_ADDR hold kursi dan event bus hanya di proses ini
	var (
		redisClient *redis.Client
		holds       cache.SeatHoldStore
		memHolds    *cache.MemorySeatHoldStore
		busOpts     event.Options
	)
	if config.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err), zap.String("addr", config.Redis.Addr))
		}

		holds = cache.NewRedisSeatHoldStore(redisClient, logger)
		busOpts.Redis = redisClient
		logger.Info("Redis connected", zap.String("addr", config.Redis.Addr))
	} else {
		memHolds = cache.NewMemorySeatHoldStore()
		holds = memHolds
		logger.Info("Redis not configured, using in-memory seat holds")
	}

	bus, err := event.NewBus(busOpts, logger)
	if err != nil {
		logger.Fatal("Failed to create event bus", zap.Error(err))
	}
	defer bus.Close()

	// Wire all dependencies
	app := wire.Wiring(repos, config, usecase.Deps{Holds: holds, Events: bus}, bus, logger)

	if err := bus.AddHandler("notifications", app.Service.Notification.HandleBookingsChanged); err != nil {
		logger.Fatal("Failed to register notification handler", zap.Error(err))
	}
	go func() {
		if err := bus.Run(ctx); err != nil {
			logger.Error("Event router stopped", zap.Error(err))
		}
	}()
	<-bus.Running()

	// Background jobs
	jobs, err := scheduler.New(config.App.Location(), logger)
	if err != nil {
		logger.Fatal("Failed to create scheduler", zap.Error(err))
	}
	if err := registerJobs(jobs, config, app.Service, memHolds, logger); err != nil {
		logger.Fatal("Failed to register jobs", zap.Error(err))
	}
	jobs.Start()
	defer func() {
		if err := jobs.Shutdown(); err != nil {
			logger.Warn("Scheduler shutdown", zap.Error(err))
		}
	}()

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))
	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("HTTP server stopped", zap.Error(err))
	}
	logger.Info("Application stopped")
}

func registerJobs(jobs *scheduler.Scheduler, config *utils.Config, service *usecase.Service, memHolds *cache.MemorySeatHoldStore, logger *zap.Logger) error {
	sessionEvery := time.Duration(config.Session.CleanupIntervalMinutes) * time.Minute
	err := jobs.Every("session_cleanup", sessionEvery, func(ctx context.Context) error {
		n, err := service.Auth.CleanupSessions(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("Expired sessions removed", zap.Int64("count", n))
		}
		return nil
	})
	if err != nil {
		return err
	}

	// redis menghapus hold lewat TTL sendiri
	if memHolds == nil {
		return nil
	}
	sweepEvery := time.Duration(config.Booking.HoldSweepIntervalSec) * time.Second
	return jobs.Every("seat_hold_sweep", sweepEvery, func(context.Context) error {
		if n := memHolds.Sweep(); n > 0 {
			logger.Debug("Expired seat holds swept", zap.Int("count", n))
		}
		return nil
	})
}
