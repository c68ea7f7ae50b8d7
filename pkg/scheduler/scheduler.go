package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Task dijalankan dengan context yang timeout-nya sama dengan interval job
type Task func(ctx context.Context) error

type Scheduler struct {
	cron   gocron.Scheduler
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

func New(loc *time.Location, log *zap.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}

	cron, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron,
		ctx:    ctx,
		cancel: cancel,
		log:    log.With(zap.String("component", "scheduler")),
	}, nil
}

// Every daftar job dengan interval tetap. Run yang masih jalan tidak ditumpuk.
func (s *Scheduler) Every(name string, every time.Duration, task Task) error {
	if every <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}

	_, err := s.cron.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(s.run, name, every, task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}

	s.log.Info("Job registered", zap.String("job", name), zap.Duration("every", every))
	return nil
}

func (s *Scheduler) run(name string, every time.Duration, task Task) {
	ctx, cancel := context.WithTimeout(s.ctx, every)
	defer cancel()

	start := time.Now()
	if err := task(ctx); err != nil {
		s.log.Error("Job failed", zap.String("job", name), zap.Error(err))
		return
	}
	s.log.Debug("Job finished", zap.String("job", name), zap.Duration("duration", time.Since(start)))
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started", zap.Int("jobs", len(s.cron.Jobs())))
}

func (s *Scheduler) Shutdown() error {
	s.cancel()
	return s.cron.Shutdown()
}
