// Package scheduler runs batch assembly at fixed times of day.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/usecase"
)

const lockKey = "batch-assembly"

// ScheduleTime is a time of day in the scheduler's clock location.
type ScheduleTime struct {
	Hour   int
	Minute int
}

// String returns the time in HH:MM format.
func (st ScheduleTime) String() string {
	return fmt.Sprintf("%02d:%02d", st.Hour, st.Minute)
}

// ParseScheduleTime parses a time string in HH:MM format.
func ParseScheduleTime(s string) (ScheduleTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ScheduleTime{}, fmt.Errorf("invalid time %q (expected HH:MM)", s)
	}
	return ScheduleTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Assembler is the batch operation the scheduler triggers.
type Assembler interface {
	Assemble(ctx context.Context, target time.Time) (*domain.AssemblyResult, error)
}

// Config for Scheduler.
type Config struct {
	Assembler    Assembler
	Locker       usecase.Locker // optional; nil runs every tick locally
	Clock        usecase.Clock
	Logger       zerolog.Logger
	Times        []string
	RunOnStartup bool
	LockTTL      time.Duration
	TickInterval time.Duration
}

// Scheduler calls Assemble for today's date at each configured time.
type Scheduler struct {
	assembler    Assembler
	locker       usecase.Locker
	clock        usecase.Clock
	logger       zerolog.Logger
	times        []ScheduleTime
	runOnStartup bool
	lockTTL      time.Duration
	tick         time.Duration

	mu      sync.Mutex
	lastRun string
}

// New validates cfg and builds a Scheduler.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Assembler == nil {
		return nil, errors.New("scheduler: assembler is required")
	}

	times := make([]ScheduleTime, 0, len(cfg.Times))
	for _, raw := range cfg.Times {
		st, err := ParseScheduleTime(raw)
		if err != nil {
			return nil, fmt.Errorf("scheduler: %w", err)
		}
		times = append(times, st)
	}
	if len(times) == 0 && !cfg.RunOnStartup {
		return nil, errors.New("scheduler: at least one schedule time is required")
	}

	if cfg.Clock == nil {
		cfg.Clock = usecase.SystemClock{}
	}
	if cfg.LockTTL == 0 {
		cfg.LockTTL = 5 * time.Minute
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = 30 * time.Second
	}

	return &Scheduler{
		assembler:    cfg.Assembler,
		locker:       cfg.Locker,
		clock:        cfg.Clock,
		logger:       cfg.Logger,
		times:        times,
		runOnStartup: cfg.RunOnStartup,
		lockTTL:      cfg.LockTTL,
		tick:         cfg.TickInterval,
	}, nil
}

// Start runs until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info().
		Int("times", len(s.times)).
		Bool("run_on_startup", s.runOnStartup).
		Msg("batch scheduler started")

	if s.runOnStartup {
		s.run(ctx, s.clock.Now())
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("batch scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			now := s.clock.Now()
			if s.due(now) {
				s.run(ctx, now)
			}
		}
	}
}

// due reports whether now matches a schedule slot not yet run.
func (s *Scheduler) due(now time.Time) bool {
	for _, st := range s.times {
		if now.Hour() != st.Hour || now.Minute() != st.Minute {
			continue
		}

		key := domain.FormatDate(now) + " " + st.String()
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.lastRun == key {
			return false
		}
		s.lastRun = key
		return true
	}
	return false
}

func (s *Scheduler) run(ctx context.Context, now time.Time) {
	ran, err := s.RunOnce(ctx, now)
	switch {
	case err != nil:
		s.logger.Error().Err(err).Msg("scheduled batch assembly failed")
	case !ran:
		s.logger.Info().Msg("batch assembly lock held elsewhere, skipping")
	}
}

// RunOnce assembles everything due on now's date. It reports ran=false
// when another instance holds the lock.
func (s *Scheduler) RunOnce(ctx context.Context, now time.Time) (bool, error) {
	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, lockKey, s.lockTTL)
		if err != nil {
			// proceed without the lock
			s.logger.Warn().Err(err).Msg("batch lock unavailable, assembling anyway")
		} else if !ok {
			return false, nil
		} else {
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					s.logger.Warn().Err(err).Msg("releasing batch lock")
				}
			}()
		}
	}

	target := domain.DateOf(now)
	res, err := s.assembler.Assemble(ctx, target)
	if err != nil {
		return true, err
	}

	s.logger.Info().
		Str("target_date", domain.FormatDate(target)).
		Int("files", len(res.Files)).
		Int("entries", res.EntryCount()).
		Int("conflicts", res.Conflicts).
		Msg("scheduled batch assembly finished")

	return true, nil
}
