// Package scheduler triggers periodic corpus reloads.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/okian/dueline/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ErrInvalidCron is returned by New for an unparseable cron expression.
var ErrInvalidCron = errors.New("invalid cron expression")

// ReloadFunc is what the scheduler runs on each tick.
type ReloadFunc func(ctx context.Context) error

// Scheduler runs a reload either every interval or on a cron expression.
// With neither configured it is disabled and Start is a no-op.
type Scheduler struct {
	s        gocron.Scheduler
	reload   ReloadFunc
	interval time.Duration
	cron     string
	location *time.Location
	logger   logger.Logger
}

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithInterval reloads every d.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithCron reloads on a standard five-field cron expression. It takes
// precedence over WithInterval.
func WithCron(expr string) Option {
	return func(s *Scheduler) {
		s.cron = expr
	}
}

// WithLocation sets the time zone cron expressions are evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithLogger sets a custom logger for the scheduler.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a scheduler for reload.
func New(reload ReloadFunc, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{reload: reload, location: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("scheduler")
	}
	if s.cron != "" {
		if _, err := cron.ParseStandard(s.cron); err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidCron, s.cron, err)
		}
	}

	gs, err := gocron.NewScheduler(gocron.WithLocation(s.location))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	s.s = gs
	return s, nil
}

// Enabled reports whether a schedule is configured.
func (s *Scheduler) Enabled() bool {
	return s.cron != "" || s.interval > 0
}

// Start registers the reload job and starts ticking. Reloads run with ctx
// and never overlap: a tick that finds the previous run still going is
// skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.Enabled() {
		s.logger.Info(ctx, "scheduled reload disabled")
		return nil
	}

	def := gocron.DurationJob(s.interval)
	schedule := s.interval.String()
	if s.cron != "" {
		def = gocron.CronJob(s.cron, false)
		schedule = s.cron
	}

	_, err := s.s.NewJob(def,
		gocron.NewTask(func() { s.run(ctx) }),
		gocron.WithName("corpus-reload"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create reload job: %w", err)
	}

	s.s.Start()
	s.logger.Info(ctx, "scheduled reload started", logger.String("schedule", schedule))
	return nil
}

// Stop shuts the scheduler down, waiting for a running reload to finish.
func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := s.reload(ctx); err != nil {
		s.logger.Error(ctx, "scheduled reload failed", logger.Error(err))
		return
	}
	s.logger.Debug(ctx, "scheduled reload finished", logger.Duration("took", time.Since(start)))
}
