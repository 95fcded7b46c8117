// Package scheduler emits events on cron or interval schedules using gocron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/shaharia-lab/zephyr"
	"github.com/shaharia-lab/zephyr/internal/config"
)

// Emitter lets the scheduler emit events without depending on the concrete
// dispatcher. *zephyr.Dispatcher satisfies it.
type Emitter interface {
	EmitAsync(ctx context.Context, evt zephyr.Event) *zephyr.Handle
}

// Scheduler manages scheduled event sources using gocron.
type Scheduler struct {
	cron    gocron.Scheduler
	emitter Emitter
	jobs    map[string]uuid.UUID // source name → gocron job UUID
	mu      sync.Mutex
	logger  *slog.Logger
}

// New creates a new Scheduler.
func New(emitter Emitter, logger *slog.Logger) (*Scheduler, error) {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating gocron scheduler: %w", err)
	}

	return &Scheduler{
		cron:    cron,
		emitter: emitter,
		jobs:    make(map[string]uuid.UUID),
		logger:  logger,
	}, nil
}

// Start schedules the given sources and starts the gocron scheduler. A source
// that fails to schedule is logged and skipped; the rest keep running.
func (s *Scheduler) Start(_ context.Context, sources []config.ScheduledSource) error {
	for _, src := range sources {
		if err := s.Schedule(src); err != nil {
			s.logger.Warn("failed to schedule source on startup",
				"source", src.Name, "error", err)
		}
	}

	s.cron.Start()
	s.logger.Info("event scheduler started", "active_sources", len(s.jobs))
	return nil
}

// Stop shuts down the gocron scheduler.
func (s *Scheduler) Stop() error {
	return s.cron.Shutdown()
}

// Schedule adds or replaces a source's schedule in gocron.
func (s *Scheduler) Schedule(src config.ScheduledSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Remove existing job if any.
	if jobID, ok := s.jobs[src.Name]; ok {
		if err := s.cron.RemoveJob(jobID); err != nil {
			s.logger.Warn("failed to remove existing job", "source", src.Name, "error", err)
		}
		delete(s.jobs, src.Name)
	}

	jobDef, err := buildJobDefinition(src)
	if err != nil {
		return fmt.Errorf("building job definition for source %q: %w", src.Name, err)
	}

	source := src
	job, err := s.cron.NewJob(jobDef, gocron.NewTask(func() {
		s.fire(source)
	}))
	if err != nil {
		return fmt.Errorf("scheduling source %q: %w", src.Name, err)
	}

	s.jobs[src.Name] = job.ID()
	s.logger.Info("source scheduled", "source", src.Name, "event_type", src.EventType)
	return nil
}

// Unschedule removes a source from the gocron scheduler.
func (s *Scheduler) Unschedule(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if jobID, ok := s.jobs[name]; ok {
		if err := s.cron.RemoveJob(jobID); err != nil {
			s.logger.Warn("failed to remove job", "source", name, "error", err)
		}
		delete(s.jobs, name)
		s.logger.Info("source unscheduled", "source", name)
	}
}

// fire emits one occurrence of a scheduled source. Scheduled emissions are
// always asynchronous; outcomes surface through logs and the delivery history.
func (s *Scheduler) fire(src config.ScheduledSource) {
	evt := zephyr.NewEvent(src.EventType, src.Payload)
	s.emitter.EmitAsync(context.Background(), evt)
	s.logger.Info("scheduled event emitted",
		"source", src.Name, "event_type", src.EventType, "event_id", evt.ID)
}

// buildJobDefinition converts a source's schedule config into a gocron
// JobDefinition. Exactly one of Cron or Every must be set.
func buildJobDefinition(src config.ScheduledSource) (gocron.JobDefinition, error) {
	if src.Name == "" {
		return nil, fmt.Errorf("source name is required")
	}
	if src.EventType == "" {
		return nil, fmt.Errorf("source event_type is required")
	}

	switch {
	case src.Cron != "" && src.Every != "":
		return nil, fmt.Errorf("cron and every are mutually exclusive")

	case src.Cron != "":
		return gocron.CronJob(src.Cron, false), nil

	case src.Every != "":
		interval, err := time.ParseDuration(src.Every)
		if err != nil {
			return nil, fmt.Errorf("parsing every duration: %w", err)
		}
		if interval < time.Second {
			return nil, fmt.Errorf("every must be at least 1s, got %s", interval)
		}
		return gocron.DurationJob(interval), nil

	default:
		return nil, fmt.Errorf("either cron or every is required")
	}
}
