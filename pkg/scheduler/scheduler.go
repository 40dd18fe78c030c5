package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is the work run on each tick.
type Task func(ctx context.Context) error

// Scheduler runs a task on a cron schedule, evaluated in UTC.
type Scheduler struct {
	spec    string
	task    Task
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// New creates a scheduler for the given cron expression. Standard five-field
// expressions and descriptors such as "@every 1h" are accepted.
func New(spec string, task Task, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		spec:   spec,
		task:   task,
		cron:   cron.New(cron.WithLocation(time.UTC)),
		logger: logger.With("component", "scheduler"),
	}
}

// Start schedules the task and returns immediately. The scheduler stops when
// ctx is cancelled. An empty schedule leaves the scheduler idle.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spec == "" {
		s.logger.Info("schedule not configured, scheduler idle")
		return nil
	}

	if _, err := cron.ParseStandard(s.spec); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.spec, err)
	}

	if _, err := s.cron.AddFunc(s.spec, func() { s.runTask(ctx) }); err != nil {
		return fmt.Errorf("schedule task: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("scheduler started", "schedule", s.spec)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) runTask(ctx context.Context) {
	s.logger.Info("scheduled run starting")
	if err := s.task(ctx); err != nil {
		s.logger.Error("scheduled run failed", "error", err)
		return
	}
	s.logger.Debug("scheduled run completed")
}

// Stop stops the scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled run time, or nil when nothing is scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
