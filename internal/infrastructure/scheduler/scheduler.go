package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/velronatechnologies/Ticpin-website-sub002/pkg/logger"
)

// Job is a unit of scheduled work
type Job struct {
	Name     string
	Schedule string
	Run      func()
}

// Scheduler runs jobs on six-field cron schedules in UTC
type Scheduler struct {
	cron   *cron.Cron
	logger logger.Logger
}

// NewScheduler creates a scheduler with second-level precision
func NewScheduler(logger logger.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		logger: logger,
	}
}

// Add registers a job. Jobs with an empty schedule are disabled and skipped.
func (s *Scheduler) Add(job Job) error {
	if job.Schedule == "" || job.Run == nil {
		s.logger.Info("Scheduled job disabled", "job", job.Name)
		return nil
	}

	_, err := s.cron.AddFunc(job.Schedule, func() {
		defer s.recoverJobPanic(job.Name)

		start := time.Now()
		job.Run()
		s.logger.Debug("Scheduled job finished", "job", job.Name, "duration", time.Since(start).String())
	})
	if err != nil {
		return fmt.Errorf("failed to register job %s with schedule %q: %w", job.Name, job.Schedule, err)
	}

	s.logger.Info("Scheduled job registered", "job", job.Name, "schedule", job.Schedule)
	return nil
}

// Len returns the number of registered jobs
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler stopped before running jobs finished")
	}
}

func (s *Scheduler) recoverJobPanic(name string) {
	if recovered := recover(); recovered != nil {
		s.logger.Error("Scheduled job panic recovered", "job", name, "panic", recovered)
	}
}
