package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/i474232898/smart-mirror/internal/metrics"
	"github.com/rs/zerolog"
)

// Job is a widget refresh that runs at a fixed rate.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs the mirror's fixed-rate widget jobs (clock, quote of the day).
type Scheduler struct {
	scheduler *gocron.Scheduler
	jobs      []Job
}

// New creates a new Scheduler. loc is the zone gocron schedules in.
func New(loc *time.Location, jobs ...Job) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		jobs:      jobs,
	}
}

// Start schedules every job and starts the underlying scheduler. Jobs run
// once immediately, then at their interval; a slow run is never overlapped.
func (s *Scheduler) Start(ctx context.Context) error {
	log := zerolog.Ctx(ctx)

	if len(s.jobs) == 0 {
		log.Info().Msg("scheduler: no widget jobs configured; nothing to schedule")
		return nil
	}

	for _, job := range s.jobs {
		if job.Interval <= 0 {
			return fmt.Errorf("scheduler: job %q has no interval", job.Name)
		}

		_, err := s.scheduler.Every(job.Interval).SingletonMode().Do(func() {
			err := job.Run(ctx)
			metrics.RecordWidgetJob(job.Name, err)
			if err != nil {
				log.Error().Err(err).Str("job", job.Name).Msg("scheduler: widget job failed")
			}
		})
		if err != nil {
			return fmt.Errorf("scheduler: failed to schedule %q: %w", job.Name, err)
		}
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
