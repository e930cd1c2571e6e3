package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"trailgo/pkg/clock"
)

// DefaultTick is used when no tick interval is configured.
const DefaultTick = 10 * time.Second

// Scheduler manages the central heartbeat and scheduled jobs.
type Scheduler struct {
	interval time.Duration
	clock    clock.Clock

	mu   sync.Mutex
	jobs []Job
	wg   sync.WaitGroup
}

// NewScheduler creates a new Scheduler that evaluates jobs every interval.
func NewScheduler(interval time.Duration, clk clock.Clock) *Scheduler {
	if interval <= 0 {
		interval = DefaultTick
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Scheduler{
		interval: interval,
		clock:    clk,
		jobs:     []Job{},
	}
}

// AddJob registers a job.
func (s *Scheduler) AddJob(j Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, j)
}

// Start runs the main loop. It blocks until context is cancelled and all
// running jobs have returned.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("Scheduler started", "interval", s.interval)

	// First evaluation happens right away, not one interval in
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			slog.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.clock.Now()

	s.mu.Lock()
	jobs := make([]Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	for _, job := range jobs {
		if job.ShouldFire(now) {
			slog.Debug("Job firing", "job", job.Name())
			s.wg.Add(1)
			go func(j Job) {
				defer s.wg.Done()
				j.Run(ctx, now)
			}(job)
		}
	}
}
