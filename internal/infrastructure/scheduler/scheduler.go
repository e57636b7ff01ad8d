// Package scheduler runs the storefront's periodic background jobs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrInvalidJob is returned by Add for a job without a name, interval or func
var ErrInvalidJob = errors.New("invalid scheduler job")

// Job is a function run every Interval. Runs of one job never overlap; a
// run that outlasts the interval delays the next tick.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
	// RunOnStart runs the job immediately instead of after one interval
	RunOnStart bool
}

// Scheduler runs jobs until stopped
type Scheduler struct {
	jobs       []Job
	jobTimeout time.Duration
	logger     *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// New creates a scheduler; jobTimeout bounds each run
func New(jobTimeout time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if jobTimeout <= 0 {
		jobTimeout = 2 * time.Minute
	}
	return &Scheduler{jobTimeout: jobTimeout, logger: logger}
}

// Add registers a job. Jobs added after Start wait for the next Start.
func (s *Scheduler) Add(job Job) error {
	if job.Name == "" || job.Interval <= 0 || job.Run == nil {
		return fmt.Errorf("%w: %q", ErrInvalidJob, job.Name)
	}
	s.mu.Lock()
	s.jobs = append(s.jobs, job)
	s.mu.Unlock()
	return nil
}

// Start launches one goroutine per job
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, s.cancel = context.WithCancel(ctx)
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
	}

	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)))
	return nil
}

// Stop cancels running jobs and waits for them until ctx ends
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether Start has been called without Stop
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()

	if job.RunOnStart {
		s.execute(ctx, job)
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("job loop stopping", zap.String("job", job.Name))
			return
		case <-ticker.C:
			s.execute(ctx, job)
		}
	}
}

// execute runs one job with a timeout; a panic is logged as a failure
func (s *Scheduler) execute(ctx context.Context, job Job) {
	ctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	start := time.Now()
	var err error
	telemetry.WithProfileLabels(ctx, func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job panicked: %v", r)
			}
		}()
		err = job.Run(ctx)
	}, "job", job.Name)

	if err != nil {
		s.logger.Error("scheduled job failed",
			zap.String("job", job.Name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return
	}
	s.logger.Debug("scheduled job finished",
		zap.String("job", job.Name),
		zap.Duration("duration", time.Since(start)))
}
