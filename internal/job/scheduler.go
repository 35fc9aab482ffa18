// 文件路径: internal/job/scheduler.go
// 模块说明: robfig/cron 调度器：秒级表达式、UTC、单任务不重入、超时与指标。
package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/HardPulse/mazpan/internal/telemetry"
)

// Runnable is a unit of background work.
type Runnable interface {
	Name() string
	Run(ctx context.Context) error
}

// DefaultJobTimeout bounds a single job run.
const DefaultJobTimeout = 10 * time.Minute

// Scheduler runs Runnables on cron specs.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	running bool
}

// NewScheduler accepts 5- or 6-field specs and descriptors such as @daily or @every 6h.
// A run still in progress makes the next tick of the same entry a no-op.
func NewScheduler(logger *slog.Logger, timeout time.Duration) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger:  logger.With("component", "scheduler"),
		timeout: timeout,
	}
}

// Register schedules r on spec.
func (s *Scheduler) Register(spec string, r Runnable) (cron.EntryID, error) {
	switch {
	case r == nil:
		return 0, fmt.Errorf("scheduler: job is required / 任务不能为空")
	case spec == "":
		return 0, fmt.Errorf("scheduler: spec is required / spec 不能为空")
	}
	id, err := s.cron.AddFunc(spec, func() { _ = s.RunNow(context.Background(), r) })
	if err != nil {
		return 0, fmt.Errorf("scheduler: register %s on %q: %w", r.Name(), spec, err)
	}
	s.logger.Info("job registered", "job", r.Name(), "spec", spec)
	return id, nil
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Start begins firing registered jobs. Calling it twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	s.logger.Info("scheduler started", "jobs", s.Entries())
}

// Stop halts the schedule. The returned context is done once running jobs return.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	s.running = false
	return s.cron.Stop()
}

// RunNow runs r once under the scheduler timeout and records the outcome.
func (s *Scheduler) RunNow(ctx context.Context, r Runnable) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	name := r.Name()
	start := time.Now()
	err := r.Run(ctx)
	elapsed := time.Since(start)

	telemetry.JobRuns.WithLabelValues(name, telemetry.Outcome(err)).Inc()
	telemetry.JobDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	if err != nil {
		s.logger.Error("job failed", "job", name, "elapsed", elapsed, "error", err)
		return err
	}
	s.logger.Info("job completed", "job", name, "elapsed", elapsed)
	return nil
}
