package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"emojisaic/internal/config"
	"emojisaic/internal/jobs"
	"emojisaic/internal/logging"
	"emojisaic/internal/services"
)

const defaultPollInterval = 500 * time.Millisecond

// Executor runs one claimed job to completion.
type Executor interface {
	Run(ctx context.Context, job *jobs.Job) error
}

// Runner processes queued jobs sequentially. It holds a lock file inside the
// staging directory for its lifetime; two runners must never share a staging
// area.
type Runner struct {
	cfg          *config.Config
	store        *jobs.Store
	executor     Executor
	logger       *slog.Logger
	pollInterval time.Duration

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option adjusts runner construction.
type Option func(*Runner)

// WithPollInterval overrides the idle poll interval.
func WithPollInterval(interval time.Duration) Option {
	return func(r *Runner) {
		if interval > 0 {
			r.pollInterval = interval
		}
	}
}

// New constructs a runner over the given collaborators.
func New(cfg *config.Config, store *jobs.Store, executor Executor, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := filepath.Join(cfg.Paths.StagingDir, "emojisaic.lock")
	runner := &Runner{
		cfg:          cfg,
		store:        store,
		executor:     executor,
		logger:       logging.NewComponentLogger(logger, "runner"),
		pollInterval: defaultPollInterval,
		lockPath:     lockPath,
		lock:         flock.New(lockPath),
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Start acquires the staging lock and begins background processing.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return errors.New("runner already running")
	}

	if err := r.acquireLock(); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.wg.Add(1)
	go r.run(runCtx)

	r.logger.Info("runner started", logging.String("lock", r.lockPath))
	return nil
}

// Stop terminates background processing, waits for the in-flight job, and
// releases the staging lock.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	cancel()
	r.wg.Wait()
	r.releaseLock()
	r.logger.Info("runner stopped")
}

// Drain synchronously processes pending jobs until none remain. It acquires
// the staging lock for the duration of the drain.
func (r *Runner) Drain(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return errors.New("runner already running")
	}
	if err := r.acquireLock(); err != nil {
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()
	defer r.releaseLock()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		job, err := r.store.NextPending(ctx)
		if err != nil {
			return err
		}
		if job == nil {
			return nil
		}
		r.process(ctx, job)
	}
}

func (r *Runner) acquireLock() error {
	ok, err := r.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire staging lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("staging directory %s is in use by another runner", r.cfg.Paths.StagingDir)
	}
	return nil
}

func (r *Runner) releaseLock() {
	if err := r.lock.Unlock(); err != nil {
		r.logger.Warn("failed to release staging lock", logging.Error(err))
	}
}

func (r *Runner) run(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := r.store.NextPending(ctx)
		if err != nil {
			r.logger.Warn("failed to claim next job", logging.Error(err))
			r.waitForJobOrShutdown(ctx)
			continue
		}
		if job == nil {
			r.waitForJobOrShutdown(ctx)
			continue
		}

		r.process(ctx, job)
		if ctx.Err() != nil {
			return
		}
	}
}

func (r *Runner) waitForJobOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(r.pollInterval):
	}
}

// process runs one job and writes its terminal status. A canceled context
// leaves the job failed so a later run does not silently resume it.
func (r *Runner) process(ctx context.Context, job *jobs.Job) {
	ctx = services.WithJobID(ctx, job.ID)
	logger := logging.WithContext(ctx, r.logger).With(
		logging.String("kind", string(job.Kind)),
	)
	logger.Info("job started", logging.String("source", job.SourcePath))

	if err := r.executor.Run(ctx, job); err != nil {
		logger.Error("job failed", logging.Error(err))
		if markErr := r.store.MarkFailed(context.WithoutCancel(ctx), job.ID, err.Error()); markErr != nil {
			logger.Warn("failed to record job failure", logging.Error(markErr))
		}
		return
	}

	job.Status = jobs.StatusCompleted
	job.SetProgress("Completed", 100)
	if err := r.store.Update(ctx, job); err != nil {
		logger.Warn("failed to record job completion", logging.Error(err))
		return
	}
	logger.Info("job completed", logging.String("output", job.OutputPath))
}
