package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joshu-sajeev/pingcrm/internal/backoff"
	"github.com/joshu-sajeev/pingcrm/internal/models"
	"github.com/joshu-sajeev/pingcrm/internal/queue"
)

type Config struct {
	PollInterval     time.Duration
	ExecutionTimeout time.Duration
	Policy           backoff.Policy
}

type Option func(*Worker)

func WithClock(c queue.Clock) Option {
	return func(w *Worker) { w.clock = c }
}

func WithObserver(o queue.Observer) Option {
	return func(w *Worker) { w.observer = o }
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Worker) { w.logger = l }
}

// Worker claims jobs from the store one at a time and runs them through the
// registry. Workers share nothing but the store.
type Worker struct {
	ID       string
	store    queue.Store
	registry *queue.Registry
	cfg      Config
	clock    queue.Clock
	observer queue.Observer
	logger   *slog.Logger

	quit     chan struct{}
	stopOnce sync.Once
}

func NewWorker(id string, store queue.Store, registry *queue.Registry, cfg Config, opts ...Option) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}

	w := &Worker{
		ID:       id,
		store:    store,
		registry: registry,
		cfg:      cfg,
		clock:    queue.SystemClock(),
		observer: queue.NopObserver(),
		logger:   slog.Default(),
		quit:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(slog.String("worker_id", id))
	return w
}

// Run polls until ctx is done or Stop is called. A job already claimed is
// always run to completion and recorded before Run returns.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker started")
	defer w.logger.Info("worker stopped")

	for {
		select {
		case <-w.quit:
			return
		case <-ctx.Done():
			return
		default:
		}

		worked, err := w.RunOnce(ctx)
		if err != nil && ctx.Err() == nil {
			w.logger.Error("worker iteration failed", slog.Any("error", err))
		}
		if worked {
			continue
		}

		select {
		case <-time.After(w.cfg.PollInterval):
		case <-w.quit:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop makes Run return after the job in flight, if any, is recorded.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.quit) })
}

// RunOnce claims and processes at most one job. It reports whether a job
// was claimed.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, err := w.store.ClaimNext(ctx, w.ID, w.clock.Now())
	if err != nil {
		return false, fmt.Errorf("claim job: %w", err)
	}
	if job == nil {
		return false, nil
	}

	w.observer.JobClaimed(job.Kind)
	w.logger.Debug("job claimed",
		slog.String("job_id", job.ID),
		slog.String("kind", job.Kind),
		slog.Int("attempt", job.Attempts),
	)

	started := time.Now()
	execErr := w.execute(ctx, job)
	return true, w.record(ctx, job, execErr, time.Since(started))
}

func (w *Worker) execute(ctx context.Context, job *models.Job) error {
	handler, ok := w.registry.Lookup(job.Kind)
	if !ok {
		return &queue.ExecutionError{Kind: job.Kind, Err: queue.ErrUnknownKind}
	}

	// The job outlives shutdown of the polling loop; only the execution
	// timeout bounds it.
	ctx = context.WithoutCancel(ctx)
	var cancel context.CancelFunc
	if w.cfg.ExecutionTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, w.cfg.ExecutionTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	result := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("panic: %v", r)
			}
		}()
		result <- handler(ctx, json.RawMessage(job.Payload))
	}()

	var err error
	select {
	case err = <-result:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err == nil {
		return nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &queue.ExecutionError{Kind: job.Kind, Err: queue.ErrTimeout}
	}

	var serr *queue.SerializationError
	if errors.As(err, &serr) {
		return err
	}
	return &queue.ExecutionError{Kind: job.Kind, Err: err}
}

// record persists the outcome of one execution. It runs detached from ctx
// cancellation so a shutdown never leaves an executed job in running.
func (w *Worker) record(ctx context.Context, job *models.Job, execErr error, elapsed time.Duration) error {
	ctx = context.WithoutCancel(ctx)
	log := w.logger.With(
		slog.String("job_id", job.ID),
		slog.String("kind", job.Kind),
		slog.Int("attempt", job.Attempts),
	)

	if execErr == nil {
		if err := w.store.MarkSucceeded(ctx, job.ID); err != nil {
			return fmt.Errorf("record success of %s: %w", job.ID, err)
		}
		w.observer.JobSucceeded(job.Kind, elapsed)
		log.Info("job succeeded", slog.Duration("elapsed", elapsed))
		return nil
	}

	if queue.IsRetryable(execErr) {
		if delay, ok := w.cfg.Policy.NextDelay(job.Attempts); ok {
			next := w.clock.Now().Add(delay)
			if err := w.store.MarkFailed(ctx, job.ID, execErr.Error(), &next); err != nil {
				return fmt.Errorf("record retry of %s: %w", job.ID, err)
			}
			w.observer.JobRetried(job.Kind, elapsed)
			log.Warn("job failed, retry scheduled",
				slog.Any("error", execErr),
				slog.Duration("backoff", delay),
				slog.Time("available_at", next),
			)
			return nil
		}
	}

	if err := w.store.MarkFailed(ctx, job.ID, execErr.Error(), nil); err != nil {
		return fmt.Errorf("record abandonment of %s: %w", job.ID, err)
	}
	w.observer.JobAbandoned(job.Kind, elapsed)
	log.Error("job abandoned", slog.Any("error", execErr))
	return nil
}
