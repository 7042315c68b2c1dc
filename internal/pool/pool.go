package pool

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/joshu-sajeev/pingcrm/internal/queue"
	"github.com/joshu-sajeev/pingcrm/internal/worker"
)

type Config struct {
	Workers int
	Worker  worker.Config

	// LeaseTimeout is how long a job may stay running before the janitor
	// returns it to pending. Zero disables the janitor.
	LeaseTimeout    time.Duration
	JanitorInterval time.Duration
}

type Option func(*WorkerPool)

func WithClock(c queue.Clock) Option {
	return func(p *WorkerPool) { p.clock = c }
}

func WithObserver(o queue.Observer) Option {
	return func(p *WorkerPool) { p.observer = o }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *WorkerPool) { p.logger = l }
}

// WithIDPrefix sets the prefix of worker ids. Defaults to hostname-pid.
func WithIDPrefix(prefix string) Option {
	return func(p *WorkerPool) { p.idPrefix = prefix }
}

type WorkerPool struct {
	workers  []*worker.Worker
	store    queue.Store
	cfg      Config
	clock    queue.Clock
	observer queue.Observer
	logger   *slog.Logger
	idPrefix string

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewWorkerPool(store queue.Store, registry *queue.Registry, cfg Config, opts ...Option) *WorkerPool {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.LeaseTimeout > 0 && cfg.JanitorInterval <= 0 {
		cfg.JanitorInterval = min(cfg.LeaseTimeout/2, 30*time.Second)
	}

	host, _ := os.Hostname()
	p := &WorkerPool{
		store:    store,
		cfg:      cfg,
		clock:    queue.SystemClock(),
		observer: queue.NopObserver(),
		logger:   slog.Default(),
		idPrefix: fmt.Sprintf("%s-%d", host, os.Getpid()),
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := 1; i <= cfg.Workers; i++ {
		p.workers = append(p.workers, worker.NewWorker(
			fmt.Sprintf("%s-%d", p.idPrefix, i),
			store,
			registry,
			cfg.Worker,
			worker.WithClock(p.clock),
			worker.WithObserver(p.observer),
			worker.WithLogger(p.logger),
		))
	}
	return p
}

func (p *WorkerPool) Workers() []*worker.Worker { return p.workers }

// Start launches every worker, plus the lease janitor when enabled. It
// returns immediately.
func (p *WorkerPool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *worker.Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}

	if p.cfg.LeaseTimeout > 0 {
		p.wg.Add(1)
		go p.janitor(ctx)
	}

	p.logger.Info("worker pool started",
		slog.Int("workers", len(p.workers)),
		slog.Duration("lease_timeout", p.cfg.LeaseTimeout),
	)
}

func (p *WorkerPool) janitor(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := p.RequeueStale(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("requeue stale jobs", slog.Any("error", err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// RequeueStale returns jobs running for longer than the lease timeout to
// pending. Their original worker may still finish them, so such a job can
// execute twice.
func (p *WorkerPool) RequeueStale(ctx context.Context) (int64, error) {
	now := p.clock.Now()
	n, err := p.store.RequeueStale(ctx, now.Add(-p.cfg.LeaseTimeout), now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		p.logger.Warn("requeued stale jobs", slog.Int64("count", n))
	}
	return n, nil
}

// Stop stops claiming new jobs and waits for in-flight jobs to be recorded,
// or for ctx to be done, whichever comes first.
func (p *WorkerPool) Stop(ctx context.Context) error {
	for _, w := range p.workers {
		w.Stop()
	}
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop worker pool: %w", ctx.Err())
	}
}
