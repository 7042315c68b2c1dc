package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/joshu-sajeev/pingcrm/internal/dto"
	"github.com/joshu-sajeev/pingcrm/internal/queue"
)

// RegisterBuiltins binds the handlers for every job kind this service
// dispatches.
func RegisterBuiltins(reg *queue.Registry, logger *slog.Logger) {
	queue.Handle(reg, func(ctx context.Context, job dto.MyJob) error {
		// Simulate some work
		select {
		case <-time.After(100 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}

		logger.InfoContext(ctx, "my job done", slog.Int("n", job.N))
		return nil
	})

	queue.Handle(reg, func(ctx context.Context, job dto.EchoJob) error {
		logger.InfoContext(ctx, "echo", slog.Int("n", job.N))
		return nil
	})
}
