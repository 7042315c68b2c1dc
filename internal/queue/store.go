package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/joshu-sajeev/pingcrm/internal/models"
)

// Store is the durable, concurrency-safe record of jobs. Every mutation of a
// job goes through it.
type Store interface {
	// Insert creates a pending job and returns its id.
	Insert(ctx context.Context, kind string, payload json.RawMessage, availableAt time.Time) (string, error)

	// ClaimNext atomically moves the oldest eligible pending job to running
	// and increments its attempts. It returns nil when nothing is eligible.
	ClaimNext(ctx context.Context, workerID string, now time.Time) (*models.Job, error)

	// MarkSucceeded moves a running job to succeeded. It is a no-op for a
	// job that already succeeded.
	MarkSucceeded(ctx context.Context, id string) error

	// MarkFailed records errMsg and moves a running job back to pending at
	// next, or to abandoned when next is nil.
	MarkFailed(ctx context.Context, id string, errMsg string, next *time.Time) error

	Get(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, f Filter) ([]models.Job, error)
	CountByStatus(ctx context.Context) (map[models.JobStatus]int64, error)

	// RequeueStale returns running jobs claimed before cutoff to pending.
	// The original claimer may still be executing them.
	RequeueStale(ctx context.Context, cutoff, now time.Time) (int64, error)
}

type Filter struct {
	Status models.JobStatus
	Kind   string
	Limit  int
}
