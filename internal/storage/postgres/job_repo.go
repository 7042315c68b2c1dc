package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joshu-sajeev/pingcrm/internal/models"
	"github.com/joshu-sajeev/pingcrm/internal/queue"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobRepository is the gorm-backed queue.Store. It works against postgres
// and sqlite; on postgres claims skip rows locked by concurrent claimers.
type JobRepository struct {
	db    *gorm.DB
	clock queue.Clock
}

type JobRepositoryOption func(*JobRepository)

func WithClock(c queue.Clock) JobRepositoryOption {
	return func(r *JobRepository) { r.clock = c }
}

func NewJobRepository(db *gorm.DB, opts ...JobRepositoryOption) *JobRepository {
	r := &JobRepository{db: db, clock: queue.SystemClock()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ queue.Store = (*JobRepository)(nil)

// Insert creates a pending job in a single statement. availableAt is never
// earlier than the record's creation time.
func (r *JobRepository) Insert(ctx context.Context, kind string, payload json.RawMessage, availableAt time.Time) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", &queue.PersistenceError{Op: "insert job", Err: err}
	}

	now := r.clock.Now().UTC()
	availableAt = availableAt.UTC()
	if availableAt.Before(now) {
		availableAt = now
	}

	job := models.Job{
		ID:          id.String(),
		Kind:        kind,
		Payload:     datatypes.JSON(payload),
		Status:      models.JobStatusPending,
		AvailableAt: availableAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := r.db.WithContext(ctx).Create(&job).Error; err != nil {
		return "", &queue.PersistenceError{Op: "insert job", Err: err}
	}
	return job.ID, nil
}

// ClaimNext selects the oldest eligible job and claims it with a
// conditional update on its status inside one transaction. If another
// claimer wins the row first, no job is returned for this call.
func (r *JobRepository) ClaimNext(ctx context.Context, workerID string, now time.Time) (*models.Job, error) {
	now = now.UTC()

	var claimed *models.Job
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidate models.Job

		q := tx.Where("status = ? AND available_at <= ?", models.JobStatusPending, now).
			Order("available_at ASC, created_at ASC, id ASC").
			Limit(1)
		if tx.Dialector.Name() == DriverPostgres {
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}

		if err := q.Take(&candidate).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		res := tx.Model(&models.Job{}).
			Where("id = ? AND status = ?", candidate.ID, models.JobStatusPending).
			Updates(map[string]any{
				"status":     models.JobStatusRunning,
				"attempts":   gorm.Expr("attempts + ?", 1),
				"worker_id":  workerID,
				"claimed_at": now,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return nil
		}

		candidate.Status = models.JobStatusRunning
		candidate.Attempts++
		candidate.WorkerID = workerID
		candidate.ClaimedAt = &now
		candidate.UpdatedAt = now
		claimed = &candidate
		return nil
	})
	if err != nil {
		return nil, &queue.PersistenceError{Op: "claim job", Err: err}
	}

	return claimed, nil
}

func (r *JobRepository) MarkSucceeded(ctx context.Context, id string) error {
	now := r.clock.Now().UTC()

	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ?", id, models.JobStatusRunning).
		Updates(map[string]any{
			"status":     models.JobStatusSucceeded,
			"updated_at": now,
		})
	if res.Error != nil {
		return &queue.PersistenceError{Op: "mark succeeded", Err: res.Error}
	}
	if res.RowsAffected == 1 {
		return nil
	}

	status, err := r.status(ctx, id)
	if err != nil {
		return err
	}
	if status == models.JobStatusSucceeded {
		return nil
	}
	return fmt.Errorf("mark succeeded %s from %s: %w", id, status, queue.ErrInvalidState)
}

func (r *JobRepository) MarkFailed(ctx context.Context, id string, errMsg string, next *time.Time) error {
	now := r.clock.Now().UTC()

	updates := map[string]any{
		"last_error": errMsg,
		"updated_at": now,
	}
	if next != nil {
		updates["status"] = models.JobStatusPending
		updates["available_at"] = next.UTC()
	} else {
		updates["status"] = models.JobStatusAbandoned
	}

	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ?", id, models.JobStatusRunning).
		Updates(updates)
	if res.Error != nil {
		return &queue.PersistenceError{Op: "mark failed", Err: res.Error}
	}
	if res.RowsAffected == 1 {
		return nil
	}

	status, err := r.status(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("mark failed %s from %s: %w", id, status, queue.ErrInvalidState)
}

func (r *JobRepository) status(ctx context.Context, id string) (models.JobStatus, error) {
	job, err := r.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return job.Status, nil
}

// Get retrieves a single job by id.
func (r *JobRepository) Get(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).Take(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job %s: %w", id, queue.ErrNotFound)
		}
		return nil, &queue.PersistenceError{Op: "get job", Err: err}
	}
	return &job, nil
}

// List returns jobs matching f, newest first.
func (r *JobRepository) List(ctx context.Context, f queue.Filter) ([]models.Job, error) {
	q := r.db.WithContext(ctx).Model(&models.Job{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var jobs []models.Job
	if err := q.Order("created_at DESC, id DESC").Find(&jobs).Error; err != nil {
		return nil, &queue.PersistenceError{Op: "list jobs", Err: err}
	}
	return jobs, nil
}

func (r *JobRepository) CountByStatus(ctx context.Context) (map[models.JobStatus]int64, error) {
	var rows []struct {
		Status models.JobStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Job{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, &queue.PersistenceError{Op: "count jobs", Err: err}
	}

	counts := make(map[models.JobStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// RequeueStale moves running jobs whose claim is older than cutoff back to
// pending, available immediately. Attempts are left as they are.
func (r *JobRepository) RequeueStale(ctx context.Context, cutoff, now time.Time) (int64, error) {
	now = now.UTC()

	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("status = ? AND claimed_at < ?", models.JobStatusRunning, cutoff.UTC()).
		Updates(map[string]any{
			"status":       models.JobStatusPending,
			"available_at": now,
			"last_error":   "lease expired",
			"updated_at":   now,
		})
	if res.Error != nil {
		return 0, &queue.PersistenceError{Op: "requeue stale jobs", Err: res.Error}
	}
	return res.RowsAffected, nil
}
