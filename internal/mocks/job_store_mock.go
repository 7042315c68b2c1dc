package mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/joshu-sajeev/pingcrm/internal/models"
	"github.com/joshu-sajeev/pingcrm/internal/queue"
	"github.com/stretchr/testify/mock"
)

type JobStoreMock struct {
	mock.Mock
}

var _ queue.Store = (*JobStoreMock)(nil)

func (m *JobStoreMock) Insert(ctx context.Context, kind string, payload json.RawMessage, availableAt time.Time) (string, error) {
	args := m.Called(ctx, kind, payload, availableAt)
	return args.String(0), args.Error(1)
}

func (m *JobStoreMock) ClaimNext(ctx context.Context, workerID string, now time.Time) (*models.Job, error) {
	args := m.Called(ctx, workerID, now)

	job, _ := args.Get(0).(*models.Job)
	return job, args.Error(1)
}

func (m *JobStoreMock) MarkSucceeded(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *JobStoreMock) MarkFailed(ctx context.Context, id string, errMsg string, next *time.Time) error {
	args := m.Called(ctx, id, errMsg, next)
	return args.Error(0)
}

func (m *JobStoreMock) Get(ctx context.Context, id string) (*models.Job, error) {
	args := m.Called(ctx, id)

	job, _ := args.Get(0).(*models.Job)
	return job, args.Error(1)
}

func (m *JobStoreMock) List(ctx context.Context, f queue.Filter) ([]models.Job, error) {
	args := m.Called(ctx, f)

	jobs, _ := args.Get(0).([]models.Job)
	return jobs, args.Error(1)
}

func (m *JobStoreMock) CountByStatus(ctx context.Context) (map[models.JobStatus]int64, error) {
	args := m.Called(ctx)

	counts, _ := args.Get(0).(map[models.JobStatus]int64)
	return counts, args.Error(1)
}

func (m *JobStoreMock) RequeueStale(ctx context.Context, cutoff, now time.Time) (int64, error) {
	args := m.Called(ctx, cutoff, now)
	return args.Get(0).(int64), args.Error(1)
}
