package job

import (
	"context"
	"net/http"
	"time"

	"github.com/joshu-sajeev/pingcrm/common"
	"github.com/joshu-sajeev/pingcrm/internal/dto"
	"github.com/joshu-sajeev/pingcrm/internal/models"
	"github.com/joshu-sajeev/pingcrm/internal/queue"
)

type JobService struct {
	dispatcher JobDispatcher
	reader     JobReader
	clock      queue.Clock
}

func NewJobService(dispatcher JobDispatcher, reader JobReader) *JobService {
	return &JobService{dispatcher: dispatcher, reader: reader, clock: queue.SystemClock()}
}

var _ JobServiceInterface = (*JobService)(nil)

// QueueMyJob dispatches MyJob{N: 1}. It returns as soon as the job is
// stored; no worker is involved.
func (s *JobService) QueueMyJob(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", common.ErrRequestTimeout
	}
	return s.dispatcher.Dispatch(ctx, dto.MyJob{N: 1})
}

// CreateJob validates the payload for its kind and enqueues it, delayed by
// DelaySeconds.
func (s *JobService) CreateJob(ctx context.Context, req *dto.JobCreateDTO) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", common.ErrRequestTimeout
	}

	check, ok := payloadValidators[req.Kind]
	if !ok {
		return "", common.NewAPIError(
			http.StatusBadRequest,
			"invalid job kind",
			map[string]any{
				"provided": req.Kind,
				"allowed":  allowedKinds(),
			},
		)
	}

	if err := check(req.Payload); err != nil {
		return "", err
	}

	at := s.clock.Now().Add(time.Duration(req.DelaySeconds) * time.Second)
	return s.dispatcher.DispatchRawAt(ctx, req.Kind, req.Payload, at)
}

func (s *JobService) GetJobByID(ctx context.Context, id string) (*dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.ErrRequestTimeout
	}

	job, err := s.reader.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := dto.NewJobResponse(job)
	return &resp, nil
}

func (s *JobService) ListJobs(ctx context.Context, q dto.JobListQuery) ([]dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.ErrRequestTimeout
	}

	limit := q.Limit
	if limit == 0 {
		limit = 50
	}

	jobs, err := s.reader.List(ctx, queue.Filter{
		Status: models.JobStatus(q.Status),
		Kind:   q.Kind,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	dtos := make([]dto.JobResponseDTO, len(jobs))
	for i := range jobs {
		dtos[i] = dto.NewJobResponse(&jobs[i])
	}
	return dtos, nil
}
