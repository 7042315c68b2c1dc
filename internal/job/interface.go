package job

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/pingcrm/internal/dto"
	"github.com/joshu-sajeev/pingcrm/internal/models"
	"github.com/joshu-sajeev/pingcrm/internal/queue"
)

// JobDispatcher enqueues jobs. *queue.Dispatcher satisfies it.
type JobDispatcher interface {
	Dispatch(ctx context.Context, desc queue.Descriptor) (string, error)
	DispatchRawAt(ctx context.Context, kind string, payload json.RawMessage, at time.Time) (string, error)
}

// JobReader reads job records. queue.Store satisfies it.
type JobReader interface {
	Get(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, f queue.Filter) ([]models.Job, error)
}

// JobServiceInterface defines the contract for job business logic operations.
type JobServiceInterface interface {
	QueueMyJob(ctx context.Context) (string, error)
	CreateJob(ctx context.Context, dto *dto.JobCreateDTO) (string, error)
	GetJobByID(ctx context.Context, id string) (*dto.JobResponseDTO, error)
	ListJobs(ctx context.Context, q dto.JobListQuery) ([]dto.JobResponseDTO, error)
}

// JobHandlerInterface defines the contract for HTTP request handlers.
type JobHandlerInterface interface {
	Queue(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
}
