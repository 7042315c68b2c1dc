package job

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshu-sajeev/pingcrm/common"
	"github.com/joshu-sajeev/pingcrm/internal/dto"
	"github.com/joshu-sajeev/pingcrm/middleware"
)

type JobHandler struct {
	service JobServiceInterface
}

func NewJobHandler(s JobServiceInterface) *JobHandler {
	return &JobHandler{service: s}
}

var _ JobHandlerInterface = (*JobHandler)(nil)

// Queue handles GET /job. The response is sent once the job is stored,
// regardless of when it runs.
func (h *JobHandler) Queue(c *gin.Context) {
	if _, err := h.service.QueueMyJob(c.Request.Context()); err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.String(http.StatusOK, "Queued")
}

// Create handles HTTP requests for enqueueing a job of any accepted kind.
// It validates and binds the request body and returns HTTP 201 with the
// new job's id.
func (h *JobHandler) Create(c *gin.Context) {
	var req dto.JobCreateDTO

	if !middleware.Bind(c, &req) {
		c.Abort()
		return
	}

	id, err := h.service.CreateJob(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusCreated, dto.JobCreatedDTO{ID: id})
}

// Get handles HTTP requests to fetch a job by its ID.
func (h *JobHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.Error(common.Errf(http.StatusBadRequest, "invalid ID"))
		return
	}

	resp, err := h.service.GetJobByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// List handles HTTP requests to list jobs, optionally filtered by status
// and kind.
func (h *JobHandler) List(c *gin.Context) {
	var q dto.JobListQuery
	if !middleware.BindQuery(c, &q) {
		return
	}

	jobs, err := h.service.ListJobs(c.Request.Context(), q)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}
