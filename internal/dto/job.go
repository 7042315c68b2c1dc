package dto

import (
	"encoding/json"
	"time"

	"github.com/joshu-sajeev/pingcrm/internal/models"
)

type JobCreateDTO struct {
	Kind         string          `json:"kind" validate:"required,max=100"`
	Payload      json.RawMessage `json:"payload" validate:"required"`
	DelaySeconds int             `json:"delay_seconds" validate:"gte=0,lte=2592000"`
}

type JobCreatedDTO struct {
	ID string `json:"id"`
}

type JobListQuery struct {
	Status string `form:"status" validate:"omitempty,oneof=pending running succeeded failed abandoned"`
	Kind   string `form:"kind" validate:"omitempty,max=100"`
	Limit  int    `form:"limit" validate:"gte=0,lte=500"`
}

type JobResponseDTO struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Payload     json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	AvailableAt time.Time       `json:"available_at"`
	LastError   string          `json:"last_error,omitempty"`
	WorkerID    string          `json:"worker_id,omitempty"`
	ClaimedAt   *time.Time      `json:"claimed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func NewJobResponse(job *models.Job) JobResponseDTO {
	return JobResponseDTO{
		ID:          job.ID,
		Kind:        job.Kind,
		Payload:     json.RawMessage(job.Payload),
		Status:      string(job.Status),
		Attempts:    job.Attempts,
		AvailableAt: job.AvailableAt,
		LastError:   job.LastError,
		WorkerID:    job.WorkerID,
		ClaimedAt:   job.ClaimedAt,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}
}
