package models

import (
	"time"

	"gorm.io/datatypes"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusAbandoned JobStatus = "abandoned"
)

// Terminal reports whether no further transition may leave s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusAbandoned
}

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusSucceeded, JobStatusFailed, JobStatusAbandoned:
		return true
	}
	return false
}

type Job struct {
	ID          string         `gorm:"primaryKey"`
	Kind        string         `gorm:"not null"`
	Payload     datatypes.JSON `gorm:"not null"`
	Status      JobStatus      `gorm:"not null"`
	Attempts    int            `gorm:"not null"`
	AvailableAt time.Time      `gorm:"not null"`
	LastError   string
	WorkerID    string
	ClaimedAt   *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}
