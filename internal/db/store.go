package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Job statuses as stored in video_job_statuses.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

const jobStatusTable = "video_job_statuses"

// ErrJobNotFound is returned when no record exists for a job id.
var ErrJobNotFound = errors.New("job not found")

// VideoJobStatus is one row of the job status table. Pointer and raw JSON
// fields are nullable.
type VideoJobStatus struct {
	JobID         string          `json:"job_id"`
	JobType       string          `json:"job_type"`
	Status        string          `json:"status"`
	InputPayload  json.RawMessage `json:"input_payload,omitempty"`
	OutputDetails json.RawMessage `json:"output_details,omitempty"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
	CreatedAt     time.Time       `json:"created_at,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at,omitempty"`
}

// Store persists job status records.
type Store interface {
	CreateJobRecord(ctx context.Context, jobID, jobType string, inputPayload interface{}) error
	UpdateJobStatus(ctx context.Context, jobID, status string, outputDetails interface{}, errorMessage string) error
	GetJob(ctx context.Context, jobID string) (*VideoJobStatus, error)
	Close() error
}

func marshalOptional(v interface{}) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
