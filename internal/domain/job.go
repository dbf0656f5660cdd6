package domain

import (
	"context"
	"time"
)

// JobStatus is the lifecycle state of an asynchronous generation job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	// JobFailed is only reached when the request itself was rejected.
	JobFailed    JobStatus = "failed"
)

// Job is the client-visible view of an asynchronous generation run.
type Job struct {
	ID        string            `json:"job_id"`
	Status    JobStatus         `json:"status"`
	Progress  *ProgressEvent    `json:"progress,omitempty"`
	Events    []ProgressEvent   `json:"events,omitempty"`
	Result    *GenerationResult `json:"result,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// JobStore keeps short-lived job state so a UI can poll progress.
type JobStore interface {
	Create(ctx context.Context, job *Job) error
	SetStatus(ctx context.Context, jobID string, status JobStatus) error
	AppendProgress(ctx context.Context, jobID string, event ProgressEvent) error
	Complete(ctx context.Context, jobID string, result GenerationResult) error
	Get(ctx context.Context, jobID string) (*Job, error)
}
