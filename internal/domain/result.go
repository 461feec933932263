package domain

import (
	"time"

	apperrors "pdf-toolbox/pkg/errors"
)

// OperationResult is what every engine operation returns.
type OperationResult struct {
	Success bool                `json:"success"`
	Kind    apperrors.ErrorType `json:"kind,omitempty"`
	Message string              `json:"message"`
	Outputs []string            `json:"outputs,omitempty"`
	Pages   int                 `json:"pages,omitempty"`
}

// Succeeded builds a successful result.
func Succeeded(message string, outputs ...string) OperationResult {
	return OperationResult{Success: true, Message: message, Outputs: outputs}
}

// Failed builds a failed result from err. The kind is taken from err when it
// carries one, otherwise fallback is used.
func Failed(err error, fallback apperrors.ErrorType) OperationResult {
	kind := apperrors.KindOf(err)
	if kind == "" {
		kind = fallback
	}
	return OperationResult{Kind: kind, Message: err.Error()}
}

// JobStatus is the lifecycle state of an asynchronous operation.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Job is one asynchronously dispatched engine call.
type Job struct {
	ID         string           `json:"id"`
	Operation  string           `json:"operation"`
	Status     JobStatus        `json:"status"`
	Result     *OperationResult `json:"result,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
}

// Done reports whether the job reached a terminal state.
func (j *Job) Done() bool {
	return j.Status == JobSucceeded || j.Status == JobFailed
}
