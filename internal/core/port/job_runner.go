package port

import (
	"context"
	"time"

	"github.com/bornholm/weekplan/internal/core/model"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

type JobStateHeader struct {
	ID          model.JobID
	Type        model.JobType
	ScheduledAt time.Time
	Status      JobStatus
}

type JobState struct {
	JobStateHeader
	FinishedAt time.Time
	Error      error
	Message    string
}

type JobEvent struct {
	Message *string
}

type JobEventFunc func(e *JobEvent)

func WithJobMessage(message string) JobEventFunc {
	return func(e *JobEvent) {
		e.Message = &message
	}
}

func NewJobEvent(funcs ...JobEventFunc) JobEvent {
	e := JobEvent{}
	for _, fn := range funcs {
		fn(&e)
	}
	return e
}

type JobHandler interface {
	Handle(ctx context.Context, job model.Job, events chan JobEvent) error
}

type JobHandlerFunc func(ctx context.Context, job model.Job, events chan JobEvent) error

func (f JobHandlerFunc) Handle(ctx context.Context, job model.Job, events chan JobEvent) error {
	return f(ctx, job, events)
}

type JobRunner interface {
	ScheduleJob(ctx context.Context, job model.Job) error
	GetJobState(ctx context.Context, id model.JobID) (*JobState, error)
	ListJobs(ctx context.Context) ([]JobStateHeader, error)
	CancelJob(ctx context.Context, id model.JobID) error
	RegisterJob(jobType model.JobType, handler JobHandler)
	Run(ctx context.Context) error
}
