package model

import (
	"github.com/rs/xid"
)

type JobID string

func NewJobID() JobID {
	return JobID(xid.New().String())
}

type JobType string

// Job is a unit of background work executed by a job runner.
type Job interface {
	ID() JobID
	Type() JobType
}
