package week

import (
	"github.com/bornholm/weekplan/internal/core/model"
)

const JobTypePickup model.JobType = "pickup"

type PickupJob struct {
	id model.JobID
}

// ID implements [model.Job].
func (j *PickupJob) ID() model.JobID {
	return j.id
}

// Type implements [model.Job].
func (j *PickupJob) Type() model.JobType {
	return JobTypePickup
}

func NewPickupJob() *PickupJob {
	return &PickupJob{
		id: model.NewJobID(),
	}
}

var _ model.Job = &PickupJob{}
