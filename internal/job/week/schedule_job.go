package week

import (
	"github.com/bornholm/weekplan/internal/core/model"
)

const JobTypeSchedule model.JobType = "schedule"

type ScheduleJob struct {
	id           model.JobID
	weeklyBudget int
}

// ID implements [model.Job].
func (j *ScheduleJob) ID() model.JobID {
	return j.id
}

// Type implements [model.Job].
func (j *ScheduleJob) Type() model.JobType {
	return JobTypeSchedule
}

func (j *ScheduleJob) WeeklyBudget() int {
	return j.weeklyBudget
}

// NewScheduleJob creates a scheduler run. A budget lower or equal to zero
// uses the configured weekly budget.
func NewScheduleJob(weeklyBudget int) *ScheduleJob {
	return &ScheduleJob{
		id:           model.NewJobID(),
		weeklyBudget: weeklyBudget,
	}
}

var _ model.Job = &ScheduleJob{}
