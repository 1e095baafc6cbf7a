package week

import (
	"context"
	"fmt"

	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/bornholm/weekplan/internal/core/port"
	"github.com/bornholm/weekplan/internal/core/service"
	"github.com/pkg/errors"
)

type Scheduler interface {
	Schedule(ctx context.Context, weeklyBudget int) (*service.ScheduleReport, error)
}

type Picker interface {
	Pickup(ctx context.Context) (*service.PickupReport, error)
}

type ScheduleHandler struct {
	scheduler Scheduler
}

func NewScheduleHandler(scheduler Scheduler) *ScheduleHandler {
	return &ScheduleHandler{
		scheduler: scheduler,
	}
}

// Handle implements [port.JobHandler].
func (h *ScheduleHandler) Handle(ctx context.Context, job model.Job, events chan port.JobEvent) error {
	scheduleJob, ok := job.(*ScheduleJob)
	if !ok {
		return errors.Errorf("unexpected job type '%T'", job)
	}

	report, err := h.scheduler.Schedule(ctx, scheduleJob.WeeklyBudget())
	if err != nil {
		return errors.Wrap(err, "could not schedule week")
	}

	events <- port.NewJobEvent(port.WithJobMessage(fmt.Sprintf(
		"%d promoted, %d demoted, %d/%d minutes used",
		len(report.Promoted), len(report.Demoted), report.UsedMinutes, report.WeeklyBudgetMinutes,
	)))

	return nil
}

var _ port.JobHandler = &ScheduleHandler{}

type PickupHandler struct {
	picker Picker
}

func NewPickupHandler(picker Picker) *PickupHandler {
	return &PickupHandler{
		picker: picker,
	}
}

// Handle implements [port.JobHandler].
func (h *PickupHandler) Handle(ctx context.Context, job model.Job, events chan port.JobEvent) error {
	if _, ok := job.(*PickupJob); !ok {
		return errors.Errorf("unexpected job type '%T'", job)
	}

	report, err := h.picker.Pickup(ctx)
	if err != nil {
		return errors.Wrap(err, "could not pick up task")
	}

	var message string
	switch {
	case report.Task != nil:
		message = fmt.Sprintf("picked up task '%s'", report.Task.ID)
	case len(report.InProgress) > 0:
		message = "a task is already in progress"
	default:
		message = "no task to pick up"
	}

	events <- port.NewJobEvent(port.WithJobMessage(message))

	return nil
}

var _ port.JobHandler = &PickupHandler{}
