package planner

import (
	"slices"
	"time"

	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/pkg/errors"
)

type PickupResult struct {
	// Task is the task moved to InProgress, nil if none was picked.
	Task *model.Task
	// InProgress lists the tasks already in progress, sorted with Compare.
	InProgress []model.Task
	Activity   *model.Activity
}

// Pickup selects the most important task of the week queue and moves it to
// InProgress. Nothing is picked while another task is in progress.
func Pickup(inProgress []model.Task, weekQueue []model.Task, now time.Time) (*PickupResult, error) {
	if len(inProgress) > 0 {
		return &PickupResult{
			InProgress: Sorted(inProgress),
		}, nil
	}

	if len(weekQueue) == 0 {
		return &PickupResult{
			InProgress: make([]model.Task, 0),
		}, nil
	}

	next, _ := NextPickup(weekQueue)

	picked, activity, err := ApplyStatus(next, model.TaskStatusInProgress, model.TransitionSourcePickup, now)
	if err != nil {
		return nil, errors.Wrapf(err, "could not pick up task '%s'", next.ID)
	}

	return &PickupResult{
		Task:       &picked,
		InProgress: make([]model.Task, 0),
		Activity:   activity,
	}, nil
}

// NextPickup returns the task Pickup would select from the queue, without
// applying any transition.
func NextPickup(weekQueue []model.Task) (model.Task, bool) {
	if len(weekQueue) == 0 {
		return model.Task{}, false
	}

	return slices.MinFunc(weekQueue, Compare), true
}
