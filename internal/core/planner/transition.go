package planner

import (
	"slices"
	"time"

	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/pkg/errors"
)

// transitions lists, per trigger source, the statuses a task may move to
// from a given status. A nil target set means "any valid status".
var transitions = map[model.TransitionSource]map[model.TaskStatus][]model.TaskStatus{
	model.TransitionSourceUser: {
		model.TaskStatusBacklog:          nil,
		model.TaskStatusToBeScheduled:    nil,
		model.TaskStatusToDoThisWeek:     nil,
		model.TaskStatusInProgress:       nil,
		model.TaskStatusRequiresMoreInfo: nil,
		model.TaskStatusBlocked:          nil,
		model.TaskStatusNeedsReview:      nil,
		model.TaskStatusCompleted:        nil,
	},
	model.TransitionSourceScheduler: {
		model.TaskStatusToBeScheduled: {model.TaskStatusToDoThisWeek},
		model.TaskStatusToDoThisWeek:  {model.TaskStatusToBeScheduled},
	},
	model.TransitionSourcePickup: {
		model.TaskStatusToDoThisWeek: {model.TaskStatusInProgress},
	},
}

// CanTransition reports whether the transition table allows source to move
// a task from one status to another. It does not check task fields.
func CanTransition(source model.TransitionSource, from, to model.TaskStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}

	table, exists := transitions[source]
	if !exists {
		return false
	}

	targets, exists := table[from]
	if !exists {
		return false
	}

	if targets == nil {
		return true
	}

	return slices.Contains(targets, to)
}

// ApplyStatus moves the task to the given status and derives its assignee.
// The returned activity is nil when the task already has the requested status.
// A task without due date is rejected from ToDoThisWeek even when it is
// already there. The given task is never modified.
func ApplyStatus(task model.Task, status model.TaskStatus, source model.TransitionSource, now time.Time) (model.Task, *model.Activity, error) {
	if !status.Valid() {
		return task, nil, errors.WithStack(NewInvalidTransitionError(task, status, "unknown status"))
	}

	if status == model.TaskStatusToDoThisWeek && !task.HasDueDate() {
		return task, nil, errors.WithStack(NewInvalidTransitionError(task, status, "task has no due date"))
	}

	if task.Status == status {
		return task, nil, nil
	}

	if !CanTransition(source, task.Status, status) {
		return task, nil, errors.WithStack(NewInvalidTransitionError(task, status, "transition not allowed for source '"+string(source)+"'"))
	}

	updated := task.Clone()
	updated.Status = status
	updated.Assignee = deriveAssignee(status, task.Assignee)
	updated.UpdatedAt = now

	activity := model.NewActivity(task.ID, task.Status, status, source, now)

	return updated, &activity, nil
}

func deriveAssignee(status model.TaskStatus, current model.TaskAssignee) model.TaskAssignee {
	switch status {
	case model.TaskStatusToBeScheduled, model.TaskStatusToDoThisWeek, model.TaskStatusInProgress:
		return model.TaskAssigneeAIAssistant
	case model.TaskStatusNeedsReview:
		return model.TaskAssigneeUser
	default:
		return current
	}
}
