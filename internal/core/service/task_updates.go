package service

import (
	"cloud.google.com/go/civil"
	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/pkg/errors"
)

// TaskUpdates lists the task fields to change. Nil fields are left untouched.
type TaskUpdates struct {
	Name        *string
	Description *string
	Priority    *model.TaskPriority
	Category    *string
	Source      *string

	// GoalID detaches the task from its goal when set to an empty id
	GoalID *model.GoalID

	DueDate      *civil.Date
	ClearDueDate bool

	EstimatedMinutes *int
	Complexity       *model.TaskComplexity

	Status *model.TaskStatus
}

func (u TaskUpdates) Validate() error {
	if u.Name != nil && *u.Name == "" {
		return errors.Wrap(ErrInvalidInput, "task name cannot be empty")
	}

	if u.Priority != nil && !u.Priority.Valid() {
		return errors.Wrapf(ErrInvalidInput, "unknown priority '%s'", *u.Priority)
	}

	if u.Complexity != nil && !u.Complexity.Valid() {
		return errors.Wrapf(ErrInvalidInput, "unknown complexity '%s'", *u.Complexity)
	}

	if u.EstimatedMinutes != nil && *u.EstimatedMinutes <= 0 {
		return errors.Wrapf(ErrInvalidInput, "estimated minutes must be positive, got '%d'", *u.EstimatedMinutes)
	}

	if u.DueDate != nil && !u.DueDate.IsValid() {
		return errors.Wrapf(ErrInvalidInput, "invalid due date '%s'", u.DueDate)
	}

	if u.DueDate != nil && u.ClearDueDate {
		return errors.Wrap(ErrInvalidInput, "due date cannot be both set and cleared")
	}

	return nil
}

// HasFieldChanges reports whether the updates touch a field other than the
// status.
func (u TaskUpdates) HasFieldChanges() bool {
	return u.Name != nil || u.Description != nil || u.Priority != nil ||
		u.Category != nil || u.Source != nil || u.GoalID != nil ||
		u.DueDate != nil || u.ClearDueDate ||
		u.EstimatedMinutes != nil || u.Complexity != nil
}

// Apply returns a copy of the task with the field updates applied. The
// status is never changed here.
func (u TaskUpdates) Apply(task model.Task) model.Task {
	task = task.Clone()

	if u.Name != nil {
		task.Name = *u.Name
	}

	if u.Description != nil {
		task.Description = *u.Description
	}

	if u.Priority != nil {
		task.Priority = *u.Priority
	}

	if u.Category != nil {
		task.Category = *u.Category
	}

	if u.Source != nil {
		task.Source = *u.Source
	}

	if u.GoalID != nil {
		if *u.GoalID == "" {
			task.GoalID = nil
		} else {
			goalID := *u.GoalID
			task.GoalID = &goalID
		}
	}

	if u.ClearDueDate {
		task.DueDate = nil
	}

	if u.DueDate != nil {
		dueDate := *u.DueDate
		task.DueDate = &dueDate
	}

	if u.EstimatedMinutes != nil {
		minutes := *u.EstimatedMinutes
		task.EstimatedMinutes = &minutes
	}

	if u.Complexity != nil {
		complexity := *u.Complexity
		task.Complexity = &complexity
	}

	return task
}
