package planner

import (
	"fmt"

	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/pkg/errors"
)

var ErrInvalidTransition = errors.New("invalid transition")

type InvalidTransitionError struct {
	TaskID model.TaskID
	From   model.TaskStatus
	To     model.TaskStatus
	Reason string
}

// Error implements error.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from '%s' to '%s': %s", e.From, e.To, e.Reason)
}

// Is allows errors.Is(err, ErrInvalidTransition).
func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// NewInvalidTransitionError builds the rejection of moving task to the given status.
func NewInvalidTransitionError(task model.Task, to model.TaskStatus, reason string) *InvalidTransitionError {
	return &InvalidTransitionError{
		TaskID: task.ID,
		From:   task.Status,
		To:     to,
		Reason: reason,
	}
}

var _ error = &InvalidTransitionError{}
