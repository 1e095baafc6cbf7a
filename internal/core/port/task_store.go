package port

import (
	"context"

	"github.com/bornholm/weekplan/internal/core/model"
)

type TaskStore interface {
	// GetTaskByID returns the task with the given id, or port.ErrNotFound
	GetTaskByID(ctx context.Context, id model.TaskID) (model.Task, error)

	// QueryTasks returns the tasks matching the given options
	QueryTasks(ctx context.Context, opts QueryTasksOptions) ([]model.Task, error)

	// SaveTask creates or replaces the given task
	SaveTask(ctx context.Context, task model.Task) error

	// DeleteTask deletes the task, its activities and its comments, or returns port.ErrNotFound
	DeleteTask(ctx context.Context, id model.TaskID) error

	// CountTasks returns the number of tasks per status
	CountTasks(ctx context.Context) (map[model.TaskStatus]int64, error)

	// RecordActivities appends the given activities to the activity log
	RecordActivities(ctx context.Context, activities ...model.Activity) error

	// QueryActivities returns the activities matching the given options, most recent first
	QueryActivities(ctx context.Context, opts QueryActivitiesOptions) ([]model.Activity, error)

	// Transact runs fn in a single transaction. Store calls made with the
	// context given to fn join that transaction.
	Transact(ctx context.Context, fn func(ctx context.Context) error) error
}

type QueryTasksOptions struct {
	Statuses []model.TaskStatus
	GoalID   *model.GoalID

	Page  *int
	Limit *int
}

type QueryActivitiesOptions struct {
	TaskID *model.TaskID

	Page  *int
	Limit *int
}
