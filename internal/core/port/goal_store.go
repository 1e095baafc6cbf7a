package port

import (
	"context"

	"github.com/bornholm/weekplan/internal/core/model"
)

type GoalStore interface {
	// GetGoalByID returns the goal with the given id, or port.ErrNotFound
	GetGoalByID(ctx context.Context, id model.GoalID) (model.Goal, error)
	SaveGoal(ctx context.Context, goal model.Goal) error
	QueryGoals(ctx context.Context, opts QueryGoalsOptions) ([]model.Goal, error)

	SaveComment(ctx context.Context, comment model.Comment) error
	// QueryComments returns the comments of a task, most recent first
	QueryComments(ctx context.Context, taskID model.TaskID, opts QueryCommentsOptions) ([]model.Comment, error)
}

type QueryGoalsOptions struct {
	Page  *int
	Limit *int
}

type QueryCommentsOptions struct {
	Limit *int
}
