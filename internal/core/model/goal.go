package model

import (
	"time"

	"github.com/rs/xid"
)

type GoalID string

func NewGoalID() GoalID {
	return GoalID(xid.New().String())
}

type Goal struct {
	ID        GoalID
	Name      string
	CreatedAt time.Time
}

type CommentID string

func NewCommentID() CommentID {
	return CommentID(xid.New().String())
}

type Comment struct {
	ID        CommentID
	TaskID    TaskID
	Author    string
	Body      string
	CreatedAt time.Time
}

// WorkTask is a task enriched for the work view.
type WorkTask struct {
	Task
	GoalName       string
	RecentComments []Comment
}
