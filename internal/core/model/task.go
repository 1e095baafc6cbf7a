package model

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/xid"
)

type TaskID string

func NewTaskID() TaskID {
	return TaskID(xid.New().String())
}

// DefaultEstimatedMinutes is the duration assumed for a task without
// a usable estimate.
const DefaultEstimatedMinutes = 30

type Task struct {
	ID          TaskID
	Name        string
	Description string

	Status   TaskStatus
	Priority TaskPriority
	Assignee TaskAssignee

	Category string
	Source   string
	GoalID   *GoalID

	DueDate          *civil.Date
	EstimatedMinutes *int
	Complexity       *TaskComplexity

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectiveMinutes returns the task estimate, falling back to
// DefaultEstimatedMinutes when the estimate is unset or not positive.
func (t Task) EffectiveMinutes() int {
	if t.EstimatedMinutes == nil || *t.EstimatedMinutes <= 0 {
		return DefaultEstimatedMinutes
	}

	return *t.EstimatedMinutes
}

func (t Task) HasDueDate() bool {
	return t.DueDate != nil
}

// Clone returns a copy of the task that does not share pointer fields
// with the original.
func (t Task) Clone() Task {
	clone := t

	if t.GoalID != nil {
		goalID := *t.GoalID
		clone.GoalID = &goalID
	}

	if t.DueDate != nil {
		dueDate := *t.DueDate
		clone.DueDate = &dueDate
	}

	if t.EstimatedMinutes != nil {
		minutes := *t.EstimatedMinutes
		clone.EstimatedMinutes = &minutes
	}

	if t.Complexity != nil {
		complexity := *t.Complexity
		clone.Complexity = &complexity
	}

	return clone
}

func NewTask(name string) Task {
	now := time.Now()
	return Task{
		ID:        NewTaskID(),
		Name:      name,
		Status:    TaskStatusBacklog,
		Priority:  TaskPriorityMedium,
		Assignee:  TaskAssigneeUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
