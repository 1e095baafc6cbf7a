package model

import (
	"slices"

	"github.com/pkg/errors"
)

var ErrUnknownValue = errors.New("unknown value")

type TaskStatus string

const (
	TaskStatusBacklog          TaskStatus = "Backlog"
	TaskStatusToBeScheduled    TaskStatus = "ToBeScheduled"
	TaskStatusToDoThisWeek     TaskStatus = "ToDoThisWeek"
	TaskStatusInProgress       TaskStatus = "InProgress"
	TaskStatusRequiresMoreInfo TaskStatus = "RequiresMoreInfo"
	TaskStatusBlocked          TaskStatus = "Blocked"
	TaskStatusNeedsReview      TaskStatus = "NeedsReview"
	TaskStatusCompleted        TaskStatus = "Completed"
)

var taskStatuses = []TaskStatus{
	TaskStatusBacklog,
	TaskStatusToBeScheduled,
	TaskStatusToDoThisWeek,
	TaskStatusInProgress,
	TaskStatusRequiresMoreInfo,
	TaskStatusBlocked,
	TaskStatusNeedsReview,
	TaskStatusCompleted,
}

func TaskStatuses() []TaskStatus {
	return slices.Clone(taskStatuses)
}

func (s TaskStatus) Valid() bool {
	return slices.Contains(taskStatuses, s)
}

func ParseTaskStatus(raw string) (TaskStatus, error) {
	status := TaskStatus(raw)
	if !status.Valid() {
		return "", errors.Wrapf(ErrUnknownValue, "invalid task status '%s'", raw)
	}

	return status, nil
}

type TaskPriority string

const (
	TaskPriorityHigh   TaskPriority = "High"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityLow    TaskPriority = "Low"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityHigh, TaskPriorityMedium, TaskPriorityLow:
		return true
	default:
		return false
	}
}

func ParseTaskPriority(raw string) (TaskPriority, error) {
	priority := TaskPriority(raw)
	if !priority.Valid() {
		return "", errors.Wrapf(ErrUnknownValue, "invalid task priority '%s'", raw)
	}

	return priority, nil
}

type TaskAssignee string

const (
	TaskAssigneeAIAssistant TaskAssignee = "AIAssistant"
	TaskAssigneeUser        TaskAssignee = "User"
)

// TaskComplexity is only consumed by downstream model selection.
type TaskComplexity string

const (
	TaskComplexitySimple   TaskComplexity = "Simple"
	TaskComplexityModerate TaskComplexity = "Moderate"
	TaskComplexityComplex  TaskComplexity = "Complex"
)

func (c TaskComplexity) Valid() bool {
	switch c {
	case TaskComplexitySimple, TaskComplexityModerate, TaskComplexityComplex:
		return true
	default:
		return false
	}
}

func ParseTaskComplexity(raw string) (TaskComplexity, error) {
	complexity := TaskComplexity(raw)
	if !complexity.Valid() {
		return "", errors.Wrapf(ErrUnknownValue, "invalid task complexity '%s'", raw)
	}

	return complexity, nil
}
