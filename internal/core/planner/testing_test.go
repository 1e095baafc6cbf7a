package planner

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/bornholm/weekplan/internal/core/model"
)

// Wednesday, in the week [2026-10-12, 2026-10-19)
var testNow = time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)

type taskOptionFunc func(t *model.Task)

func withPriority(priority model.TaskPriority) taskOptionFunc {
	return func(t *model.Task) {
		t.Priority = priority
	}
}

func withMinutes(minutes int) taskOptionFunc {
	return func(t *model.Task) {
		t.EstimatedMinutes = &minutes
	}
}

func withDueDate(year int, month time.Month, day int) taskOptionFunc {
	return func(t *model.Task) {
		t.DueDate = &civil.Date{Year: year, Month: month, Day: day}
	}
}

func withStatus(status model.TaskStatus) taskOptionFunc {
	return func(t *model.Task) {
		t.Status = status
	}
}

func newTestTask(id string, funcs ...taskOptionFunc) model.Task {
	task := model.Task{
		ID:        model.TaskID(id),
		Name:      id,
		Status:    model.TaskStatusToBeScheduled,
		Priority:  model.TaskPriorityMedium,
		Assignee:  model.TaskAssigneeUser,
		CreatedAt: testNow.Add(-24 * time.Hour),
		UpdatedAt: testNow.Add(-24 * time.Hour),
	}

	for _, fn := range funcs {
		fn(&task)
	}

	return task
}

func taskIDs(tasks []model.Task) []model.TaskID {
	ids := make([]model.TaskID, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
