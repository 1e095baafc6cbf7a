package gorm

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/pkg/errors"
)

type Task struct {
	ID string `gorm:"primaryKey;autoIncrement:false"`

	CreatedAt time.Time `gorm:"autoCreateTime:false;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`

	Name        string
	Description string

	Status   string `gorm:"index"`
	Priority string
	Assignee string

	Category string
	Source   string

	Goal   *Goal
	GoalID *string `gorm:"index"`

	// DueDate is stored as a calendar date (YYYY-MM-DD)
	DueDate          *string
	EstimatedMinutes *int
	Complexity       *string
}

type Activity struct {
	ID string `gorm:"primaryKey;autoIncrement:false"`

	Task   *Task `gorm:"constraint:OnDelete:CASCADE;"`
	TaskID string `gorm:"index"`

	From   string
	To     string
	Source string

	OccurredAt time.Time `gorm:"index"`
}

func fromTask(t model.Task) *Task {
	task := &Task{
		ID:               string(t.ID),
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		Name:             t.Name,
		Description:      t.Description,
		Status:           string(t.Status),
		Priority:         string(t.Priority),
		Assignee:         string(t.Assignee),
		Category:         t.Category,
		Source:           t.Source,
		EstimatedMinutes: t.EstimatedMinutes,
	}

	if t.GoalID != nil {
		goalID := string(*t.GoalID)
		task.GoalID = &goalID
	}

	if t.DueDate != nil {
		dueDate := t.DueDate.String()
		task.DueDate = &dueDate
	}

	if t.Complexity != nil {
		complexity := string(*t.Complexity)
		task.Complexity = &complexity
	}

	return task
}

func toTask(t *Task) (model.Task, error) {
	task := model.Task{
		ID:               model.TaskID(t.ID),
		Name:             t.Name,
		Description:      t.Description,
		Status:           model.TaskStatus(t.Status),
		Priority:         model.TaskPriority(t.Priority),
		Assignee:         model.TaskAssignee(t.Assignee),
		Category:         t.Category,
		Source:           t.Source,
		EstimatedMinutes: t.EstimatedMinutes,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}

	if t.GoalID != nil {
		goalID := model.GoalID(*t.GoalID)
		task.GoalID = &goalID
	}

	if t.DueDate != nil && *t.DueDate != "" {
		dueDate, err := civil.ParseDate(*t.DueDate)
		if err != nil {
			return model.Task{}, errors.Wrapf(err, "could not parse due date of task '%s'", t.ID)
		}
		task.DueDate = &dueDate
	}

	if t.Complexity != nil {
		complexity := model.TaskComplexity(*t.Complexity)
		task.Complexity = &complexity
	}

	return task, nil
}

func toTasks(rows []*Task) ([]model.Task, error) {
	tasks := make([]model.Task, 0, len(rows))
	for _, r := range rows {
		task, err := toTask(r)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func fromActivity(a model.Activity) *Activity {
	return &Activity{
		ID:         string(a.ID),
		TaskID:     string(a.TaskID),
		From:       string(a.From),
		To:         string(a.To),
		Source:     string(a.Source),
		OccurredAt: a.OccurredAt,
	}
}

func toActivity(a *Activity) model.Activity {
	return model.Activity{
		ID:         model.ActivityID(a.ID),
		TaskID:     model.TaskID(a.TaskID),
		From:       model.TaskStatus(a.From),
		To:         model.TaskStatus(a.To),
		Source:     model.TransitionSource(a.Source),
		OccurredAt: a.OccurredAt,
	}
}
