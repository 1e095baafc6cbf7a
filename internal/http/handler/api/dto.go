package api

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/bornholm/weekplan/internal/core/service"
	"github.com/pkg/errors"
)

type Task struct {
	ID               model.TaskID          `json:"id"`
	Name             string                `json:"name"`
	Description      string                `json:"description,omitempty"`
	Status           model.TaskStatus      `json:"status"`
	Priority         model.TaskPriority    `json:"priority"`
	Assignee         model.TaskAssignee    `json:"assignee"`
	Category         string                `json:"category,omitempty"`
	Source           string                `json:"source,omitempty"`
	GoalID           *model.GoalID         `json:"goalId,omitempty"`
	DueDate          *civil.Date           `json:"dueDate,omitempty"`
	EstimatedMinutes *int                  `json:"estimatedMinutes,omitempty"`
	Complexity       *model.TaskComplexity `json:"complexity,omitempty"`
	CreatedAt        time.Time             `json:"createdAt"`
	UpdatedAt        time.Time             `json:"updatedAt"`
}

func toTask(t model.Task) Task {
	return Task{
		ID:               t.ID,
		Name:             t.Name,
		Description:      t.Description,
		Status:           t.Status,
		Priority:         t.Priority,
		Assignee:         t.Assignee,
		Category:         t.Category,
		Source:           t.Source,
		GoalID:           t.GoalID,
		DueDate:          t.DueDate,
		EstimatedMinutes: t.EstimatedMinutes,
		Complexity:       t.Complexity,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func toTasks(tasks []model.Task) []Task {
	dtos := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		dtos = append(dtos, toTask(t))
	}
	return dtos
}

// TaskRef is the short form used in scheduling reports.
type TaskRef struct {
	ID   model.TaskID `json:"id"`
	Name string       `json:"name"`
}

func toTaskRefs(tasks []model.Task) []TaskRef {
	refs := make([]TaskRef, 0, len(tasks))
	for _, t := range tasks {
		refs = append(refs, TaskRef{ID: t.ID, Name: t.Name})
	}
	return refs
}

type WorkTask struct {
	Task
	GoalName       string    `json:"goalName,omitempty"`
	RecentComments []Comment `json:"recentComments"`
}

func toWorkTask(t model.WorkTask) WorkTask {
	comments := make([]Comment, 0, len(t.RecentComments))
	for _, c := range t.RecentComments {
		comments = append(comments, toComment(c))
	}

	return WorkTask{
		Task:           toTask(t.Task),
		GoalName:       t.GoalName,
		RecentComments: comments,
	}
}

type Goal struct {
	ID        model.GoalID `json:"id"`
	Name      string       `json:"name"`
	CreatedAt time.Time    `json:"createdAt"`
}

func toGoal(g model.Goal) Goal {
	return Goal{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt}
}

type Comment struct {
	ID        model.CommentID `json:"id"`
	Author    string          `json:"author"`
	Body      string          `json:"body"`
	CreatedAt time.Time       `json:"createdAt"`
}

func toComment(c model.Comment) Comment {
	return Comment{ID: c.ID, Author: c.Author, Body: c.Body, CreatedAt: c.CreatedAt}
}

type Activity struct {
	ID         model.ActivityID       `json:"id"`
	From       model.TaskStatus       `json:"from"`
	To         model.TaskStatus       `json:"to"`
	Source     model.TransitionSource `json:"source"`
	OccurredAt time.Time              `json:"occurredAt"`
}

func toActivity(a model.Activity) Activity {
	return Activity{ID: a.ID, From: a.From, To: a.To, Source: a.Source, OccurredAt: a.OccurredAt}
}

// TaskFields holds the optional task fields accepted on creation and update.
type TaskFields struct {
	Name             *string               `json:"name,omitempty"`
	Description      *string               `json:"description,omitempty"`
	Status           *model.TaskStatus     `json:"status,omitempty"`
	Priority         *model.TaskPriority   `json:"priority,omitempty"`
	Category         *string               `json:"category,omitempty"`
	Source           *string               `json:"source,omitempty"`
	GoalID           *model.GoalID         `json:"goalId,omitempty"`
	DueDate          *civil.Date           `json:"dueDate,omitempty"`
	ClearDueDate     bool                  `json:"clearDueDate,omitempty"`
	EstimatedMinutes *int                  `json:"estimatedMinutes,omitempty"`
	Complexity       *model.TaskComplexity `json:"complexity,omitempty"`
}

func (f TaskFields) toUpdates() (service.TaskUpdates, error) {
	if f.Status != nil {
		if _, err := model.ParseTaskStatus(string(*f.Status)); err != nil {
			return service.TaskUpdates{}, errors.WithStack(err)
		}
	}

	return service.TaskUpdates{
		Name:             f.Name,
		Description:      f.Description,
		Priority:         f.Priority,
		Category:         f.Category,
		Source:           f.Source,
		GoalID:           f.GoalID,
		DueDate:          f.DueDate,
		ClearDueDate:     f.ClearDueDate,
		EstimatedMinutes: f.EstimatedMinutes,
		Complexity:       f.Complexity,
		Status:           f.Status,
	}, nil
}
