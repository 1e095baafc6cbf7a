package gorm

import (
	"time"

	"github.com/bornholm/weekplan/internal/core/model"
)

type Goal struct {
	ID string `gorm:"primaryKey;autoIncrement:false"`

	CreatedAt time.Time `gorm:"autoCreateTime:false"`

	Name string
}

type Comment struct {
	ID string `gorm:"primaryKey;autoIncrement:false"`

	CreatedAt time.Time `gorm:"autoCreateTime:false;index"`

	Task   *Task `gorm:"constraint:OnDelete:CASCADE;"`
	TaskID string `gorm:"index"`

	Author string
	Body   string
}

func fromGoal(g model.Goal) *Goal {
	return &Goal{
		ID:        string(g.ID),
		CreatedAt: g.CreatedAt,
		Name:      g.Name,
	}
}

func toGoal(g *Goal) model.Goal {
	return model.Goal{
		ID:        model.GoalID(g.ID),
		Name:      g.Name,
		CreatedAt: g.CreatedAt,
	}
}

func fromComment(c model.Comment) *Comment {
	return &Comment{
		ID:        string(c.ID),
		CreatedAt: c.CreatedAt,
		TaskID:    string(c.TaskID),
		Author:    c.Author,
		Body:      c.Body,
	}
}

func toComment(c *Comment) model.Comment {
	return model.Comment{
		ID:        model.CommentID(c.ID),
		TaskID:    model.TaskID(c.TaskID),
		Author:    c.Author,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	}
}
