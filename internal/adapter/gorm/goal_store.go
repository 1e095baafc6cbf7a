package gorm

import (
	"context"

	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/bornholm/weekplan/internal/core/port"
	"github.com/ncruces/go-sqlite3"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetGoalByID implements [port.GoalStore].
func (s *Store) GetGoalByID(ctx context.Context, id model.GoalID) (model.Goal, error) {
	var goal Goal

	err := s.withRetry(ctx, false, func(ctx context.Context, db *gorm.DB) error {
		if err := db.First(&goal, "id = ?", string(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.WithStack(port.ErrNotFound)
			}
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return model.Goal{}, errors.WithStack(err)
	}

	return toGoal(&goal), nil
}

// SaveGoal implements [port.GoalStore].
func (s *Store) SaveGoal(ctx context.Context, goal model.Goal) error {
	err := s.withRetry(ctx, true, func(ctx context.Context, db *gorm.DB) error {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).Create(fromGoal(goal)).Error
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// QueryGoals implements [port.GoalStore].
func (s *Store) QueryGoals(ctx context.Context, opts port.QueryGoalsOptions) ([]model.Goal, error) {
	var rows []*Goal

	err := s.withRetry(ctx, false, func(ctx context.Context, db *gorm.DB) error {
		query := paginate(db.Model(&Goal{}), opts.Page, opts.Limit)

		if err := query.Order("name asc, id asc").Find(&rows).Error; err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	goals := make([]model.Goal, 0, len(rows))
	for _, r := range rows {
		goals = append(goals, toGoal(r))
	}

	return goals, nil
}

// SaveComment implements [port.GoalStore].
func (s *Store) SaveComment(ctx context.Context, comment model.Comment) error {
	err := s.withRetry(ctx, true, func(ctx context.Context, db *gorm.DB) error {
		if err := db.Omit(clause.Associations).Create(fromComment(comment)).Error; err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// QueryComments implements [port.GoalStore].
func (s *Store) QueryComments(ctx context.Context, taskID model.TaskID, opts port.QueryCommentsOptions) ([]model.Comment, error) {
	var rows []*Comment

	err := s.withRetry(ctx, false, func(ctx context.Context, db *gorm.DB) error {
		query := db.Model(&Comment{}).Where("task_id = ?", string(taskID))

		if opts.Limit != nil {
			query = query.Limit(*opts.Limit)
		}

		if err := query.Order("created_at desc, id desc").Find(&rows).Error; err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	comments := make([]model.Comment, 0, len(rows))
	for _, r := range rows {
		comments = append(comments, toComment(r))
	}

	return comments, nil
}
