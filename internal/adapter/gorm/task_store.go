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

// GetTaskByID implements [port.TaskStore].
func (s *Store) GetTaskByID(ctx context.Context, id model.TaskID) (model.Task, error) {
	var task Task

	err := s.withRetry(ctx, false, func(ctx context.Context, db *gorm.DB) error {
		if err := db.First(&task, "id = ?", string(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.WithStack(port.ErrNotFound)
			}
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return model.Task{}, errors.WithStack(err)
	}

	return toTask(&task)
}

// QueryTasks implements [port.TaskStore].
func (s *Store) QueryTasks(ctx context.Context, opts port.QueryTasksOptions) ([]model.Task, error) {
	var tasks []*Task

	err := s.withRetry(ctx, false, func(ctx context.Context, db *gorm.DB) error {
		query := db.Model(&Task{})

		if len(opts.Statuses) > 0 {
			statuses := make([]string, 0, len(opts.Statuses))
			for _, status := range opts.Statuses {
				statuses = append(statuses, string(status))
			}
			query = query.Where("status IN ?", statuses)
		}

		if opts.GoalID != nil {
			query = query.Where("goal_id = ?", string(*opts.GoalID))
		}

		query = paginate(query, opts.Page, opts.Limit)

		if err := query.Order("created_at asc, id asc").Find(&tasks).Error; err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return toTasks(tasks)
}

// SaveTask implements [port.TaskStore].
func (s *Store) SaveTask(ctx context.Context, task model.Task) error {
	err := s.withRetry(ctx, true, func(ctx context.Context, db *gorm.DB) error {
		row := fromTask(task)

		err := db.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(row).Error
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

// DeleteTask implements [port.TaskStore].
func (s *Store) DeleteTask(ctx context.Context, id model.TaskID) error {
	err := s.withRetry(ctx, true, func(ctx context.Context, db *gorm.DB) error {
		if err := db.Delete(&Activity{}, "task_id = ?", string(id)).Error; err != nil {
			return errors.WithStack(err)
		}

		if err := db.Delete(&Comment{}, "task_id = ?", string(id)).Error; err != nil {
			return errors.WithStack(err)
		}

		res := db.Delete(&Task{}, "id = ?", string(id))
		if res.Error != nil {
			return errors.WithStack(res.Error)
		}

		if res.RowsAffected == 0 {
			return errors.WithStack(port.ErrNotFound)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// CountTasks implements [port.TaskStore].
func (s *Store) CountTasks(ctx context.Context) (map[model.TaskStatus]int64, error) {
	type statusCount struct {
		Status string
		Total  int64
	}

	var rows []statusCount

	err := s.withRetry(ctx, false, func(ctx context.Context, db *gorm.DB) error {
		err := db.Model(&Task{}).
			Select("status, count(*) as total").
			Group("status").
			Scan(&rows).Error
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	counts := make(map[model.TaskStatus]int64, len(rows))
	for _, r := range rows {
		counts[model.TaskStatus(r.Status)] = r.Total
	}

	return counts, nil
}

// RecordActivities implements [port.TaskStore].
func (s *Store) RecordActivities(ctx context.Context, activities ...model.Activity) error {
	if len(activities) == 0 {
		return nil
	}

	err := s.withRetry(ctx, true, func(ctx context.Context, db *gorm.DB) error {
		rows := make([]*Activity, 0, len(activities))
		for _, a := range activities {
			rows = append(rows, fromActivity(a))
		}

		if err := db.Omit(clause.Associations).Create(rows).Error; err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// QueryActivities implements [port.TaskStore].
func (s *Store) QueryActivities(ctx context.Context, opts port.QueryActivitiesOptions) ([]model.Activity, error) {
	var rows []*Activity

	err := s.withRetry(ctx, false, func(ctx context.Context, db *gorm.DB) error {
		query := db.Model(&Activity{})

		if opts.TaskID != nil {
			query = query.Where("task_id = ?", string(*opts.TaskID))
		}

		query = paginate(query, opts.Page, opts.Limit)

		if err := query.Order("occurred_at desc, id desc").Find(&rows).Error; err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	activities := make([]model.Activity, 0, len(rows))
	for _, r := range rows {
		activities = append(activities, toActivity(r))
	}

	return activities, nil
}
