package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/bornholm/go-x/slogx"
	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/bornholm/weekplan/internal/core/planner"
	"github.com/bornholm/weekplan/internal/core/port"
	"github.com/bornholm/weekplan/internal/metrics"
	"github.com/pkg/errors"
)

type TaskManagerOptions struct {
	WeeklyBudgetMinutes int
	Location            *time.Location
	RecentComments      int
	Now                 func() time.Time
}

type TaskManagerOptionFunc func(opts *TaskManagerOptions)

func WithTaskManagerWeeklyBudget(minutes int) TaskManagerOptionFunc {
	return func(opts *TaskManagerOptions) {
		opts.WeeklyBudgetMinutes = minutes
	}
}

func WithTaskManagerLocation(loc *time.Location) TaskManagerOptionFunc {
	return func(opts *TaskManagerOptions) {
		opts.Location = loc
	}
}

func WithTaskManagerRecentComments(total int) TaskManagerOptionFunc {
	return func(opts *TaskManagerOptions) {
		opts.RecentComments = total
	}
}

func WithTaskManagerClock(now func() time.Time) TaskManagerOptionFunc {
	return func(opts *TaskManagerOptions) {
		opts.Now = now
	}
}

func NewTaskManagerOptions(funcs ...TaskManagerOptionFunc) *TaskManagerOptions {
	opts := &TaskManagerOptions{
		WeeklyBudgetMinutes: planner.DefaultWeeklyBudgetMinutes,
		Location:            time.UTC,
		RecentComments:      5,
		Now:                 time.Now,
	}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

// TaskManager applies the planner decisions to the task store. Schedule,
// Pickup, UpdateTask and RestoreBackup are serialized: each one holds the
// manager lock and runs inside a single store transaction.
type TaskManager struct {
	taskStore    port.TaskStore
	goalStore    port.GoalStore
	snapshotable port.Snapshotable

	lock chan struct{}

	weeklyBudget   int
	location       *time.Location
	recentComments int
	now            func() time.Time
}

type ScheduleReport struct {
	Promoted            []model.Task
	Demoted             []model.Task
	WeeklyBudgetMinutes int
	UsedMinutes         int
	RemainingMinutes    int
}

// Schedule runs the capacity allocator once over the current committed and
// candidate sets. A budget lower or equal to zero is replaced by the
// configured weekly budget.
func (m *TaskManager) Schedule(ctx context.Context, weeklyBudget int) (*ScheduleReport, error) {
	if weeklyBudget <= 0 {
		weeklyBudget = m.weeklyBudget
	}

	var result *planner.AllocationResult

	err := m.exclusive(ctx, func(ctx context.Context) error {
		committed, err := m.taskStore.QueryTasks(ctx, port.QueryTasksOptions{
			Statuses: []model.TaskStatus{model.TaskStatusToDoThisWeek},
		})
		if err != nil {
			return errors.Wrap(err, "could not query committed tasks")
		}

		candidates, err := m.taskStore.QueryTasks(ctx, port.QueryTasksOptions{
			Statuses: []model.TaskStatus{model.TaskStatusToBeScheduled},
		})
		if err != nil {
			return errors.Wrap(err, "could not query candidate tasks")
		}

		result, err = planner.Allocate(committed, candidates, weeklyBudget, m.now(), m.location)
		if err != nil {
			return errors.WithStack(err)
		}

		for _, tasks := range [][]model.Task{result.Promoted, result.Demoted} {
			for _, t := range tasks {
				if err := m.taskStore.SaveTask(ctx, t); err != nil {
					return errors.Wrapf(err, "could not save task '%s'", t.ID)
				}
			}
		}

		if err := m.taskStore.RecordActivities(ctx, result.Activities...); err != nil {
			return errors.Wrap(err, "could not record activities")
		}

		return nil
	})
	if err != nil {
		metrics.TotalScheduleRuns.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, errors.WithStack(err)
	}

	metrics.TotalScheduleRuns.WithLabelValues(metrics.OutcomeSucceeded).Inc()
	metrics.TotalPromotedTasks.Add(float64(len(result.Promoted)))
	metrics.TotalDemotedTasks.Add(float64(len(result.Demoted)))
	metrics.TotalTransitions.WithLabelValues(string(model.TransitionSourceScheduler)).Add(float64(len(result.Activities)))
	metrics.WeeklyBudgetMinutes.Set(float64(result.WeeklyBudgetMinutes))
	metrics.WeeklyUsedMinutes.Set(float64(result.UsedMinutes))

	slog.InfoContext(ctx, "week scheduled",
		slog.Int("promoted", len(result.Promoted)),
		slog.Int("demoted", len(result.Demoted)),
		slog.Int("weeklyBudget", result.WeeklyBudgetMinutes),
		slog.Int("usedMinutes", result.UsedMinutes),
	)

	return &ScheduleReport{
		Promoted:            result.Promoted,
		Demoted:             result.Demoted,
		WeeklyBudgetMinutes: result.WeeklyBudgetMinutes,
		UsedMinutes:         result.UsedMinutes,
		RemainingMinutes:    result.RemainingMinutes(),
	}, nil
}

type PickupReport struct {
	// Task is the task moved to InProgress, nil when nothing was picked up
	Task *model.Task
	// InProgress holds the tasks already in progress, sorted by importance
	InProgress []model.Task
}

// Pickup moves the most important task of the week queue to InProgress,
// unless a task is already in progress.
func (m *TaskManager) Pickup(ctx context.Context) (*PickupReport, error) {
	var result *planner.PickupResult

	err := m.exclusive(ctx, func(ctx context.Context) error {
		inProgress, err := m.taskStore.QueryTasks(ctx, port.QueryTasksOptions{
			Statuses: []model.TaskStatus{model.TaskStatusInProgress},
		})
		if err != nil {
			return errors.Wrap(err, "could not query in progress tasks")
		}

		weekQueue, err := m.taskStore.QueryTasks(ctx, port.QueryTasksOptions{
			Statuses: []model.TaskStatus{model.TaskStatusToDoThisWeek},
		})
		if err != nil {
			return errors.Wrap(err, "could not query week queue")
		}

		result, err = planner.Pickup(inProgress, weekQueue, m.now())
		if err != nil {
			return errors.WithStack(err)
		}

		if result.Task == nil {
			return nil
		}

		if err := m.taskStore.SaveTask(ctx, *result.Task); err != nil {
			return errors.Wrapf(err, "could not save task '%s'", result.Task.ID)
		}

		if err := m.taskStore.RecordActivities(ctx, *result.Activity); err != nil {
			return errors.Wrap(err, "could not record activity")
		}

		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	switch {
	case result.Task != nil:
		metrics.TotalPickups.WithLabelValues(metrics.OutcomePicked).Inc()
		metrics.TotalTransitions.WithLabelValues(string(model.TransitionSourcePickup)).Inc()
		slog.InfoContext(ctx, "task picked up", slog.String("taskID", string(result.Task.ID)))
	case len(result.InProgress) > 0:
		metrics.TotalPickups.WithLabelValues(metrics.OutcomeBusy).Inc()
		slog.DebugContext(ctx, "a task is already in progress", slog.Int("inProgress", len(result.InProgress)))
	default:
		metrics.TotalPickups.WithLabelValues(metrics.OutcomeEmpty).Inc()
		slog.DebugContext(ctx, "week queue is empty")
	}

	return &PickupReport{
		Task:       result.Task,
		InProgress: result.InProgress,
	}, nil
}

type WorkReport struct {
	InProgress []model.WorkTask
	NextPickup *model.WorkTask
}

// Work returns the tasks in progress and the task the next pickup would
// select. It never modifies the store.
func (m *TaskManager) Work(ctx context.Context) (*WorkReport, error) {
	inProgress, err := m.taskStore.QueryTasks(ctx, port.QueryTasksOptions{
		Statuses: []model.TaskStatus{model.TaskStatusInProgress},
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not query in progress tasks")
	}

	weekQueue, err := m.taskStore.QueryTasks(ctx, port.QueryTasksOptions{
		Statuses: []model.TaskStatus{model.TaskStatusToDoThisWeek},
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not query week queue")
	}

	report := &WorkReport{
		InProgress: make([]model.WorkTask, 0, len(inProgress)),
	}

	for _, t := range planner.Sorted(inProgress) {
		workTask, err := m.enrich(ctx, t)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		report.InProgress = append(report.InProgress, *workTask)
	}

	if next, ok := planner.NextPickup(weekQueue); ok {
		workTask, err := m.enrich(ctx, next)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		report.NextPickup = workTask
	}

	return report, nil
}

func (m *TaskManager) enrich(ctx context.Context, task model.Task) (*model.WorkTask, error) {
	workTask := &model.WorkTask{
		Task:           task,
		RecentComments: []model.Comment{},
	}

	if task.GoalID != nil {
		goal, err := m.goalStore.GetGoalByID(ctx, *task.GoalID)
		switch {
		case err == nil:
			workTask.GoalName = goal.Name
		case errors.Is(err, port.ErrNotFound):
			slog.WarnContext(ctx, "task references unknown goal", slog.String("taskID", string(task.ID)), slog.String("goalID", string(*task.GoalID)))
		default:
			return nil, errors.Wrapf(err, "could not retrieve goal '%s'", *task.GoalID)
		}
	}

	if m.recentComments > 0 {
		limit := m.recentComments
		comments, err := m.goalStore.QueryComments(ctx, task.ID, port.QueryCommentsOptions{Limit: &limit})
		if err != nil {
			return nil, errors.Wrapf(err, "could not retrieve comments of task '%s'", task.ID)
		}

		workTask.RecentComments = comments
	}

	return workTask, nil
}

// UpdateTask applies the field updates then the status change, if any, as a
// user triggered transition.
func (m *TaskManager) UpdateTask(ctx context.Context, id model.TaskID, updates TaskUpdates) (model.Task, error) {
	var updated model.Task

	err := m.exclusive(ctx, func(ctx context.Context) error {
		task, err := m.taskStore.GetTaskByID(ctx, id)
		if err != nil {
			return errors.WithStack(err)
		}

		now := m.now()

		task, err = m.applyUpdates(ctx, task, updates, now)
		if err != nil {
			return errors.WithStack(err)
		}

		if updates.Status != nil {
			var activity *model.Activity

			task, activity, err = planner.ApplyStatus(task, *updates.Status, model.TransitionSourceUser, now)
			if err != nil {
				metrics.TotalRejectedTransitions.WithLabelValues(string(model.TransitionSourceUser)).Inc()
				return errors.WithStack(err)
			}

			if activity != nil {
				if err := m.taskStore.RecordActivities(ctx, *activity); err != nil {
					return errors.Wrap(err, "could not record activity")
				}

				metrics.TotalTransitions.WithLabelValues(string(model.TransitionSourceUser)).Inc()
			}
		}

		if task.Status == model.TaskStatusToDoThisWeek && !task.HasDueDate() {
			metrics.TotalRejectedTransitions.WithLabelValues(string(model.TransitionSourceUser)).Inc()
			return errors.WithStack(planner.NewInvalidTransitionError(task, task.Status, "a task committed to the week must keep its due date"))
		}

		if err := m.taskStore.SaveTask(ctx, task); err != nil {
			return errors.WithStack(err)
		}

		updated = task

		return nil
	})
	if err != nil {
		return model.Task{}, errors.WithStack(err)
	}

	return updated, nil
}

func (m *TaskManager) applyUpdates(ctx context.Context, task model.Task, updates TaskUpdates, now time.Time) (model.Task, error) {
	if err := updates.Validate(); err != nil {
		return model.Task{}, errors.WithStack(err)
	}

	if updates.GoalID != nil && *updates.GoalID != "" {
		if _, err := m.goalStore.GetGoalByID(ctx, *updates.GoalID); err != nil {
			if errors.Is(err, port.ErrNotFound) {
				return model.Task{}, errors.Wrapf(ErrInvalidInput, "unknown goal '%s'", *updates.GoalID)
			}

			return model.Task{}, errors.WithStack(err)
		}
	}

	task = updates.Apply(task)

	if updates.HasFieldChanges() {
		task.UpdatedAt = now
	}

	return task, nil
}

// CreateTask creates a task from the given fields. New tasks start in
// Backlog unless a status is given, in which case it is applied as a user
// transition.
func (m *TaskManager) CreateTask(ctx context.Context, name string, fields TaskUpdates) (model.Task, error) {
	if name == "" {
		return model.Task{}, errors.Wrap(ErrInvalidInput, "task name cannot be empty")
	}

	var created model.Task

	err := m.exclusive(ctx, func(ctx context.Context) error {
		now := m.now()

		task := model.NewTask(name)
		task.CreatedAt = now
		task.UpdatedAt = now

		task, err := m.applyUpdates(ctx, task, fields, now)
		if err != nil {
			return errors.WithStack(err)
		}

		var activity *model.Activity
		if fields.Status != nil {
			task, activity, err = planner.ApplyStatus(task, *fields.Status, model.TransitionSourceUser, now)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		if err := m.taskStore.SaveTask(ctx, task); err != nil {
			return errors.WithStack(err)
		}

		if activity != nil {
			if err := m.taskStore.RecordActivities(ctx, *activity); err != nil {
				return errors.Wrap(err, "could not record activity")
			}
		}

		created = task

		return nil
	})
	if err != nil {
		return model.Task{}, errors.WithStack(err)
	}

	slog.DebugContext(ctx, "task created", slog.String("taskID", string(created.ID)))

	return created, nil
}

func (m *TaskManager) GetTask(ctx context.Context, id model.TaskID) (model.Task, error) {
	task, err := m.taskStore.GetTaskByID(ctx, id)
	if err != nil {
		return model.Task{}, errors.WithStack(err)
	}

	return task, nil
}

func (m *TaskManager) QueryTasks(ctx context.Context, opts port.QueryTasksOptions) ([]model.Task, error) {
	tasks, err := m.taskStore.QueryTasks(ctx, opts)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return tasks, nil
}

func (m *TaskManager) DeleteTask(ctx context.Context, id model.TaskID) error {
	err := m.exclusive(ctx, func(ctx context.Context) error {
		return errors.WithStack(m.taskStore.DeleteTask(ctx, id))
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// CountTasks returns the number of tasks per status, every known status
// being present in the result.
func (m *TaskManager) CountTasks(ctx context.Context) (map[model.TaskStatus]int64, error) {
	counts, err := m.taskStore.CountTasks(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	for _, s := range model.TaskStatuses() {
		if _, exists := counts[s]; !exists {
			counts[s] = 0
		}
	}

	return counts, nil
}

func (m *TaskManager) QueryActivities(ctx context.Context, id model.TaskID, page, limit int) ([]model.Activity, error) {
	if _, err := m.taskStore.GetTaskByID(ctx, id); err != nil {
		return nil, errors.WithStack(err)
	}

	activities, err := m.taskStore.QueryActivities(ctx, port.QueryActivitiesOptions{
		TaskID: &id,
		Page:   &page,
		Limit:  &limit,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return activities, nil
}

func (m *TaskManager) AddComment(ctx context.Context, id model.TaskID, author string, body string) (model.Comment, error) {
	if body == "" {
		return model.Comment{}, errors.Wrap(ErrInvalidInput, "comment body cannot be empty")
	}

	if author == "" {
		author = string(model.TaskAssigneeUser)
	}

	if _, err := m.taskStore.GetTaskByID(ctx, id); err != nil {
		return model.Comment{}, errors.WithStack(err)
	}

	comment := model.Comment{
		ID:        model.NewCommentID(),
		TaskID:    id,
		Author:    author,
		Body:      body,
		CreatedAt: m.now(),
	}

	if err := m.goalStore.SaveComment(ctx, comment); err != nil {
		return model.Comment{}, errors.WithStack(err)
	}

	return comment, nil
}

func (m *TaskManager) CreateGoal(ctx context.Context, name string) (model.Goal, error) {
	if name == "" {
		return model.Goal{}, errors.Wrap(ErrInvalidInput, "goal name cannot be empty")
	}

	goal := model.Goal{
		ID:        model.NewGoalID(),
		Name:      name,
		CreatedAt: m.now(),
	}

	if err := m.goalStore.SaveGoal(ctx, goal); err != nil {
		return model.Goal{}, errors.WithStack(err)
	}

	return goal, nil
}

func (m *TaskManager) QueryGoals(ctx context.Context, page, limit int) ([]model.Goal, error) {
	goals, err := m.goalStore.QueryGoals(ctx, port.QueryGoalsOptions{
		Page:  &page,
		Limit: &limit,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return goals, nil
}

// Backup streams a snapshot of every task, goal, comment and activity.
func (m *TaskManager) Backup(ctx context.Context) (io.ReadCloser, error) {
	reader, err := m.snapshotable.GenerateSnapshot(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return reader, nil
}

func (m *TaskManager) RestoreBackup(ctx context.Context, r io.Reader) error {
	err := m.exclusive(ctx, func(ctx context.Context) error {
		return errors.WithStack(m.snapshotable.RestoreSnapshot(ctx, r))
	})
	if err != nil {
		return errors.WithStack(err)
	}

	slog.InfoContext(ctx, "backup restored")

	return nil
}

// exclusive runs fn while holding the manager lock, inside a store
// transaction. Callers queue until the lock is free or ctx is done.
func (m *TaskManager) exclusive(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case m.lock <- struct{}{}:
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
	defer func() {
		<-m.lock
	}()

	if err := m.taskStore.Transact(ctx, fn); err != nil {
		if !errors.Is(err, planner.ErrInvalidTransition) && !errors.Is(err, port.ErrNotFound) && !errors.Is(err, ErrInvalidInput) {
			slog.ErrorContext(ctx, "task store operation failed", slogx.Error(err))
		}

		return errors.WithStack(err)
	}

	return nil
}

func NewTaskManager(taskStore port.TaskStore, goalStore port.GoalStore, snapshotable port.Snapshotable, funcs ...TaskManagerOptionFunc) *TaskManager {
	opts := NewTaskManagerOptions(funcs...)

	location := opts.Location
	if location == nil {
		location = time.UTC
	}

	return &TaskManager{
		taskStore:      taskStore,
		goalStore:      goalStore,
		snapshotable:   snapshotable,
		lock:           make(chan struct{}, 1),
		weeklyBudget:   opts.WeeklyBudgetMinutes,
		location:       location,
		recentComments: opts.RecentComments,
		now:            opts.Now,
	}
}
