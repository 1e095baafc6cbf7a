package planner

import (
	"slices"
	"time"

	"cloud.google.com/go/civil"
	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/pkg/errors"
)

const DefaultWeeklyBudgetMinutes = 600

type AllocationResult struct {
	Promoted            []model.Task
	Demoted             []model.Task
	Activities          []model.Activity
	UsedMinutes         int
	WeeklyBudgetMinutes int
}

// RemainingMinutes returns the unallocated part of the budget, never below zero.
func (r *AllocationResult) RemainingMinutes() int {
	return max(r.WeeklyBudgetMinutes-r.UsedMinutes, 0)
}

// Allocate fills the weekly queue with candidates under the given budget,
// then swaps weaker committed tasks for strictly more important candidates
// that did not fit. committed are the tasks in ToDoThisWeek, candidates the
// tasks in ToBeScheduled. Inputs are not modified.
//
// A non-nil error means a status transition was rejected and the whole run
// must be discarded.
func Allocate(committed []model.Task, candidates []model.Task, budgetMinutes int, now time.Time, loc *time.Location) (*AllocationResult, error) {
	if budgetMinutes <= 0 {
		budgetMinutes = DefaultWeeklyBudgetMinutes
	}

	weekStart, weekEnd := CurrentWeekBounds(now, loc)

	a := &allocation{
		budget: budgetMinutes,
		used:   TotalMinutes(committed),
		today:  Today(now, loc),
		now:    now,
	}

	ordered := OrderCandidates(candidates, weekStart, weekEnd)

	remaining, err := a.fill(ordered)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := a.swap(committed, remaining); err != nil {
		return nil, errors.WithStack(err)
	}

	return &AllocationResult{
		Promoted:            nonNil(a.promoted),
		Demoted:             nonNil(a.demoted),
		Activities:          nonNil(a.activities),
		UsedMinutes:         a.used,
		WeeklyBudgetMinutes: a.budget,
	}, nil
}

// TotalMinutes sums the effective minutes of the given tasks.
func TotalMinutes(tasks []model.Task) int {
	total := 0
	for _, t := range tasks {
		total += t.EffectiveMinutes()
	}
	return total
}

// OrderCandidates returns candidates due within [weekStart, weekEnd) first,
// then the others, each partition sorted with Compare.
func OrderCandidates(candidates []model.Task, weekStart, weekEnd civil.Date) []model.Task {
	dated := make([]model.Task, 0, len(candidates))
	undated := make([]model.Task, 0, len(candidates))

	for _, c := range candidates {
		if c.DueDate != nil && InWeek(*c.DueDate, weekStart, weekEnd) {
			dated = append(dated, c)
		} else {
			undated = append(undated, c)
		}
	}

	return append(Sorted(dated), Sorted(undated)...)
}

type allocation struct {
	budget int
	used   int
	today  civil.Date
	now    time.Time

	promoted   []model.Task
	demoted    []model.Task
	activities []model.Activity
}

// fill promotes candidates in order while they fit the budget. Candidates
// that do not fit are returned, in order, for the swap phase.
func (a *allocation) fill(ordered []model.Task) ([]model.Task, error) {
	remaining := make([]model.Task, 0)

	for _, candidate := range ordered {
		minutes := candidate.EffectiveMinutes()

		if a.used+minutes > a.budget {
			remaining = append(remaining, candidate)
			continue
		}

		if err := a.promote(candidate); err != nil {
			return nil, errors.WithStack(err)
		}

		a.used += minutes
	}

	return remaining, nil
}

// swap displaces the weakest task of the current week for each remaining
// candidate that is strictly more important and fits once the weakest is gone.
func (a *allocation) swap(committed []model.Task, remaining []model.Task) error {
	currentWeek := make([]model.Task, 0, len(committed)+len(a.promoted))
	currentWeek = append(currentWeek, committed...)
	currentWeek = append(currentWeek, a.promoted...)

	for _, candidate := range remaining {
		if len(currentWeek) == 0 {
			return nil
		}

		weakestIndex := weakest(currentWeek)
		weakestTask := currentWeek[weakestIndex]

		if Score(candidate) >= Score(weakestTask) {
			continue
		}

		used := a.used - weakestTask.EffectiveMinutes() + candidate.EffectiveMinutes()
		if used > a.budget {
			continue
		}

		if err := a.displace(weakestTask); err != nil {
			return errors.WithStack(err)
		}

		if err := a.promote(candidate); err != nil {
			return errors.WithStack(err)
		}

		a.used = used

		currentWeek = slices.Delete(currentWeek, weakestIndex, weakestIndex+1)
		currentWeek = append(currentWeek, a.promoted[len(a.promoted)-1])
	}

	return nil
}

func (a *allocation) promote(candidate model.Task) error {
	task := candidate.Clone()

	if task.DueDate == nil || task.DueDate.Before(a.today) {
		today := a.today
		task.DueDate = &today
	}

	promoted, activity, err := ApplyStatus(task, model.TaskStatusToDoThisWeek, model.TransitionSourceScheduler, a.now)
	if err != nil {
		return errors.Wrapf(err, "could not promote task '%s'", candidate.ID)
	}

	if activity == nil {
		return errors.Errorf("could not promote task '%s': task is already committed", candidate.ID)
	}

	a.promoted = append(a.promoted, promoted)
	a.activities = append(a.activities, *activity)

	return nil
}

// displace removes a task from the current week. A task promoted earlier in
// the same run is simply withdrawn, leaving it as a candidate.
func (a *allocation) displace(task model.Task) error {
	if idx := slices.IndexFunc(a.promoted, func(t model.Task) bool { return t.ID == task.ID }); idx != -1 {
		a.promoted = slices.Delete(a.promoted, idx, idx+1)
		a.activities = slices.DeleteFunc(a.activities, func(act model.Activity) bool { return act.TaskID == task.ID })
		return nil
	}

	demoted, activity, err := ApplyStatus(task, model.TaskStatusToBeScheduled, model.TransitionSourceScheduler, a.now)
	if err != nil {
		return errors.Wrapf(err, "could not demote task '%s'", task.ID)
	}

	if activity == nil {
		return errors.Errorf("could not demote task '%s': task is not committed", task.ID)
	}

	a.demoted = append(a.demoted, demoted)
	a.activities = append(a.activities, *activity)

	return nil
}

// weakest returns the index of the task ranked last by Compare, i.e. the
// one with the highest score.
func weakest(tasks []model.Task) int {
	idx := 0
	for i := 1; i < len(tasks); i++ {
		if Compare(tasks[i], tasks[idx]) > 0 {
			idx = i
		}
	}
	return idx
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return make([]T, 0)
	}
	return s
}
