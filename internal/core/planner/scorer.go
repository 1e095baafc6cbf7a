package planner

import (
	"cmp"
	"slices"

	"cloud.google.com/go/civil"
	"github.com/bornholm/weekplan/internal/core/model"
)

// Score ranks a task by priority tier. Lower is more important.
func Score(task model.Task) int {
	switch task.Priority {
	case model.TaskPriorityHigh:
		return 0
	case model.TaskPriorityMedium:
		return 1
	default:
		return 2
	}
}

// Compare orders tasks by score, then by ascending due date with undated
// tasks last. Creation time and id keep the ordering deterministic.
func Compare(a, b model.Task) int {
	if c := cmp.Compare(Score(a), Score(b)); c != 0 {
		return c
	}

	if c := compareDueDates(a.DueDate, b.DueDate); c != 0 {
		return c
	}

	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}

	return cmp.Compare(a.ID, b.ID)
}

// Sorted returns a sorted copy of the given tasks.
func Sorted(tasks []model.Task) []model.Task {
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, Compare)
	return sorted
}

func compareDueDates(a, b *civil.Date) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return compareDates(*a, *b)
	}
}

func compareDates(a, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
