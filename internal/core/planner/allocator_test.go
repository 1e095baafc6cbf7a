package planner

import (
	"math/rand"
	"slices"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

func TestAllocate(t *testing.T) {
	type testCase struct {
		Name             string
		Committed        []model.Task
		Candidates       []model.Task
		Budget           int
		ExpectedPromoted []model.TaskID
		ExpectedDemoted  []model.TaskID
		ExpectedUsed     int
		ExpectedBudget   int
	}

	testCases := []testCase{
		{
			Name: "fill then refuse equal or lower priority swap",
			Committed: []model.Task{
				newTestTask("T1", withStatus(model.TaskStatusToDoThisWeek), withPriority(model.TaskPriorityMedium), withMinutes(300), withDueDate(2026, time.October, 15)),
			},
			Candidates: []model.Task{
				newTestTask("T2", withPriority(model.TaskPriorityHigh), withMinutes(200), withDueDate(2026, time.October, 16)),
				newTestTask("T3", withPriority(model.TaskPriorityLow), withMinutes(250)),
			},
			Budget:           600,
			ExpectedPromoted: []model.TaskID{"T2"},
			ExpectedDemoted:  []model.TaskID{},
			ExpectedUsed:     500,
			ExpectedBudget:   600,
		},
		{
			Name: "swap weaker committed task",
			Committed: []model.Task{
				newTestTask("A", withStatus(model.TaskStatusToDoThisWeek), withPriority(model.TaskPriorityLow), withMinutes(50), withDueDate(2026, time.October, 15)),
			},
			Candidates: []model.Task{
				newTestTask("B", withPriority(model.TaskPriorityHigh), withMinutes(40), withDueDate(2026, time.October, 16)),
			},
			Budget:           60,
			ExpectedPromoted: []model.TaskID{"B"},
			ExpectedDemoted:  []model.TaskID{"A"},
			ExpectedUsed:     40,
			ExpectedBudget:   60,
		},
		{
			Name:             "empty sets",
			Committed:        []model.Task{},
			Candidates:       []model.Task{},
			Budget:           600,
			ExpectedPromoted: []model.TaskID{},
			ExpectedDemoted:  []model.TaskID{},
			ExpectedUsed:     0,
			ExpectedBudget:   600,
		},
		{
			Name:       "default budget",
			Committed:  nil,
			Candidates: []model.Task{newTestTask("C")},
			Budget:     0,
			// Unset estimate counts as 30 minutes
			ExpectedPromoted: []model.TaskID{"C"},
			ExpectedDemoted:  []model.TaskID{},
			ExpectedUsed:     30,
			ExpectedBudget:   DefaultWeeklyBudgetMinutes,
		},
		{
			Name: "strict inequality prevents equal priority swap",
			Committed: []model.Task{
				newTestTask("A", withStatus(model.TaskStatusToDoThisWeek), withPriority(model.TaskPriorityHigh), withMinutes(50), withDueDate(2026, time.October, 15)),
			},
			Candidates: []model.Task{
				newTestTask("B", withPriority(model.TaskPriorityHigh), withMinutes(20), withDueDate(2026, time.October, 13)),
			},
			Budget:           60,
			ExpectedPromoted: []model.TaskID{},
			ExpectedDemoted:  []model.TaskID{},
			ExpectedUsed:     50,
			ExpectedBudget:   60,
		},
		{
			Name: "swap refused when budget would be exceeded",
			Committed: []model.Task{
				newTestTask("A", withStatus(model.TaskStatusToDoThisWeek), withPriority(model.TaskPriorityLow), withMinutes(30), withDueDate(2026, time.October, 15)),
				newTestTask("M", withStatus(model.TaskStatusToDoThisWeek), withPriority(model.TaskPriorityMedium), withMinutes(30), withDueDate(2026, time.October, 15)),
			},
			Candidates: []model.Task{
				newTestTask("B", withPriority(model.TaskPriorityHigh), withMinutes(45)),
			},
			Budget:           60,
			ExpectedPromoted: []model.TaskID{},
			ExpectedDemoted:  []model.TaskID{},
			ExpectedUsed:     60,
			ExpectedBudget:   60,
		},
		{
			Name: "first fit in order, no best fit",
			Candidates: []model.Task{
				newTestTask("big", withPriority(model.TaskPriorityHigh), withMinutes(50)),
				newTestTask("small", withPriority(model.TaskPriorityMedium), withMinutes(20)),
				newTestTask("bigger", withPriority(model.TaskPriorityLow), withMinutes(70)),
			},
			Budget:           60,
			ExpectedPromoted: []model.TaskID{"big"},
			ExpectedDemoted:  []model.TaskID{},
			ExpectedUsed:     50,
			ExpectedBudget:   60,
		},
		{
			Name: "candidate due after this week is not dated",
			Candidates: []model.Task{
				newTestTask("next-week-high", withPriority(model.TaskPriorityHigh), withMinutes(60), withDueDate(2026, time.October, 20)),
				newTestTask("this-week-low", withPriority(model.TaskPriorityLow), withMinutes(60), withDueDate(2026, time.October, 18)),
			},
			Budget:           60,
			ExpectedPromoted: []model.TaskID{"next-week-high"},
			ExpectedDemoted:  []model.TaskID{},
			ExpectedUsed:     60,
			ExpectedBudget:   60,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			result, err := Allocate(tc.Committed, tc.Candidates, tc.Budget, testNow, time.UTC)
			if err != nil {
				t.Fatalf("%+v", errors.WithStack(err))
			}

			if e, g := tc.ExpectedPromoted, taskIDs(result.Promoted); !slices.Equal(e, g) {
				t.Errorf("result.Promoted: expected %v, got %v", e, g)
			}

			if e, g := tc.ExpectedDemoted, taskIDs(result.Demoted); !slices.Equal(e, g) {
				t.Errorf("result.Demoted: expected %v, got %v", e, g)
			}

			if e, g := tc.ExpectedUsed, result.UsedMinutes; e != g {
				t.Errorf("result.UsedMinutes: expected %v, got %v", e, g)
			}

			if e, g := tc.ExpectedBudget, result.WeeklyBudgetMinutes; e != g {
				t.Errorf("result.WeeklyBudgetMinutes: expected %v, got %v", e, g)
			}

			if e, g := len(result.Promoted)+len(result.Demoted), len(result.Activities); e != g {
				t.Errorf("len(result.Activities): expected %v, got %v", e, g)
			}

			for _, p := range result.Promoted {
				if e, g := model.TaskStatusToDoThisWeek, p.Status; e != g {
					t.Errorf("promoted task '%s' status: expected %v, got %v", p.ID, e, g)
				}

				if p.DueDate == nil {
					t.Errorf("promoted task '%s' should have a due date", p.ID)
				}
			}

			for _, d := range result.Demoted {
				if e, g := model.TaskStatusToBeScheduled, d.Status; e != g {
					t.Errorf("demoted task '%s' status: expected %v, got %v", d.ID, e, g)
				}
			}

			if t.Failed() {
				t.Logf("result: %s", spew.Sdump(result))
			}
		})
	}
}

func TestOrderCandidates(t *testing.T) {
	weekStart, weekEnd := CurrentWeekBounds(testNow, time.UTC)

	candidates := []model.Task{
		newTestTask("undated-high", withPriority(model.TaskPriorityHigh)),
		newTestTask("next-week-high", withPriority(model.TaskPriorityHigh), withDueDate(2026, time.October, 19)),
		newTestTask("dated-low", withPriority(model.TaskPriorityLow), withDueDate(2026, time.October, 13)),
		newTestTask("dated-medium-late", withPriority(model.TaskPriorityMedium), withDueDate(2026, time.October, 18)),
		newTestTask("dated-medium-early", withPriority(model.TaskPriorityMedium), withDueDate(2026, time.October, 12)),
		newTestTask("undated-low", withPriority(model.TaskPriorityLow)),
	}

	ordered := OrderCandidates(candidates, weekStart, weekEnd)

	expected := []model.TaskID{
		"dated-medium-early",
		"dated-medium-late",
		"dated-low",
		"next-week-high",
		"undated-high",
		"undated-low",
	}

	if e, g := expected, taskIDs(ordered); !slices.Equal(e, g) {
		t.Errorf("expected %v, got %v", e, g)
	}
}

func TestAllocateScenarioRemaining(t *testing.T) {
	committed := []model.Task{
		newTestTask("T1", withStatus(model.TaskStatusToDoThisWeek), withPriority(model.TaskPriorityMedium), withMinutes(300), withDueDate(2026, time.October, 15)),
	}

	candidates := []model.Task{
		newTestTask("T2", withPriority(model.TaskPriorityHigh), withMinutes(200), withDueDate(2026, time.October, 16)),
		newTestTask("T3", withPriority(model.TaskPriorityLow), withMinutes(250)),
	}

	result, err := Allocate(committed, candidates, 600, testNow, time.UTC)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 100, result.RemainingMinutes(); e != g {
		t.Errorf("result.RemainingMinutes(): expected %v, got %v", e, g)
	}

	// A dated task due later this week keeps its date
	if e, g := (civil.Date{Year: 2026, Month: time.October, Day: 16}), *result.Promoted[0].DueDate; e != g {
		t.Errorf("result.Promoted[0].DueDate: expected %v, got %v", e, g)
	}

	if e, g := model.TaskAssigneeAIAssistant, result.Promoted[0].Assignee; e != g {
		t.Errorf("result.Promoted[0].Assignee: expected %v, got %v", e, g)
	}

	if e, g := model.TaskStatusToBeScheduled, candidates[0].Status; e != g {
		t.Errorf("candidates should not be modified: expected %v, got %v", e, g)
	}
}

func TestAllocateDueDates(t *testing.T) {
	today := civil.Date{Year: 2026, Month: time.October, Day: 14}

	candidates := []model.Task{
		newTestTask("undated", withMinutes(10)),
		newTestTask("overdue-this-week", withMinutes(10), withDueDate(2026, time.October, 12)),
		newTestTask("overdue-last-week", withMinutes(10), withDueDate(2026, time.October, 2)),
		newTestTask("later-this-week", withMinutes(10), withDueDate(2026, time.October, 16)),
		newTestTask("next-month", withMinutes(10), withDueDate(2026, time.November, 20)),
	}

	result, err := Allocate(nil, candidates, 600, testNow, time.UTC)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	expected := map[model.TaskID]civil.Date{
		"undated":           today,
		"overdue-this-week": today,
		"overdue-last-week": today,
		"later-this-week":   {Year: 2026, Month: time.October, Day: 16},
		"next-month":        {Year: 2026, Month: time.November, Day: 20},
	}

	if e, g := len(expected), len(result.Promoted); e != g {
		t.Fatalf("len(result.Promoted): expected %v, got %v", e, g)
	}

	for _, p := range result.Promoted {
		if e, g := expected[p.ID], *p.DueDate; e != g {
			t.Errorf("task '%s' due date: expected %v, got %v", p.ID, e, g)
		}
	}
}

func TestAllocateWithdrawsTaskPromotedInSameRun(t *testing.T) {
	candidates := []model.Task{
		newTestTask("undated-high", withPriority(model.TaskPriorityHigh), withMinutes(60)),
		newTestTask("dated-low", withPriority(model.TaskPriorityLow), withMinutes(60), withDueDate(2026, time.October, 17)),
	}

	result, err := Allocate(nil, candidates, 100, testNow, time.UTC)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := []model.TaskID{"undated-high"}, taskIDs(result.Promoted); !slices.Equal(e, g) {
		t.Errorf("result.Promoted: expected %v, got %v", e, g)
	}

	if e, g := 0, len(result.Demoted); e != g {
		t.Errorf("len(result.Demoted): expected %v, got %v", e, g)
	}

	if e, g := 1, len(result.Activities); e != g {
		t.Fatalf("len(result.Activities): expected %v, got %v", e, g)
	}

	if e, g := model.TaskID("undated-high"), result.Activities[0].TaskID; e != g {
		t.Errorf("result.Activities[0].TaskID: expected %v, got %v", e, g)
	}

	if e, g := 60, result.UsedMinutes; e != g {
		t.Errorf("result.UsedMinutes: expected %v, got %v", e, g)
	}
}

func TestAllocateIdempotence(t *testing.T) {
	type testCase struct {
		Name       string
		Committed  []model.Task
		Candidates []model.Task
		Budget     int
	}

	testCases := []testCase{
		{
			Name: "fill only",
			Committed: []model.Task{
				newTestTask("T1", withStatus(model.TaskStatusToDoThisWeek), withPriority(model.TaskPriorityMedium), withMinutes(300), withDueDate(2026, time.October, 15)),
			},
			Candidates: []model.Task{
				newTestTask("T2", withPriority(model.TaskPriorityHigh), withMinutes(200), withDueDate(2026, time.October, 16)),
				newTestTask("T3", withPriority(model.TaskPriorityLow), withMinutes(250)),
			},
			Budget: 600,
		},
		{
			Name: "with swap",
			Committed: []model.Task{
				newTestTask("A", withStatus(model.TaskStatusToDoThisWeek), withPriority(model.TaskPriorityLow), withMinutes(50), withDueDate(2026, time.October, 15)),
			},
			Candidates: []model.Task{
				newTestTask("B", withPriority(model.TaskPriorityHigh), withMinutes(40), withDueDate(2026, time.October, 16)),
			},
			Budget: 60,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			first, err := Allocate(tc.Committed, tc.Candidates, tc.Budget, testNow, time.UTC)
			if err != nil {
				t.Fatalf("%+v", errors.WithStack(err))
			}

			committed, candidates := applyAllocation(tc.Committed, tc.Candidates, first)

			second, err := Allocate(committed, candidates, tc.Budget, testNow, time.UTC)
			if err != nil {
				t.Fatalf("%+v", errors.WithStack(err))
			}

			if e, g := 0, len(second.Promoted); e != g {
				t.Errorf("len(second.Promoted): expected %v, got %v", e, g)
			}

			if e, g := 0, len(second.Demoted); e != g {
				t.Errorf("len(second.Demoted): expected %v, got %v", e, g)
			}

			if e, g := first.UsedMinutes, second.UsedMinutes; e != g {
				t.Errorf("second.UsedMinutes: expected %v, got %v", e, g)
			}

			if t.Failed() {
				t.Logf("first: %s", spew.Sdump(first))
				t.Logf("second: %s", spew.Sdump(second))
			}
		})
	}
}

func TestAllocateSettlesAfterSuccessiveSwaps(t *testing.T) {
	committed := []model.Task{
		newTestTask("W1", withStatus(model.TaskStatusToDoThisWeek), withPriority(model.TaskPriorityLow), withMinutes(50), withDueDate(2026, time.October, 15)),
		newTestTask("W2", withStatus(model.TaskStatusToDoThisWeek), withPriority(model.TaskPriorityLow), withMinutes(50), withDueDate(2026, time.October, 15)),
	}

	candidates := []model.Task{
		newTestTask("C1", withPriority(model.TaskPriorityHigh), withMinutes(10), withDueDate(2026, time.October, 16)),
		newTestTask("C2", withPriority(model.TaskPriorityHigh), withMinutes(10), withDueDate(2026, time.October, 16)),
	}

	first, err := Allocate(committed, candidates, 100, testNow, time.UTC)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := []model.TaskID{"C1", "C2"}, taskIDs(first.Promoted); !slices.Equal(e, g) {
		t.Errorf("first.Promoted: expected %v, got %v", e, g)
	}

	if e, g := []model.TaskID{"W2", "W1"}, taskIDs(first.Demoted); !slices.Equal(e, g) {
		t.Errorf("first.Demoted: expected %v, got %v", e, g)
	}

	if e, g := 20, first.UsedMinutes; e != g {
		t.Errorf("first.UsedMinutes: expected %v, got %v", e, g)
	}

	// Each swap freed capacity, so a demoted task fits again on the next run
	committed, candidates = applyAllocation(committed, candidates, first)

	second, err := Allocate(committed, candidates, 100, testNow, time.UTC)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := []model.TaskID{"W1"}, taskIDs(second.Promoted); !slices.Equal(e, g) {
		t.Errorf("second.Promoted: expected %v, got %v", e, g)
	}

	if e, g := 0, len(second.Demoted); e != g {
		t.Errorf("len(second.Demoted): expected %v, got %v", e, g)
	}

	if e, g := 70, second.UsedMinutes; e != g {
		t.Errorf("second.UsedMinutes: expected %v, got %v", e, g)
	}

	committed, candidates = applyAllocation(committed, candidates, second)

	third, err := Allocate(committed, candidates, 100, testNow, time.UTC)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 0, len(third.Promoted)+len(third.Demoted); e != g {
		t.Errorf("third run: expected no change, got %s", spew.Sdump(third))
	}

	if e, g := 70, third.UsedMinutes; e != g {
		t.Errorf("third.UsedMinutes: expected %v, got %v", e, g)
	}

	if t.Failed() {
		t.Logf("first: %s", spew.Sdump(first))
		t.Logf("second: %s", spew.Sdump(second))
	}
}

func TestAllocateBudgetSafety(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	priorities := []model.TaskPriority{model.TaskPriorityHigh, model.TaskPriorityMedium, model.TaskPriorityLow}

	randomTask := func(id string, status model.TaskStatus, dated bool) model.Task {
		funcs := []taskOptionFunc{
			withStatus(status),
			withPriority(priorities[rnd.Intn(len(priorities))]),
		}

		if rnd.Intn(4) > 0 {
			funcs = append(funcs, withMinutes(rnd.Intn(120)+1))
		}

		if dated || rnd.Intn(2) == 0 {
			funcs = append(funcs, withDueDate(2026, time.October, 5+rnd.Intn(25)))
		}

		return newTestTask(id, funcs...)
	}

	for run := 0; run < 500; run++ {
		budget := rnd.Intn(600) + 1

		committed := make([]model.Task, 0)
		used := 0
		totalCommitted := rnd.Intn(6)
		for i := 0; i < totalCommitted; i++ {
			task := randomTask(string(rune('a'+i)), model.TaskStatusToDoThisWeek, true)
			if used+task.EffectiveMinutes() > budget {
				break
			}
			used += task.EffectiveMinutes()
			committed = append(committed, task)
		}

		candidates := make([]model.Task, 0)
		totalCandidates := rnd.Intn(10)
		for i := 0; i < totalCandidates; i++ {
			candidates = append(candidates, randomTask(string(rune('A'+i)), model.TaskStatusToBeScheduled, false))
		}

		result, err := Allocate(committed, candidates, budget, testNow, time.UTC)
		if err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}

		if result.UsedMinutes > result.WeeklyBudgetMinutes {
			t.Fatalf("run %d: used minutes %d exceed budget %d: %s", run, result.UsedMinutes, result.WeeklyBudgetMinutes, spew.Sdump(result))
		}

		week, _ := applyAllocation(committed, candidates, result)
		if e, g := TotalMinutes(week), result.UsedMinutes; e != g {
			t.Fatalf("run %d: used minutes: expected %d, got %d", run, e, g)
		}
	}
}

// applyAllocation returns the committed and candidate sets as they would be
// read back from the store after the given allocation was persisted.
func applyAllocation(committed, candidates []model.Task, result *AllocationResult) ([]model.Task, []model.Task) {
	nextCommitted := make([]model.Task, 0)
	nextCandidates := make([]model.Task, 0)

	for _, c := range committed {
		if idx := slices.IndexFunc(result.Demoted, func(d model.Task) bool { return d.ID == c.ID }); idx != -1 {
			nextCandidates = append(nextCandidates, result.Demoted[idx])
			continue
		}
		nextCommitted = append(nextCommitted, c)
	}

	for _, c := range candidates {
		if idx := slices.IndexFunc(result.Promoted, func(p model.Task) bool { return p.ID == c.ID }); idx != -1 {
			nextCommitted = append(nextCommitted, result.Promoted[idx])
			continue
		}
		nextCandidates = append(nextCandidates, c)
	}

	return nextCommitted, nextCandidates
}
