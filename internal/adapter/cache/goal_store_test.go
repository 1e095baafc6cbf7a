package cache

import (
	"context"
	"testing"
	"time"

	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/bornholm/weekplan/internal/core/port"
	"github.com/pkg/errors"
)

func TestGoalStore(t *testing.T) {
	backend := &countingGoalStore{
		goals: map[model.GoalID]model.Goal{
			"goal": {ID: "goal", Name: "Ship v1"},
		},
	}

	store := NewGoalStore(backend, 10, time.Minute)
	ctx := context.Background()

	for range 3 {
		goal, err := store.GetGoalByID(ctx, "goal")
		if err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}

		if e, g := "Ship v1", goal.Name; e != g {
			t.Errorf("goal.Name: expected %v, got %v", e, g)
		}
	}

	if e, g := 1, backend.gets; e != g {
		t.Errorf("backend.gets: expected %v, got %v", e, g)
	}

	if err := store.SaveGoal(ctx, model.Goal{ID: "goal", Name: "Ship v2"}); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	goal, err := store.GetGoalByID(ctx, "goal")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := "Ship v2", goal.Name; e != g {
		t.Errorf("goal.Name: expected %v, got %v", e, g)
	}

	if e, g := 2, backend.gets; e != g {
		t.Errorf("backend.gets: expected %v, got %v", e, g)
	}

	if _, err := store.GetGoalByID(ctx, "unknown"); !errors.Is(err, port.ErrNotFound) {
		t.Errorf("expected port.ErrNotFound, got %v", err)
	}
}

type countingGoalStore struct {
	port.GoalStore
	goals map[model.GoalID]model.Goal
	gets  int
}

func (s *countingGoalStore) GetGoalByID(ctx context.Context, id model.GoalID) (model.Goal, error) {
	s.gets++

	goal, exists := s.goals[id]
	if !exists {
		return model.Goal{}, errors.WithStack(port.ErrNotFound)
	}

	return goal, nil
}

func (s *countingGoalStore) SaveGoal(ctx context.Context, goal model.Goal) error {
	s.goals[goal.ID] = goal
	return nil
}
