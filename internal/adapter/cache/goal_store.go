package cache

import (
	"context"
	"time"

	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/bornholm/weekplan/internal/core/port"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

type GoalStore struct {
	port.GoalStore
	goals *expirable.LRU[model.GoalID, model.Goal]
}

// GetGoalByID implements [port.GoalStore].
func (s *GoalStore) GetGoalByID(ctx context.Context, id model.GoalID) (model.Goal, error) {
	if goal, exists := s.goals.Get(id); exists {
		return goal, nil
	}

	goal, err := s.GoalStore.GetGoalByID(ctx, id)
	if err != nil {
		return model.Goal{}, err
	}

	s.goals.Add(id, goal)

	return goal, nil
}

// SaveGoal implements [port.GoalStore].
func (s *GoalStore) SaveGoal(ctx context.Context, goal model.Goal) error {
	defer s.goals.Remove(goal.ID)

	return s.GoalStore.SaveGoal(ctx, goal)
}

func NewGoalStore(backend port.GoalStore, size int, ttl time.Duration) *GoalStore {
	return &GoalStore{
		GoalStore: backend,
		goals:     expirable.NewLRU[model.GoalID, model.Goal](size, nil, ttl),
	}
}

var _ port.GoalStore = &GoalStore{}
