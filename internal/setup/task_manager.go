package setup

import (
	"context"
	"time"

	"github.com/bornholm/weekplan/internal/config"
	"github.com/bornholm/weekplan/internal/core/service"
	"github.com/pkg/errors"
)

var getTaskManager = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*service.TaskManager, error) {
	store, err := getGormStoreFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create store from config")
	}

	goalStore, err := getGoalStoreFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create goal store from config")
	}

	location, err := time.LoadLocation(conf.Scheduler.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "could not load timezone '%s'", conf.Scheduler.Timezone)
	}

	taskManager := service.NewTaskManager(
		store, goalStore, store,
		service.WithTaskManagerWeeklyBudget(conf.Scheduler.WeeklyBudget),
		service.WithTaskManagerLocation(location),
		service.WithTaskManagerRecentComments(conf.Scheduler.RecentComments),
	)

	return taskManager, nil
})
