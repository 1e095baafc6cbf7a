package setup

import (
	"context"

	"github.com/bornholm/weekplan/internal/config"
	"github.com/bornholm/weekplan/internal/http/handler/api"
	"github.com/pkg/errors"
)

func getAPIHandlerFromConfig(ctx context.Context, conf *config.Config) (*api.Handler, error) {
	taskManager, err := getTaskManager(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create task manager from config")
	}

	jobRunner, err := getJobRunner(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create job runner from config")
	}

	handler := api.NewHandler(taskManager, jobRunner)

	return handler, nil
}
