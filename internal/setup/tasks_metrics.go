package setup

import (
	"context"
	"log/slog"
	"time"

	"github.com/bornholm/weekplan/internal/config"
	"github.com/bornholm/weekplan/internal/metrics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

var startTasksMetricsFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (struct{}, error) {
	taskManager, err := getTaskManager(ctx, conf)
	if err != nil {
		return struct{}{}, errors.Wrap(err, "could not create task manager from config")
	}

	go func() {
		ticker := time.NewTicker(conf.Metrics.RefreshInterval)
		defer ticker.Stop()

		ctx := context.Background()
		for {
			counts, err := taskManager.CountTasks(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "could not count tasks", slog.Any("error", errors.WithStack(err)))
			} else {
				for status, total := range counts {
					metrics.Tasks.With(prometheus.Labels{
						metrics.LabelStatus: string(status),
					}).Set(float64(total))
				}
			}

			<-ticker.C
		}
	}()

	return struct{}{}, nil
})
