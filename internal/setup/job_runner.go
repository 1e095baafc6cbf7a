package setup

import (
	"context"
	"log/slog"
	"time"

	"github.com/bornholm/weekplan/internal/config"
	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/bornholm/weekplan/internal/core/port"
	"github.com/bornholm/weekplan/internal/job/week"
	"github.com/bornholm/weekplan/internal/metrics"
	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

var JobRunner = NewRegistry[port.JobRunner]()

var getJobRunner = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (port.JobRunner, error) {
	jobRunner, err := JobRunner.From(conf.JobRunner.URI)
	if err != nil {
		return nil, errors.Wrapf(err, "could not retrieve job runner for uri '%s'", conf.JobRunner.URI)
	}

	if err := setupJobHandlers(ctx, conf, jobRunner); err != nil {
		return nil, errors.WithStack(err)
	}

	go func() {
		jobRunnerCtx := context.Background()
		backoff := time.Second
		for {
			start := time.Now()
			if err := jobRunner.Run(jobRunnerCtx); err != nil {
				slog.ErrorContext(jobRunnerCtx, "error while running job runner", slog.Any("error", errors.WithStack(err)))
			}
			time.Sleep(backoff)
			if time.Since(start) > backoff/2 {
				backoff = time.Second
			} else {
				backoff *= 2
			}
		}
	}()

	// Collect jobs metrics
	go func() {
		ticker := time.NewTicker(conf.Metrics.RefreshInterval)
		defer ticker.Stop()

		ctx := context.Background()
		for {
			if err := refreshJobsMetrics(ctx, jobRunner); err != nil {
				slog.ErrorContext(ctx, "could not refresh jobs metrics", slog.Any("error", errors.WithStack(err)))
			}

			<-ticker.C
		}
	}()

	return jobRunner, nil
})

func refreshJobsMetrics(ctx context.Context, jobRunner port.JobRunner) error {
	jobs, err := jobRunner.ListJobs(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	stats := map[port.JobStatus]float64{
		port.JobStatusPending:   0,
		port.JobStatusRunning:   0,
		port.JobStatusFailed:    0,
		port.JobStatusSucceeded: 0,
	}
	for _, j := range jobs {
		stats[j.Status] += 1
	}

	for status, total := range stats {
		metrics.Jobs.With(prometheus.Labels{
			metrics.LabelStatus: string(status),
		}).Set(total)
	}

	return nil
}

func setupJobHandlers(ctx context.Context, conf *config.Config, jobRunner port.JobRunner) error {
	taskManager, err := getTaskManager(ctx, conf)
	if err != nil {
		return errors.Wrap(err, "could not create task manager from config")
	}

	jobRunner.RegisterJob(week.JobTypeSchedule, withFailureReport(week.NewScheduleHandler(taskManager)))
	jobRunner.RegisterJob(week.JobTypePickup, withFailureReport(week.NewPickupHandler(taskManager)))

	return nil
}

// withFailureReport forwards handler errors to sentry. The capture is a
// no-op when sentry is not initialized.
func withFailureReport(handler port.JobHandler) port.JobHandler {
	return port.JobHandlerFunc(func(ctx context.Context, job model.Job, events chan port.JobEvent) error {
		if err := handler.Handle(ctx, job, events); err != nil {
			if !errors.Is(err, context.Canceled) {
				sentry.CaptureException(err)
			}

			return errors.WithStack(err)
		}

		return nil
	})
}
