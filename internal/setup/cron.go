package setup

import (
	"context"
	"log/slog"
	"time"

	"github.com/bornholm/go-x/slogx"
	"github.com/bornholm/weekplan/internal/config"
	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/bornholm/weekplan/internal/job/week"
	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"github.com/robfig/cron"
)

// NewCronFromConfig returns the periodic triggers enqueuing week jobs
// into the job runner. The returned scheduler is not started.
func NewCronFromConfig(ctx context.Context, conf *config.Config) (*cron.Cron, error) {
	jobRunner, err := getJobRunner(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create job runner from config")
	}

	location, err := time.LoadLocation(conf.Scheduler.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "could not load timezone '%s'", conf.Scheduler.Timezone)
	}

	c := cron.NewWithLocation(location)

	enqueue := func(newJob func() model.Job) func() {
		return func() {
			job := newJob()

			ctx := slogx.WithAttrs(context.Background(),
				slog.String("jobID", string(job.ID())),
				slog.String("jobType", string(job.Type())),
			)

			slog.DebugContext(ctx, "enqueuing periodic job")

			if err := jobRunner.ScheduleJob(ctx, job); err != nil {
				err = errors.WithStack(err)
				slog.ErrorContext(ctx, "could not enqueue periodic job", slogx.Error(err))
				sentry.CaptureException(err)
			}
		}
	}

	triggers := conf.Scheduler.Cron

	if triggers.Schedule.Enabled {
		// Zero lets the task manager fall back on its configured budget
		err := c.AddFunc(triggers.Schedule.Spec, enqueue(func() model.Job { return week.NewScheduleJob(0) }))
		if err != nil {
			return nil, errors.Wrapf(err, "could not register schedule trigger '%s'", triggers.Schedule.Spec)
		}
	}

	if triggers.Pickup.Enabled {
		err := c.AddFunc(triggers.Pickup.Spec, enqueue(func() model.Job { return week.NewPickupJob() }))
		if err != nil {
			return nil, errors.Wrapf(err, "could not register pickup trigger '%s'", triggers.Pickup.Spec)
		}
	}

	return c, nil
}
