package week

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/bornholm/weekplan/internal/command/common"
	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/bornholm/weekplan/internal/http/handler/api"
	jobWeek "github.com/bornholm/weekplan/internal/job/week"
	"github.com/bornholm/weekplan/pkg/client"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

const (
	paramBudget = "budget"
	paramAsync  = "async"
)

var (
	flagBudget = altsrc.NewIntFlag(&cli.IntFlag{
		Name:    paramBudget,
		Aliases: []string{"b"},
		Value:   0,
		Usage:   "Weekly budget in minutes, the server default is used when zero",
	})
	flagAsync = &cli.BoolFlag{
		Name:  paramAsync,
		Usage: "Run as a background job and wait for its completion",
	}
)

func ScheduleCommand() *cli.Command {
	flags := common.WithCommonFlags(flagBudget, flagAsync)
	return &cli.Command{
		Name:   "schedule",
		Usage:  "Fill the week queue within the weekly budget",
		Flags:  flags,
		Before: common.ConfigSource(flags),
		Action: func(ctx *cli.Context) error {
			weekplan, err := common.GetWeekplanClient(ctx)
			if err != nil {
				return errors.Wrap(err, "could not retrieve weekplan client")
			}

			budget := ctx.Int(paramBudget)

			if ctx.Bool(paramAsync) {
				return runJob(ctx, weekplan, jobWeek.JobTypeSchedule, budget)
			}

			res, err := weekplan.Schedule(ctx.Context, budget)
			if err != nil {
				return errors.Wrap(err, "could not schedule week")
			}

			return common.Print(ctx, res, func(w io.Writer) error {
				fmt.Fprintf(w, "Budget\t%s\n", common.FormatMinutes(res.WeeklyBudget))
				fmt.Fprintf(w, "Used\t%s\n", common.FormatMinutes(res.UsedMinutes))
				fmt.Fprintf(w, "Remaining\t%s\n", common.FormatMinutes(res.RemainingMinutes))

				for _, t := range res.PromotedTasks {
					fmt.Fprintf(w, "+\t%s\t%s\n", t.ID, t.Name)
				}

				for _, t := range res.DemotedTasks {
					fmt.Fprintf(w, "-\t%s\t%s\n", t.ID, t.Name)
				}

				return nil
			})
		},
	}
}

func PickupCommand() *cli.Command {
	flags := common.WithCommonFlags(flagAsync)
	return &cli.Command{
		Name:   "pickup",
		Usage:  "Start the most important task of the week queue",
		Flags:  flags,
		Before: common.ConfigSource(flags),
		Action: func(ctx *cli.Context) error {
			weekplan, err := common.GetWeekplanClient(ctx)
			if err != nil {
				return errors.Wrap(err, "could not retrieve weekplan client")
			}

			if ctx.Bool(paramAsync) {
				return runJob(ctx, weekplan, jobWeek.JobTypePickup, 0)
			}

			res, err := weekplan.Pickup(ctx.Context)
			if err != nil {
				return errors.Wrap(err, "could not pick up task")
			}

			return common.Print(ctx, res, func(w io.Writer) error {
				if res.Task == nil {
					fmt.Fprintln(w, res.Message)
					return nil
				}

				return common.WriteTasks(w, []api.Task{*res.Task})
			})
		},
	}
}

func WorkCommand() *cli.Command {
	flags := common.WithCommonFlags()
	return &cli.Command{
		Name:   "work",
		Usage:  "Show the tasks in progress and the next one to pick up",
		Flags:  flags,
		Before: common.ConfigSource(flags),
		Action: func(ctx *cli.Context) error {
			weekplan, err := common.GetWeekplanClient(ctx)
			if err != nil {
				return errors.Wrap(err, "could not retrieve weekplan client")
			}

			res, err := weekplan.Work(ctx.Context)
			if err != nil {
				return errors.Wrap(err, "could not retrieve work")
			}

			return common.Print(ctx, res, func(w io.Writer) error {
				fmt.Fprintln(w, "In progress")

				for _, t := range res.InProgress {
					writeWorkTask(w, t)
				}

				if res.NextPickup != nil {
					fmt.Fprintln(w, "\nNext pickup")
					writeWorkTask(w, *res.NextPickup)
				}

				return nil
			})
		},
	}
}

func writeWorkTask(w io.Writer, t api.WorkTask) {
	fmt.Fprintln(w, common.FormatTaskRow(t.Task))

	if t.GoalName != "" {
		fmt.Fprintf(w, "\tgoal\t%s\n", t.GoalName)
	}

	for _, c := range t.RecentComments {
		fmt.Fprintf(w, "\t%s\t%s\n", c.Author, c.Body)
	}
}

func runJob(ctx *cli.Context, weekplan *client.Client, jobType model.JobType, budget int) error {
	job, err := weekplan.ScheduleJob(ctx.Context, jobType, budget)
	if err != nil {
		return errors.Wrap(err, "could not schedule job")
	}

	slog.InfoContext(ctx.Context, "job scheduled, waiting for completion", slog.String("jobID", string(job.ID)))

	job, err = weekplan.WaitFor(ctx.Context, job.ID)
	if err != nil {
		return errors.Wrap(err, "could not wait for job")
	}

	if job.Error != "" {
		return errors.Errorf("job '%s' failed: %s", job.ID, job.Error)
	}

	return common.Print(ctx, job, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\n", job.ID, job.Status, job.Message)
		return err
	})
}
