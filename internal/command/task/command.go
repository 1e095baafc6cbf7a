package task

import (
	"fmt"
	"io"

	"cloud.google.com/go/civil"
	"github.com/bornholm/weekplan/internal/command/common"
	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/bornholm/weekplan/internal/http/handler/api"
	"github.com/bornholm/weekplan/pkg/client"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const (
	paramStatus      = "status"
	paramPriority    = "priority"
	paramDueDate     = "due"
	paramEstimate    = "estimate"
	paramDescription = "description"
	paramGoal        = "goal"
	paramLimit       = "limit"
)

func ListCommand() *cli.Command {
	flags := common.WithCommonFlags(
		&cli.StringSliceFlag{
			Name:  paramStatus,
			Usage: "Only list tasks with the given statuses",
		},
		&cli.IntFlag{
			Name:  paramLimit,
			Value: 50,
			Usage: "Maximum number of tasks to list",
		},
	)
	return &cli.Command{
		Name:   "tasks",
		Usage:  "List tasks",
		Flags:  flags,
		Before: common.ConfigSource(flags),
		Action: func(ctx *cli.Context) error {
			weekplan, err := common.GetWeekplanClient(ctx)
			if err != nil {
				return errors.Wrap(err, "could not retrieve weekplan client")
			}

			opts := client.ListTasksOptions{
				Limit: ctx.Int(paramLimit),
			}

			for _, raw := range ctx.StringSlice(paramStatus) {
				status, err := model.ParseTaskStatus(raw)
				if err != nil {
					return errors.WithStack(err)
				}

				opts.Statuses = append(opts.Statuses, status)
			}

			tasks, err := weekplan.ListTasks(ctx.Context, opts)
			if err != nil {
				return errors.Wrap(err, "could not list tasks")
			}

			return common.Print(ctx, tasks, func(w io.Writer) error {
				return common.WriteTasks(w, tasks)
			})
		},
	}
}

func StatusCommand() *cli.Command {
	flags := common.WithCommonFlags()
	return &cli.Command{
		Name:      "status",
		Usage:     "Change the status of a task",
		ArgsUsage: "<task-id> <status>",
		Flags:     flags,
		Before:    common.ConfigSource(flags),
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != 2 {
				return errors.New("expected a task id and a status")
			}

			taskID := model.TaskID(ctx.Args().Get(0))

			status, err := model.ParseTaskStatus(ctx.Args().Get(1))
			if err != nil {
				return errors.WithStack(err)
			}

			weekplan, err := common.GetWeekplanClient(ctx)
			if err != nil {
				return errors.Wrap(err, "could not retrieve weekplan client")
			}

			task, err := weekplan.UpdateStatus(ctx.Context, taskID, status)
			if err != nil {
				return errors.Wrapf(err, "could not change status of task '%s'", taskID)
			}

			return common.Print(ctx, task, func(w io.Writer) error {
				return common.WriteTasks(w, []api.Task{*task})
			})
		},
	}
}

func AddCommand() *cli.Command {
	flags := common.WithCommonFlags(
		&cli.StringFlag{
			Name:  paramDescription,
			Usage: "Task description",
		},
		&cli.StringFlag{
			Name:  paramPriority,
			Value: string(model.TaskPriorityMedium),
			Usage: "Task priority (High, Medium or Low)",
		},
		&cli.StringFlag{
			Name:  paramStatus,
			Usage: "Initial status, Backlog when empty",
		},
		&cli.StringFlag{
			Name:  paramDueDate,
			Usage: "Due date, formatted as YYYY-MM-DD",
		},
		&cli.IntFlag{
			Name:  paramEstimate,
			Usage: "Estimated duration in minutes",
		},
		&cli.StringFlag{
			Name:  paramGoal,
			Usage: "Goal identifier",
		},
	)
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a task",
		ArgsUsage: "<name>",
		Flags:     flags,
		Before:    common.ConfigSource(flags),
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != 1 {
				return errors.New("expected a task name")
			}

			name := ctx.Args().First()

			fields := api.TaskFields{
				Name: &name,
			}

			if description := ctx.String(paramDescription); description != "" {
				fields.Description = &description
			}

			priority, err := model.ParseTaskPriority(ctx.String(paramPriority))
			if err != nil {
				return errors.WithStack(err)
			}

			fields.Priority = &priority

			if raw := ctx.String(paramStatus); raw != "" {
				status, err := model.ParseTaskStatus(raw)
				if err != nil {
					return errors.WithStack(err)
				}

				fields.Status = &status
			}

			if raw := ctx.String(paramDueDate); raw != "" {
				dueDate, err := civil.ParseDate(raw)
				if err != nil {
					return errors.Wrapf(err, "could not parse due date '%s'", raw)
				}

				fields.DueDate = &dueDate
			}

			if estimate := ctx.Int(paramEstimate); estimate > 0 {
				fields.EstimatedMinutes = &estimate
			}

			if raw := ctx.String(paramGoal); raw != "" {
				goalID := model.GoalID(raw)
				fields.GoalID = &goalID
			}

			weekplan, err := common.GetWeekplanClient(ctx)
			if err != nil {
				return errors.Wrap(err, "could not retrieve weekplan client")
			}

			task, err := weekplan.CreateTask(ctx.Context, fields)
			if err != nil {
				return errors.Wrap(err, "could not create task")
			}

			return common.Print(ctx, task, func(w io.Writer) error {
				return common.WriteTasks(w, []api.Task{*task})
			})
		},
	}
}

func CommentCommand() *cli.Command {
	flags := common.WithCommonFlags()
	return &cli.Command{
		Name:      "comment",
		Usage:     "Comment a task",
		ArgsUsage: "<task-id> <comment>",
		Flags:     flags,
		Before:    common.ConfigSource(flags),
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != 2 {
				return errors.New("expected a task id and a comment")
			}

			taskID := model.TaskID(ctx.Args().Get(0))

			weekplan, err := common.GetWeekplanClient(ctx)
			if err != nil {
				return errors.Wrap(err, "could not retrieve weekplan client")
			}

			comment, err := weekplan.AddComment(ctx.Context, taskID, ctx.Args().Get(1))
			if err != nil {
				return errors.Wrapf(err, "could not comment task '%s'", taskID)
			}

			return common.Print(ctx, comment, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s\t%s\t%s\n", comment.ID, comment.Author, comment.Body)
				return err
			})
		},
	}
}
