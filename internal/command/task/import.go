package task

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"cloud.google.com/go/civil"
	"github.com/bornholm/weekplan/internal/command/common"
	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/bornholm/weekplan/internal/http/handler/api"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

type importFile struct {
	Tasks []importTask `yaml:"tasks"`
}

type importTask struct {
	Name             string `yaml:"name"`
	Description      string `yaml:"description"`
	Status           string `yaml:"status"`
	Priority         string `yaml:"priority"`
	Category         string `yaml:"category"`
	Source           string `yaml:"source"`
	DueDate          string `yaml:"dueDate"`
	EstimatedMinutes int    `yaml:"estimatedMinutes"`
	Complexity       string `yaml:"complexity"`
	Goal             string `yaml:"goal"`
}

// importEntry is a task ready to be created, with its goal referenced by
// name.
type importEntry struct {
	Fields   api.TaskFields
	GoalName string
}

func ImportCommand() *cli.Command {
	flags := common.WithCommonFlags()
	return &cli.Command{
		Name:      "import",
		Usage:     "Create tasks from a yaml file, '-' reads from stdin",
		ArgsUsage: "<file>",
		Flags:     flags,
		Before:    common.ConfigSource(flags),
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != 1 {
				return errors.New("expected a file path")
			}

			var reader io.Reader = os.Stdin
			if path := ctx.Args().First(); path != "-" {
				file, err := os.Open(path)
				if err != nil {
					return errors.WithStack(err)
				}

				defer file.Close()

				reader = file
			}

			entries, err := parseImportFile(reader)
			if err != nil {
				return errors.Wrap(err, "could not parse import file")
			}

			weekplan, err := common.GetWeekplanClient(ctx)
			if err != nil {
				return errors.Wrap(err, "could not retrieve weekplan client")
			}

			goals, err := weekplan.ListGoals(ctx.Context)
			if err != nil {
				return errors.Wrap(err, "could not list goals")
			}

			goalIDs := make(map[string]model.GoalID, len(goals))
			for _, g := range goals {
				goalIDs[g.Name] = g.ID
			}

			created := make([]api.Task, 0, len(entries))

			for _, e := range entries {
				if e.GoalName != "" {
					goalID, exists := goalIDs[e.GoalName]
					if !exists {
						goal, err := weekplan.CreateGoal(ctx.Context, e.GoalName)
						if err != nil {
							return errors.Wrapf(err, "could not create goal '%s'", e.GoalName)
						}

						goalID = goal.ID
						goalIDs[e.GoalName] = goalID
					}

					e.Fields.GoalID = &goalID
				}

				task, err := weekplan.CreateTask(ctx.Context, e.Fields)
				if err != nil {
					return errors.Wrapf(err, "could not create task '%s'", *e.Fields.Name)
				}

				slog.DebugContext(ctx.Context, "task imported", slog.String("taskID", string(task.ID)))

				created = append(created, *task)
			}

			return common.Print(ctx, created, func(w io.Writer) error {
				if err := common.WriteTasks(w, created); err != nil {
					return errors.WithStack(err)
				}

				_, err := fmt.Fprintf(w, "\n%d task(s) imported\n", len(created))
				return err
			})
		},
	}
}

func parseImportFile(r io.Reader) ([]importEntry, error) {
	var file importFile

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(&file); err != nil {
		return nil, errors.WithStack(err)
	}

	entries := make([]importEntry, 0, len(file.Tasks))

	for i, t := range file.Tasks {
		entry, err := t.toEntry()
		if err != nil {
			return nil, errors.Wrapf(err, "invalid task #%d", i)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func (t importTask) toEntry() (importEntry, error) {
	if t.Name == "" {
		return importEntry{}, errors.New("missing task name")
	}

	name := t.Name

	entry := importEntry{
		Fields: api.TaskFields{
			Name: &name,
		},
		GoalName: t.Goal,
	}

	fields := &entry.Fields

	if t.Description != "" {
		description := t.Description
		fields.Description = &description
	}

	if t.Category != "" {
		category := t.Category
		fields.Category = &category
	}

	if t.Source != "" {
		source := t.Source
		fields.Source = &source
	}

	if t.Status != "" {
		status, err := model.ParseTaskStatus(t.Status)
		if err != nil {
			return importEntry{}, errors.WithStack(err)
		}
		fields.Status = &status
	}

	if t.Priority != "" {
		priority, err := model.ParseTaskPriority(t.Priority)
		if err != nil {
			return importEntry{}, errors.WithStack(err)
		}
		fields.Priority = &priority
	}

	if t.Complexity != "" {
		complexity, err := model.ParseTaskComplexity(t.Complexity)
		if err != nil {
			return importEntry{}, errors.WithStack(err)
		}
		fields.Complexity = &complexity
	}

	if t.DueDate != "" {
		dueDate, err := civil.ParseDate(t.DueDate)
		if err != nil {
			return importEntry{}, errors.Wrapf(err, "could not parse due date '%s'", t.DueDate)
		}
		fields.DueDate = &dueDate
	}

	if t.EstimatedMinutes > 0 {
		minutes := t.EstimatedMinutes
		fields.EstimatedMinutes = &minutes
	}

	return entry, nil
}
