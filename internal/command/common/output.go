package common

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bornholm/weekplan/internal/http/handler/api"
	"github.com/docker/go-units"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// Print writes v as indented JSON when --json is set, or calls table
// otherwise.
func Print(ctx *cli.Context, v any, table func(w io.Writer) error) error {
	out := ctx.App.Writer
	if out == nil {
		out = os.Stdout
	}

	if IsJSONOutput(ctx) {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(v); err != nil {
			return errors.WithStack(err)
		}

		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	if err := table(tw); err != nil {
		return errors.WithStack(err)
	}

	if err := tw.Flush(); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func FormatMinutes(minutes int) string {
	if minutes <= 0 {
		return "-"
	}

	return units.HumanDuration(time.Duration(minutes) * time.Minute)
}

func FormatTaskRow(t api.Task) string {
	dueDate := "-"
	if t.DueDate != nil {
		dueDate = t.DueDate.String()
	}

	estimate := "-"
	if t.EstimatedMinutes != nil {
		estimate = FormatMinutes(*t.EstimatedMinutes)
	}

	return strings.Join([]string{
		string(t.ID),
		t.Name,
		string(t.Status),
		string(t.Priority),
		dueDate,
		estimate,
		humanize.Time(t.UpdatedAt),
	}, "\t")
}

const TaskHeader = "ID\tNAME\tSTATUS\tPRIORITY\tDUE\tESTIMATE\tUPDATED"

func WriteTasks(w io.Writer, tasks []api.Task) error {
	if _, err := fmt.Fprintln(w, TaskHeader); err != nil {
		return errors.WithStack(err)
	}

	for _, t := range tasks {
		if _, err := fmt.Fprintln(w, FormatTaskRow(t)); err != nil {
			return errors.WithStack(err)
		}
	}

	return nil
}
