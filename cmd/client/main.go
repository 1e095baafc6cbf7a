package main

import (
	"github.com/bornholm/weekplan/internal/command"
	"github.com/bornholm/weekplan/internal/command/task"
	"github.com/bornholm/weekplan/internal/command/week"
)

func main() {
	command.Main(
		"weekplan-cli", "a weekplan client tool",
		week.ScheduleCommand(),
		week.PickupCommand(),
		week.WorkCommand(),
		task.ListCommand(),
		task.StatusCommand(),
		task.AddCommand(),
		task.CommentCommand(),
		task.ImportCommand(),
	)
}
