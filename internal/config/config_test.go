package config

import (
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestParseDefaults(t *testing.T) {
	conf, err := Parse()
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 600, conf.Scheduler.WeeklyBudget; e != g {
		t.Errorf("conf.Scheduler.WeeklyBudget: expected %v, got %v", e, g)
	}

	if e, g := slog.LevelInfo, conf.Logger.Level; e != g {
		t.Errorf("conf.Logger.Level: expected %v, got %v", e, g)
	}

	if e, g := "memory://?parallelism=1", conf.JobRunner.URI; e != g {
		t.Errorf("conf.JobRunner.URI: expected %v, got %v", e, g)
	}

	if !conf.Scheduler.Cron.Schedule.Enabled {
		t.Errorf("conf.Scheduler.Cron.Schedule.Enabled: expected true")
	}

	if conf.Scheduler.Cron.Pickup.Enabled {
		t.Errorf("conf.Scheduler.Cron.Pickup.Enabled: expected false")
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("WEEKPLAN_LOGGER_LEVEL", "debug")
	t.Setenv("WEEKPLAN_SCHEDULER_WEEKLY_BUDGET", "480")
	t.Setenv("WEEKPLAN_SCHEDULER_TIMEZONE", "Europe/Paris")
	t.Setenv("WEEKPLAN_SCHEDULER_CRON_PICKUP_ENABLED", "true")
	t.Setenv("WEEKPLAN_HTTP_CORS_ALLOWED_ORIGINS", "http://localhost:3000,https://dashboard.example.com")
	t.Setenv("WEEKPLAN_HTTP_RATE_LIMIT_INTERVAL", "1s")
	t.Setenv("WEEKPLAN_STORAGE_DATABASE_DSN", "/data/weekplan.sqlite")

	conf, err := Parse()
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := slog.LevelDebug, conf.Logger.Level; e != g {
		t.Errorf("conf.Logger.Level: expected %v, got %v", e, g)
	}

	if e, g := 480, conf.Scheduler.WeeklyBudget; e != g {
		t.Errorf("conf.Scheduler.WeeklyBudget: expected %v, got %v", e, g)
	}

	if e, g := "Europe/Paris", conf.Scheduler.Timezone; e != g {
		t.Errorf("conf.Scheduler.Timezone: expected %v, got %v", e, g)
	}

	if !conf.Scheduler.Cron.Pickup.Enabled {
		t.Errorf("conf.Scheduler.Cron.Pickup.Enabled: expected true")
	}

	if e, g := []string{"http://localhost:3000", "https://dashboard.example.com"}, conf.HTTP.CORS.AllowedOrigins; !slices.Equal(e, g) {
		t.Errorf("conf.HTTP.CORS.AllowedOrigins: expected %v, got %v", e, g)
	}

	if e, g := time.Second, conf.HTTP.RateLimit.Interval; e != g {
		t.Errorf("conf.HTTP.RateLimit.Interval: expected %v, got %v", e, g)
	}

	if e, g := "/data/weekplan.sqlite", conf.Storage.Database.DSN; e != g {
		t.Errorf("conf.Storage.Database.DSN: expected %v, got %v", e, g)
	}
}
