package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/bornholm/go-x/slogx"
	"github.com/bornholm/weekplan/internal/config"
	"github.com/bornholm/weekplan/internal/setup"
	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"

	// Adapters
	_ "github.com/bornholm/weekplan/internal/adapter/memory"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conf, err := config.Parse()
	if err != nil {
		slog.ErrorContext(ctx, "could not parse config", slog.Any("error", errors.WithStack(err)))
		os.Exit(1)
	}

	logger := slog.New(slogx.ContextHandler{
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level:     conf.Logger.Level,
			AddSource: true,
		}),
	})

	slog.SetDefault(logger)

	slog.DebugContext(ctx, "using configuration", slog.Any("config", conf))

	if err := setup.SetupSentryFromConfig(ctx, conf); err != nil {
		slog.ErrorContext(ctx, "could not setup sentry", slog.Any("error", errors.WithStack(err)))
		os.Exit(1)
	}

	defer sentry.Flush(2 * time.Second)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	go func() {
		slog.InfoContext(ctx, "use ctrl+c to interrupt")
		<-sig
		cancel()
	}()

	server, err := setup.NewHTTPServerFromConfig(ctx, conf)
	if err != nil {
		slog.ErrorContext(ctx, "could not setup http server", slog.Any("error", errors.WithStack(err)))
		os.Exit(1)
	}

	cron, err := setup.NewCronFromConfig(ctx, conf)
	if err != nil {
		slog.ErrorContext(ctx, "could not setup cron triggers", slog.Any("error", errors.WithStack(err)))
		os.Exit(1)
	}

	cron.Start()
	defer cron.Stop()

	slog.InfoContext(ctx, "starting server", slog.Any("address", conf.HTTP.Address))

	if err := server.Run(ctx); err != nil {
		slog.Error("could not run server", slog.Any("error", errors.WithStack(err)))
		os.Exit(1)
	}
}
