package setup

import (
	"context"
	"log/slog"

	"github.com/bornholm/weekplan/internal/build"
	"github.com/bornholm/weekplan/internal/config"
	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
)

// SetupSentryFromConfig initializes the sentry client. It does nothing
// when no DSN is configured.
func SetupSentryFromConfig(ctx context.Context, conf *config.Config) error {
	if conf.Sentry.DSN == "" {
		slog.DebugContext(ctx, "sentry disabled")
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         conf.Sentry.DSN,
		Environment: conf.Sentry.Environment,
		Release:     build.ShortVersion,
	})
	if err != nil {
		return errors.Wrap(err, "could not initialize sentry")
	}

	return nil
}
