package setup

import (
	"context"

	"github.com/bornholm/weekplan/internal/config"
	"github.com/bornholm/weekplan/internal/http"
	"github.com/bornholm/weekplan/internal/http/handler/metrics"
	"github.com/pkg/errors"
)

func NewHTTPServerFromConfig(ctx context.Context, conf *config.Config) (*http.Server, error) {
	api, err := getAPIHandlerFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure api handler from config")
	}

	if _, err := startTasksMetricsFromConfig(ctx, conf); err != nil {
		return nil, errors.Wrap(err, "could not start tasks metrics from config")
	}

	options := []http.OptionFunc{
		http.WithAddress(conf.HTTP.Address),
		http.WithBaseURL(conf.HTTP.BaseURL),
		http.WithMount("/api/v1/", api),
		http.WithMount("/metrics/", metrics.NewHandler()),
	}

	if conf.HTTP.Auth.Username != "" {
		options = append(options, http.WithBasicAuth(conf.HTTP.Auth.Username, conf.HTTP.Auth.Password))
	}

	if len(conf.HTTP.CORS.AllowedOrigins) > 0 {
		options = append(options, http.WithAllowedOrigins(conf.HTTP.CORS.AllowedOrigins...))
	}

	if rateLimit := conf.HTTP.RateLimit; rateLimit.Enabled {
		options = append(options, http.WithRateLimit(http.RateLimit{
			TrustProxyHeaders: rateLimit.TrustProxyHeaders,
			Interval:          rateLimit.Interval,
			Burst:             rateLimit.Burst,
			CacheSize:         rateLimit.CacheSize,
			CacheTTL:          rateLimit.CacheTTL,
		}))
	}

	server := http.NewServer(options...)

	return server, nil
}
