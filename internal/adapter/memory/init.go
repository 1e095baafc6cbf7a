package memory

import (
	"net/url"
	"strconv"
	"time"

	"github.com/bornholm/weekplan/internal/core/port"
	"github.com/bornholm/weekplan/internal/setup"
	"github.com/pkg/errors"
)

func init() {
	setup.JobRunner.Register("memory", func(u *url.URL) (port.JobRunner, error) {
		parallelism := 1
		if rawValue := u.Query().Get("parallelism"); rawValue != "" {
			v, err := strconv.ParseInt(rawValue, 10, 32)
			if err != nil {
				return nil, errors.Wrapf(err, "could not parse 'parallelism' parameter")
			}
			if v < 1 {
				return nil, errors.Errorf("invalid 'parallelism' parameter '%d'", v)
			}
			parallelism = int(v)
		}

		cleanupDelay := time.Minute * 60
		if rawValue := u.Query().Get("cleanupDelay"); rawValue != "" {
			v, err := time.ParseDuration(rawValue)
			if err != nil {
				return nil, errors.Wrapf(err, "could not parse 'cleanupDelay' parameter")
			}
			cleanupDelay = v
		}

		cleanupInterval := time.Minute * 10
		if rawValue := u.Query().Get("cleanupInterval"); rawValue != "" {
			v, err := time.ParseDuration(rawValue)
			if err != nil {
				return nil, errors.Wrapf(err, "could not parse 'cleanupInterval' parameter")
			}
			cleanupInterval = v
		}

		return NewJobRunner(parallelism, cleanupDelay, cleanupInterval), nil
	})
}
