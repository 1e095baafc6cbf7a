package config

import "time"

type Metrics struct {
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL,expand" envDefault:"30s"`
}
