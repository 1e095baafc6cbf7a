package config

import "time"

type HTTP struct {
	BaseURL   string    `env:"BASE_URL,expand" envDefault:"/"`
	Address   string    `env:"ADDRESS,expand" envDefault:":3003"`
	Auth      Auth      `envPrefix:"AUTH_"`
	CORS      CORS      `envPrefix:"CORS_"`
	RateLimit RateLimit `envPrefix:"RATE_LIMIT_"`
}

// Auth configures the optional HTTP basic authentication. It is disabled
// when no username is set.
type Auth struct {
	Username string `env:"USERNAME,expand"`
	Password string `env:"PASSWORD,expand"`
}

type CORS struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,expand" envSeparator:","`
}

type RateLimit struct {
	Enabled           bool          `env:"ENABLED,expand" envDefault:"true"`
	TrustProxyHeaders bool          `env:"TRUST_PROXY_HEADERS,expand" envDefault:"false"`
	Interval          time.Duration `env:"INTERVAL,expand" envDefault:"100ms"`
	Burst             int           `env:"BURST,expand" envDefault:"20"`
	CacheSize         int           `env:"CACHE_SIZE,expand" envDefault:"1024"`
	CacheTTL          time.Duration `env:"CACHE_TTL,expand" envDefault:"10m"`
}
