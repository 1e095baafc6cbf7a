package http

import (
	"net/http"
	"time"
)

type BasicAuth struct {
	Username string
	Password string
}

type RateLimit struct {
	TrustProxyHeaders bool
	Interval          time.Duration
	Burst             int
	CacheSize         int
	CacheTTL          time.Duration
}

type Options struct {
	Address        string
	BaseURL        string
	BasicAuth      *BasicAuth
	AllowedOrigins []string
	RateLimit      *RateLimit
	Mounts         map[string]http.Handler
}

type OptionFunc func(opts *Options)

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{
		Address: ":3003",
		BaseURL: "",
		Mounts:  map[string]http.Handler{},
	}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

func WithMount(prefix string, handler http.Handler) OptionFunc {
	return func(opts *Options) {
		opts.Mounts[prefix] = handler
	}
}

func WithBaseURL(baseURL string) OptionFunc {
	return func(opts *Options) {
		opts.BaseURL = baseURL
	}
}

func WithAddress(addr string) OptionFunc {
	return func(opts *Options) {
		opts.Address = addr
	}
}

func WithBasicAuth(username, password string) OptionFunc {
	return func(opts *Options) {
		opts.BasicAuth = &BasicAuth{
			Username: username,
			Password: password,
		}
	}
}

func WithAllowedOrigins(origins ...string) OptionFunc {
	return func(opts *Options) {
		opts.AllowedOrigins = origins
	}
}

func WithRateLimit(rateLimit RateLimit) OptionFunc {
	return func(opts *Options) {
		opts.RateLimit = &rateLimit
	}
}
