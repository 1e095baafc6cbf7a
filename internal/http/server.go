package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	httpCtx "github.com/bornholm/weekplan/internal/http/context"
	"github.com/bornholm/weekplan/internal/http/middleware/ratelimit"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	sloghttp "github.com/samber/slog-http"
)

type Server struct {
	opts *Options
}

func (s *Server) Run(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return errors.WithStack(err)
	}

	server := &http.Server{
		Addr:              s.opts.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(ctx, "could not shutdown server", slog.Any("error", errors.WithStack(err)))
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithStack(err)
	}

	return nil
}

// Handler returns the root handler with every mount and middleware applied.
func (s *Server) Handler() (http.Handler, error) {
	baseURL, err := url.Parse(s.opts.BaseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse base url '%s'", s.opts.BaseURL)
	}

	prefix := strings.TrimSuffix(baseURL.Path, "/")

	mux := http.NewServeMux()

	for mountpoint, handler := range s.opts.Mounts {
		mountpoint = prefix + mountpoint
		mux.Handle(mountpoint, http.StripPrefix(strings.TrimSuffix(mountpoint, "/"), handler))
	}

	var handler http.Handler = mux

	if s.opts.BasicAuth != nil {
		handler = s.basicAuth(handler)
	}

	if s.opts.RateLimit != nil {
		handler = ratelimit.Middleware(ratelimit.Options{
			TrustProxyHeaders: s.opts.RateLimit.TrustProxyHeaders,
			Interval:          s.opts.RateLimit.Interval,
			Burst:             s.opts.RateLimit.Burst,
			CacheSize:         s.opts.RateLimit.CacheSize,
			CacheTTL:          s.opts.RateLimit.CacheTTL,
		})(handler)
	}

	if len(s.opts.AllowedOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins:   s.opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}).Handler(handler)
	}

	handler = sloghttp.Recovery(handler)
	handler = sloghttp.NewWithConfig(slog.Default(), sloghttp.Config{
		DefaultLevel:     slog.LevelDebug,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
	})(handler)

	handler = withBaseURL(baseURL, handler)

	return handler, nil
}

func withBaseURL(baseURL *url.URL, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := httpCtx.SetBaseURL(r.Context(), baseURL)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func NewServer(funcs ...OptionFunc) *Server {
	opts := NewOptions(funcs...)
	return &Server{
		opts: opts,
	}
}
