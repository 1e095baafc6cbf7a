package ratelimit

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

type Options struct {
	// TrustProxyHeaders identifies clients by X-Forwarded-For / X-Real-Ip
	TrustProxyHeaders bool
	Interval          time.Duration
	Burst             int
	CacheSize         int
	CacheTTL          time.Duration
}

// Middleware limits the request rate per client address. Each client gets
// one token per interval, up to burst tokens.
func Middleware(opts Options) func(http.Handler) http.Handler {
	limiters := expirable.NewLRU[string, *rate.Limiter](opts.CacheSize, nil, opts.CacheTTL)

	getLimiter := func(client string) *rate.Limiter {
		limiter, exists := limiters.Get(client)
		if !exists {
			limiter = rate.NewLimiter(rate.Every(opts.Interval), opts.Burst)
			limiters.Add(client, limiter)
		}

		return limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientAddr(r, opts.TrustProxyHeaders)
			limiter := getLimiter(client)

			now := time.Now()

			reservation := limiter.ReserveN(now, 1)
			if !reservation.OK() {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			if delay := reservation.DelayFrom(now); delay > 0 {
				reservation.CancelAt(now)

				slog.DebugContext(r.Context(), "request rate limited", slog.String("client", client), slog.Duration("retryAfter", delay))

				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			remaining := limiter.TokensAt(now)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(opts.Burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(math.Max(0, math.Floor(remaining)))))

			// Time until the bucket is full again
			missing := float64(opts.Burst) - remaining
			reset := now.Add(time.Duration(missing * float64(opts.Interval)))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}

func clientAddr(r *http.Request, trustProxyHeaders bool) string {
	if trustProxyHeaders {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}

		if xri := r.Header.Get("X-Real-Ip"); xri != "" {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
