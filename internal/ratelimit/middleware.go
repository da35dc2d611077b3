package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/vaseyai/reprompter/internal/httputil"
	"github.com/vaseyai/reprompter/internal/telemetry"
)

const (
	headerRateLimitRequests          = "X-RateLimit-Limit-Requests"
	headerRateLimitRemainingRequests = "X-RateLimit-Remaining-Requests"
	headerRateLimitReset             = "X-RateLimit-Reset-Requests"
)

// Middleware returns chi middleware that enforces a per-client-IP request
// limit. It runs after chi's RealIP, so RemoteAddr already reflects the
// forwarded client address. Limiter errors let the request through.
func Middleware(limiter Checker, rpm int, metrics *telemetry.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || rpm <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			logger := zerolog.Ctx(r.Context())
			ip := clientIP(r)

			result, err := limiter.Check(r.Context(), "ip:"+ip, int64(rpm), time.Minute)
			if err != nil {
				logger.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			}

			// Always set rate limit headers
			w.Header().Set(headerRateLimitRequests, strconv.Itoa(rpm))
			w.Header().Set(headerRateLimitRemainingRequests, strconv.FormatInt(result.Remaining, 10))
			w.Header().Set(headerRateLimitReset, result.ResetAt.UTC().Format(time.RFC3339))

			if !result.Allowed {
				logger.Warn().
					Str("client_ip", ip).
					Int("limit", rpm).
					Msg("rate limit exceeded")
				metrics.RecordRateLimitHit()
				httputil.WriteRateLimitError(w, result.RetryAfter,
					fmt.Sprintf("Rate limit exceeded: %d requests per minute. Please try again later.", rpm))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
