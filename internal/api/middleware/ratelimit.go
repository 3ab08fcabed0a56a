package middleware

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/arc-self/tracehub/internal/platform/tenant"
)

// RateLimit enforces a per-organization token bucket (spec §7: RateLimited
// -> 429, caller retries after the window). It uses an in-process
// golang.org/x/time/rate limiter keyed by organization id ("anonymous"
// when there is none). Buckets live only in this process; Redis is not
// involved, so each API instance keeps its own limits.
func RateLimit(ratePerSecond float64, burst int) echo.MiddlewareFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	get := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[key]
		if !ok {
			l = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
			limiters[key] = l
		}
		return l
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tc, ok := tenant.FromContext(c.Request().Context())
			key := "anonymous"
			if ok && tc.OrganizationID != "" {
				key = tc.OrganizationID
			}
			if !get(key).Allow() {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
