// Package middleware provides HTTP middleware for Almanac.
// ratelimit.go implements a per-IP token bucket limiter held in memory.
// Applied to the definition write endpoints.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// visitor is one client IP's token bucket.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit returns middleware that allows each client IP maxRequests per
// window with bursts up to maxRequests. Returns 429 when exceeded. Idle
// buckets are swept at most once per window.
func RateLimit(maxRequests int, window time.Duration) echo.MiddlewareFunc {
	if maxRequests < 1 {
		maxRequests = 1
	}
	var (
		mu        sync.Mutex
		visitors  = make(map[string]*visitor)
		lastSweep = time.Now()
		every     = rate.Every(window / time.Duration(maxRequests))
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			now := time.Now()

			mu.Lock()
			if now.Sub(lastSweep) > window {
				for k, v := range visitors {
					if now.Sub(v.lastSeen) > window*2 {
						delete(visitors, k)
					}
				}
				lastSweep = now
			}
			v, ok := visitors[ip]
			if !ok {
				v = &visitor{limiter: rate.NewLimiter(every, maxRequests)}
				visitors[ip] = v
			}
			v.lastSeen = now
			allowed := v.limiter.AllowN(now, 1)
			mu.Unlock()

			if !allowed {
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error":   "Too Many Requests",
					"message": "Rate limit exceeded. Please try again later.",
				})
			}
			return next(c)
		}
	}
}
