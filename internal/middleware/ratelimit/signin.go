package ratelimitmw

import (
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/ratelimit"
)

// PerIP rejects a client with 429 once it exceeds the limiter's budget. A
// limiter failure lets the request through.
func PerIP(limiter ratelimit.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if limiter == nil {
			return next
		}
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("middleware", "ratelimit")

			d, err := limiter.Allow(ctx, c.RealIP())
			if err != nil {
				l.Error("ratelimit_unavailable", "error", err)
				return next(c)
			}
			if !d.Allowed {
				retry := int(math.Ceil(d.RetryAfter.Seconds()))
				c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
				l.Warn("ratelimit_exceeded", "status", 429, "remote_ip", c.RealIP(), "retry_after_s", retry)
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many attempts, try again later")
			}
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			return next(c)
		}
	}
}
