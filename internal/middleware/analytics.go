package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/passbi/transport_catalogue/internal/metrics"
)

// cacheHitLocal mirrors the local set by the API handlers
const cacheHitLocal = "cache_hit"

// AnalyticsMiddleware records request counts and latency per route and
// reports response time and cache usage in headers
func AnalyticsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		responseTime := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				status = e.Code
			}
		}

		cacheHit := false
		if val, ok := c.Locals(cacheHitLocal).(bool); ok {
			cacheHit = val
		}

		metrics.ObserveHTTPRequest(c.Method(), c.Route().Path, status, cacheHit, responseTime)

		c.Set("X-Response-Time", responseTime.String())
		c.Set("X-Cache-Hit", strconv.FormatBool(cacheHit))

		return err
	}
}
