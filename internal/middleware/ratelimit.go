package middleware

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Counter is the subset of Redis commands the limiter needs
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimitConfig sets per-client request limits. A zero limit disables that window.
type RateLimitConfig struct {
	PerSecond int
	PerDay    int
	// KeyFunc identifies the client; defaults to the remote IP
	KeyFunc func(c *fiber.Ctx) string
	// Now defaults to time.Now
	Now func() time.Time
}

// RateLimitMiddleware limits requests per client per second and per day using Redis counters.
// Redis failures let the request through.
func RateLimitMiddleware(rdb Counter, cfg RateLimitConfig) fiber.Handler {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *fiber.Ctx) string { return c.IP() }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		now := cfg.Now()
		clientID := cfg.KeyFunc(c)

		if cfg.PerSecond > 0 {
			key := SecondKey(clientID, now)
			count, err := increment(ctx, rdb, key, 2*time.Second)
			if err == nil && count > int64(cfg.PerSecond) {
				c.Set("X-RateLimit-Limit-Second", strconv.Itoa(cfg.PerSecond))
				c.Set("X-RateLimit-Remaining-Second", "0")
				c.Set("Retry-After", "1")

				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error":       "rate_limit_exceeded",
					"message":     "Too many requests per second",
					"limit":       cfg.PerSecond,
					"retry_after": 1,
				})
			}
		}

		if cfg.PerDay > 0 {
			key := DayKey(clientID, now)
			// 25 hours to cover timezone differences
			count, err := increment(ctx, rdb, key, 25*time.Hour)
			if err == nil {
				if count > int64(cfg.PerDay) {
					tomorrow := now.AddDate(0, 0, 1)
					midnight := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, tomorrow.Location())
					retryAfter := int64(midnight.Sub(now).Seconds())

					c.Set("X-RateLimit-Limit-Day", strconv.Itoa(cfg.PerDay))
					c.Set("X-RateLimit-Remaining-Day", "0")
					c.Set("Retry-After", strconv.FormatInt(retryAfter, 10))

					return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
						"error":       "daily_quota_exceeded",
						"message":     "Daily quota exceeded",
						"limit":       cfg.PerDay,
						"used":        count,
						"retry_after": retryAfter,
						"reset_at":    midnight.Format(time.RFC3339),
					})
				}
				c.Set("X-RateLimit-Remaining-Day", strconv.FormatInt(int64(cfg.PerDay)-count, 10))
			}
		}

		if cfg.PerSecond > 0 {
			c.Set("X-RateLimit-Limit-Second", strconv.Itoa(cfg.PerSecond))
		}
		if cfg.PerDay > 0 {
			c.Set("X-RateLimit-Limit-Day", strconv.Itoa(cfg.PerDay))
		}

		return c.Next()
	}
}

// SecondKey is the counter key of a client for the second containing now
func SecondKey(clientID string, now time.Time) string {
	return fmt.Sprintf("rl:client:%s:second:%d", clientID, now.Unix())
}

// DayKey is the counter key of a client for the day containing now
func DayKey(clientID string, now time.Time) string {
	return fmt.Sprintf("rl:client:%s:day:%s", clientID, now.Format("2006-01-02"))
}

func increment(ctx context.Context, rdb Counter, key string, ttl time.Duration) (int64, error) {
	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("Warning: rate limit counter %s unavailable: %v", key, err)
		return 0, err
	}
	if count == 1 {
		rdb.Expire(ctx, key, ttl)
	}
	return count, nil
}
