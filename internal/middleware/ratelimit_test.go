package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	counts  map[string]int64
	expires map[string]time.Duration
	err     error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{
		counts:  make(map[string]int64),
		expires: make(map[string]time.Duration),
	}
}

func (f *fakeCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.expires[key] = expiration
	return redis.NewBoolResult(true, nil)
}

var fixedNow = time.Date(2026, 3, 14, 23, 59, 30, 0, time.UTC)

func newLimitedApp(counter Counter, cfg RateLimitConfig) *fiber.App {
	cfg.KeyFunc = func(c *fiber.Ctx) string { return "client-1" }
	cfg.Now = func() time.Time { return fixedNow }

	app := fiber.New()
	app.Use(RateLimitMiddleware(counter, cfg))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestRateLimitPerSecond(t *testing.T) {
	counter := newFakeCounter()
	app := newLimitedApp(counter, RateLimitConfig{PerSecond: 2})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit-Second"))
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))

	key := SecondKey("client-1", fixedNow)
	assert.Equal(t, int64(3), counter.counts[key])
	assert.Equal(t, 2*time.Second, counter.expires[key])
}

func TestRateLimitPerDay(t *testing.T) {
	counter := newFakeCounter()
	app := newLimitedApp(counter, RateLimitConfig{PerDay: 1})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining-Day"))

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	// 30 seconds until midnight
	assert.Equal(t, "30", resp.Header.Get("Retry-After"))
	assert.Equal(t, 25*time.Hour, counter.expires[DayKey("client-1", fixedNow)])
}

func TestRateLimitRedisDown(t *testing.T) {
	counter := newFakeCounter()
	counter.err = errors.New("connection refused")
	app := newLimitedApp(counter, RateLimitConfig{PerSecond: 1, PerDay: 1})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestRateLimitKeys(t *testing.T) {
	assert.Equal(t, "rl:client:10.0.0.1:day:2026-03-14", DayKey("10.0.0.1", fixedNow))
	assert.Equal(t, "rl:client:10.0.0.1:second:1773532770", SecondKey("10.0.0.1", fixedNow))
}
