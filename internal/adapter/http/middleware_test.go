package http

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 2)
	l.now = func() time.Time { return clock }
	l.lastSweep.Store(clock.UnixNano())
	require.Equal(t, defaultLimiterIdle, l.idle)

	for i := 0; i < 50; i++ {
		l.limiter(fmt.Sprintf("ip:10.0.0.%d", i), clock)
	}
	assert.Equal(t, 50, l.size())

	// one caller keeps coming back, the rest go quiet
	clock = clock.Add(defaultLimiterIdle / 2)
	l.limiter("ip:10.0.0.7", clock)

	clock = clock.Add(defaultLimiterIdle/2 + time.Second)
	l.maybeSweep(clock)
	assert.Equal(t, 1, l.size())
	_, kept := l.store.Load("ip:10.0.0.7")
	assert.True(t, kept)
}

func TestRateLimiter_SweepIsThrottled(t *testing.T) {
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 1)
	l.now = func() time.Time { return clock }
	l.lastSweep.Store(clock.UnixNano())

	l.limiter("ip:a", clock.Add(-2*defaultLimiterIdle))
	l.maybeSweep(clock.Add(time.Minute))
	assert.Equal(t, 1, l.size(), "no sweep before a full idle period has passed")

	l.maybeSweep(clock.Add(defaultLimiterIdle))
	assert.Equal(t, 0, l.size())
}

func TestRateLimiter_IdleCoversRefill(t *testing.T) {
	l := NewRateLimiter(0.001, 1)
	assert.Equal(t, 1000*time.Second, l.idle)
}

func TestRateLimiter_HandlerSweepsOnRequest(t *testing.T) {
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 1)
	l.now = func() time.Time { return clock }
	l.lastSweep.Store(clock.UnixNano())
	l.limiter("ip:198.51.100.4", clock)

	app := fiber.New()
	app.Use(l.Handler())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	clock = clock.Add(defaultLimiterIdle + time.Second)
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	// the stale bucket is gone and only the caller just seen remains
	_, stale := l.store.Load("ip:198.51.100.4")
	assert.False(t, stale)
	assert.Equal(t, 1, l.size())
}
