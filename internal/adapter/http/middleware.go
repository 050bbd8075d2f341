package http

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"resume-builder/internal/auth"
	"resume-builder/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

const (
	RequestIDHeader   = "X-Request-ID"
	RequestIDLocalKey = "request_id"
	identityLocalKey  = "identity"
)

// RequestID reuses an incoming X-Request-ID or generates one, and echoes it
// on the response.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}

// Logger writes one structured record per request.
func Logger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		rid, _ := c.Locals(RequestIDLocalKey).(string)
		logger.Info("request",
			"request_id", rid,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency_ms", float64(time.Since(start).Microseconds())/1000,
		)
		return err
	}
}

// Prometheus counts requests and observes their latency by route pattern.
type Prometheus struct {
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	m := &Prometheus{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "Total number of HTTP requests processed."},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request latency.", Buckets: prometheus.DefBuckets},
			[]string{"method", "path"},
		),
	}
	if err := reg.Register(m.requestCount); err != nil {
		return nil, err
	}
	if err := reg.Register(m.requestDuration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Prometheus) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}
		m.requestCount.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

// Auth resolves the caller. No Authorization header means Anonymous; a
// header that is malformed or fails verification is rejected with 401.
func Auth(v auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := auth.Anonymous
		if header := c.Get(fiber.HeaderAuthorization); header != "" {
			token, ok := strings.CutPrefix(header, "Bearer ")
			token = strings.TrimSpace(token)
			if !ok || token == "" {
				return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid Authorization header")
			}
			if v == nil {
				return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "token verification is not configured")
			}
			verified, err := v.Verify(c.UserContext(), token)
			if err != nil {
				return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
			}
			id = verified
		}
		c.Locals(identityLocalKey, id)
		c.SetUserContext(auth.WithIdentity(c.UserContext(), id))
		return c.Next()
	}
}

func identity(c *fiber.Ctx) auth.Identity {
	if id, ok := c.Locals(identityLocalKey).(auth.Identity); ok {
		return id
	}
	return auth.Anonymous
}

// RateLimiter hands out one token bucket per caller. Signed-in callers are
// keyed by subject, everyone else by client IP. Buckets idle for longer than
// the idle TTL are dropped; the TTL is never shorter than a full refill, so a
// dropped bucket is indistinguishable from a new one.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	store     sync.Map // map[string]*bucket
	lastSweep atomic.Int64
}

type bucket struct {
	lim  *rate.Limiter
	seen atomic.Int64 // unix nanos
}

const defaultLimiterIdle = 10 * time.Minute

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	idle := defaultLimiterIdle
	if rps > 0 {
		if refill := time.Duration(float64(burst) / rps * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	l := &RateLimiter{rps: rate.Limit(rps), burst: burst, idle: idle, now: time.Now}
	l.lastSweep.Store(l.now().UnixNano())
	return l
}

func (l *RateLimiter) limiter(key string, now time.Time) *rate.Limiter {
	v, ok := l.store.Load(key)
	if !ok {
		v, _ = l.store.LoadOrStore(key, &bucket{lim: rate.NewLimiter(l.rps, l.burst)})
	}
	b := v.(*bucket)
	b.seen.Store(now.UnixNano())
	return b.lim
}

// sweep drops buckets not used since now minus the idle TTL and returns how
// many it removed.
func (l *RateLimiter) sweep(now time.Time) int {
	cutoff := now.Add(-l.idle).UnixNano()
	removed := 0
	l.store.Range(func(k, v any) bool {
		if v.(*bucket).seen.Load() < cutoff {
			l.store.Delete(k)
			removed++
		}
		return true
	})
	return removed
}

// maybeSweep runs at most one sweep per idle TTL across all requests.
func (l *RateLimiter) maybeSweep(now time.Time) {
	last := l.lastSweep.Load()
	if now.UnixNano()-last < int64(l.idle) {
		return
	}
	if l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		l.sweep(now)
	}
}

// size counts the live buckets.
func (l *RateLimiter) size() int {
	n := 0
	l.store.Range(func(any, any) bool { n++; return true })
	return n
}

func (l *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := "ip:" + c.IP()
		if id := identity(c); !id.IsAnonymous() {
			key = "sub:" + id.Subject
		}
		now := l.now()
		l.maybeSweep(now)
		if !l.limiter(key, now).AllowN(now, 1) {
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.Set(fiber.HeaderRetryAfter, "1")
			return writeError(c, fiber.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		return c.Next()
	}
}
