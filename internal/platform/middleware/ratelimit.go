package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig tunes the in-process per-IP limiter. It is the fallback
// used when no Redis URL is configured; multi-replica deployments should
// prefer RedisRateLimit so the budget is shared across pods.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultRateLimitConfig allows sustained portal traffic while still
// absorbing report-download bursts from a single clinic workstation.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		BurstSize:         200,
	}
}

// ipBucket is a token bucket replenished lazily on each check.
type ipBucket struct {
	mu       sync.Mutex
	tokens   float64
	lastSeen time.Time
}

// take refills the bucket for the time elapsed since the previous call and
// spends one token. When the bucket is dry it returns the whole seconds a
// client should wait before retrying.
func (b *ipBucket) take(cfg RateLimitConfig, now time.Time) (ok bool, retryAfter int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = math.Min(
		float64(cfg.BurstSize),
		b.tokens+now.Sub(b.lastSeen).Seconds()*cfg.RequestsPerSecond,
	)
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if cfg.RequestsPerSecond <= 0 {
		return false, 1
	}
	return false, int((1-b.tokens)/cfg.RequestsPerSecond) + 1
}

// bucketTable maps client IPs to their buckets and prunes entries that have
// been idle long enough to refill completely, so one-off visitors do not
// accumulate forever.
type bucketTable struct {
	mu      sync.Mutex
	byIP    map[string]*ipBucket
	cfg     RateLimitConfig
	sweepAt time.Time
}

const bucketSweepInterval = 10 * time.Minute

func (t *bucketTable) bucket(ip string, now time.Time) *ipBucket {
	t.mu.Lock()
	defer t.mu.Unlock()

	if now.After(t.sweepAt) {
		idle := bucketSweepInterval
		if t.cfg.RequestsPerSecond > 0 {
			refill := time.Duration(float64(t.cfg.BurstSize)/t.cfg.RequestsPerSecond) * time.Second
			if refill > idle {
				idle = refill
			}
		}
		for ip, b := range t.byIP {
			if now.Sub(b.lastSeen) > idle {
				delete(t.byIP, ip)
			}
		}
		t.sweepAt = now.Add(bucketSweepInterval)
	}

	b, ok := t.byIP[ip]
	if !ok {
		b = &ipBucket{tokens: float64(t.cfg.BurstSize), lastSeen: now}
		t.byIP[ip] = b
	}
	return b
}

// RateLimit enforces a per-client-IP token bucket and answers exhausted
// clients with 429 plus a Retry-After hint.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	table := &bucketTable{
		byIP:    make(map[string]*ipBucket),
		cfg:     cfg,
		sweepAt: time.Now().Add(bucketSweepInterval),
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := time.Now()
			ok, retry := table.bucket(c.RealIP(), now).take(cfg, now)
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
