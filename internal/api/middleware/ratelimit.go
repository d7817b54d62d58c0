package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jroosing/bindzone/internal/api/models"
)

// Token bucket admission control per client IP.
//
//   - Each client has a bucket of at most Burst tokens
//   - Tokens are replenished at Rate tokens per second
//   - Each request consumes one token and is refused with 429 when none is left

// RateLimitConfig configures a ClientRateLimiter.
type RateLimitConfig struct {
	Rate            float64       // Tokens replenished per second
	Burst           int           // Maximum tokens (burst capacity)
	MaxClients      int           // Maximum tracked clients
	CleanupInterval time.Duration // How often idle clients are forgotten
}

// ClientRateLimiter tracks one token bucket per client key.
type ClientRateLimiter struct {
	rate            float64
	burst           float64
	maxClients      int
	cleanupInterval time.Duration
	now             func() time.Time

	mu          sync.Mutex
	lastCleanup time.Time
	buckets     map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewClientRateLimiter creates a limiter. A rate or burst of zero disables it.
func NewClientRateLimiter(cfg RateLimitConfig) *ClientRateLimiter {
	maxClients := cfg.MaxClients
	if maxClients <= 0 {
		maxClients = 4096
	}
	ci := cfg.CleanupInterval
	if ci <= 0 {
		ci = time.Minute
	}
	l := &ClientRateLimiter{
		rate:            cfg.Rate,
		burst:           float64(cfg.Burst),
		maxClients:      maxClients,
		cleanupInterval: ci,
		now:             time.Now,
		buckets:         map[string]*bucket{},
	}
	l.lastCleanup = l.now()
	return l
}

// Allow consumes a token for key. When it returns false, retryAfter is the
// time until the next token is available.
func (l *ClientRateLimiter) Allow(key string) (ok bool, retryAfter time.Duration) {
	if l == nil || l.rate <= 0 || l.burst <= 0 {
		return true, 0
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastCleanup) > l.cleanupInterval {
		l.cleanupLocked(now)
	}

	b, exists := l.buckets[key]
	if !exists {
		if len(l.buckets) >= l.maxClients {
			l.cleanupLocked(now)
			if len(l.buckets) >= l.maxClients {
				return false, l.cleanupInterval
			}
		}
		l.buckets[key] = &bucket{tokens: l.burst - 1, last: now}
		return true, 0
	}

	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(l.burst, b.tokens+elapsed*l.rate)
	}
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	wait := time.Duration((1 - b.tokens) / l.rate * float64(time.Second))
	return false, wait
}

// cleanupLocked forgets clients whose bucket has refilled completely.
// Must be called with l.mu held.
func (l *ClientRateLimiter) cleanupLocked(now time.Time) {
	staleBefore := now.Add(-l.cleanupInterval)
	for k, b := range l.buckets {
		if !b.last.After(staleBefore) {
			delete(l.buckets, k)
		}
	}
	l.lastCleanup = now
}

// Clients returns the number of tracked clients.
func (l *ClientRateLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimit refuses requests from clients that exceeded their budget with
// 429 and a Retry-After header. A nil limiter lets everything through.
func RateLimit(l *ClientRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := l.Allow(c.ClientIP())
		if ok {
			c.Next()
			return
		}
		secs := int(math.Ceil(wait.Seconds()))
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.Itoa(secs))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{Error: "rate limit exceeded"})
	}
}
