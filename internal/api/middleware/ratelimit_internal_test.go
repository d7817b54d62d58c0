package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientRateLimiter_Refills(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewClientRateLimiter(RateLimitConfig{Rate: 2, Burst: 1})
	l.now = func() time.Time { return now }

	ok, _ := l.Allow("a")
	assert.True(t, ok)
	ok, wait := l.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, 500*time.Millisecond, wait)

	now = now.Add(500 * time.Millisecond)
	ok, _ = l.Allow("a")
	assert.True(t, ok)
}

func TestClientRateLimiter_MaxClients(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewClientRateLimiter(RateLimitConfig{Rate: 1, Burst: 5, MaxClients: 1, CleanupInterval: time.Minute})
	l.now = func() time.Time { return now }

	ok, _ := l.Allow("a")
	assert.True(t, ok)
	ok, _ = l.Allow("b")
	assert.False(t, ok, "table full")

	now = now.Add(2 * time.Minute)
	ok, _ = l.Allow("b")
	assert.True(t, ok, "idle client forgotten")
	assert.Equal(t, 1, l.Clients())
}
