package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	rl := &rateLimiter{
		requests: make(map[string]*clientRequest),
		limit:    3,
		window:   time.Minute,
	}

	for i := 0; i < 3; i++ {
		ok, _ := rl.allow("client-1")
		assert.True(t, ok, "request %d should pass", i+1)
	}

	ok, retryAfter := rl.allow("client-1")
	assert.False(t, ok)
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := &rateLimiter{
		requests: make(map[string]*clientRequest),
		limit:    1,
		window:   time.Minute,
	}

	ok, _ := rl.allow("client-1")
	assert.True(t, ok)
	ok, _ = rl.allow("client-1")
	assert.False(t, ok)

	ok, _ = rl.allow("client-2")
	assert.True(t, ok)
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	rl := &rateLimiter{
		requests: make(map[string]*clientRequest),
		limit:    1,
		window:   10 * time.Millisecond,
	}

	ok, _ := rl.allow("client-1")
	assert.True(t, ok)
	ok, _ = rl.allow("client-1")
	assert.False(t, ok)

	time.Sleep(15 * time.Millisecond)

	ok, _ = rl.allow("client-1")
	assert.True(t, ok)
}

func TestCleanupDropsExpiredClients(t *testing.T) {
	rl := &rateLimiter{
		requests: make(map[string]*clientRequest),
		limit:    1,
		window:   time.Millisecond,
	}

	rl.allow("client-1")
	time.Sleep(5 * time.Millisecond)
	rl.cleanup()

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	assert.Empty(t, rl.requests)
}
