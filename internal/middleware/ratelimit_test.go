package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterCapsPerKey(t *testing.T) {
	l := NewInMemoryRateLimiter(2, time.Minute)

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "keys are independent")
}

func TestRateLimiterExpiresOldHits(t *testing.T) {
	l := NewInMemoryRateLimiter(1, 10*time.Millisecond)

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	time.Sleep(20 * time.Millisecond)
	assert.True(t, l.Allow("10.0.0.1"))
}
