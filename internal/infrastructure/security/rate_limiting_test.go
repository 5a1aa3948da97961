package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRateLimitService_BurstThenRefill(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	svc := NewRateLimitService(RateLimitConfig{RequestsPerMin: 6, BurstSize: 2}, zap.NewNop())
	svc.now = func() time.Time { return now }

	assert.True(t, svc.Allow("alice"))
	assert.True(t, svc.Allow("alice"))
	assert.False(t, svc.Allow("alice"))

	// Buckets are per key
	assert.True(t, svc.Allow("bob"))

	// 6 per minute refills one token every 10s
	now = now.Add(10 * time.Second)
	assert.True(t, svc.Allow("alice"))
	assert.False(t, svc.Allow("alice"))
}

func TestRateLimitService_CleanupDropsIdleKeys(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	svc := NewRateLimitService(RateLimitConfig{RequestsPerMin: 60, BurstSize: 1, CleanupInterval: time.Minute}, zap.NewNop())
	svc.now = func() time.Time { return now }

	svc.Allow("alice")
	now = now.Add(30 * time.Second)
	svc.Allow("bob")
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, svc.Cleanup())
	assert.Len(t, svc.limiters, 1)
	assert.Contains(t, svc.limiters, "bob")
}
