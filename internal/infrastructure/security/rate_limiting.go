package security

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines a token bucket per key
type RateLimitConfig struct {
	RequestsPerMin  int
	BurstSize       int
	CleanupInterval time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitService keeps one token bucket per key, e.g. per user
type RateLimitService struct {
	config   RateLimitConfig
	logger   *zap.Logger
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	now      func() time.Time
}

// NewRateLimitService creates a new rate limiting service
func NewRateLimitService(cfg RateLimitConfig, logger *zap.Logger) *RateLimitService {
	if cfg.RequestsPerMin <= 0 {
		cfg.RequestsPerMin = 10
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 10 * time.Minute
	}
	return &RateLimitService{
		config:   cfg,
		logger:   logger.Named("ratelimit"),
		limiters: make(map[string]*limiterEntry),
		now:      time.Now,
	}
}

// Allow reports whether one more request for key fits in its bucket
func (s *RateLimitService) Allow(key string) bool {
	s.mu.Lock()
	entry, ok := s.limiters[key]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(float64(s.config.RequestsPerMin)/60), s.config.BurstSize),
		}
		s.limiters[key] = entry
	}
	now := s.now()
	entry.lastSeen = now
	s.mu.Unlock()

	allowed := entry.limiter.AllowN(now, 1)
	if !allowed {
		s.logger.Debug("Rate limit exceeded", zap.String("key", key))
	}
	return allowed
}

// Cleanup drops buckets idle for longer than the cleanup interval
func (s *RateLimitService) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.config.CleanupInterval)
	removed := 0
	for key, entry := range s.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(s.limiters, key)
			removed++
		}
	}
	return removed
}

// Run cleans up idle buckets until ctx is done
func (s *RateLimitService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Cleanup(); n > 0 {
				s.logger.Debug("Removed idle rate limiters", zap.Int("count", n))
			}
		}
	}
}
