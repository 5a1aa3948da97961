// Package cache provides cache-aside decorators over the outbound read ports
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/alchemorsel/mealplan/internal/domain/shopping"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"go.uber.org/zap"
)

// BaselinesKey is the cache key for the full baseline table
const BaselinesKey = "price_baselines:all"

// OperationRecorder counts cache hits, misses and errors
type OperationRecorder interface {
	CacheOperation(operation, cacheType, status string)
}

// BaselineCache serves price baselines from the cache and falls back to the store.
// Cache failures never fail a read.
type BaselineCache struct {
	next      outbound.PriceBaselineReader
	cache     outbound.CacheRepository
	ttl       time.Duration
	cacheType string
	metrics   OperationRecorder
	logger    *zap.Logger
}

// NewBaselineCache wraps next with a cache-aside layer. cacheType labels the
// metrics, e.g. "redis" or "memory".
func NewBaselineCache(next outbound.PriceBaselineReader, cache outbound.CacheRepository, ttl time.Duration, cacheType string, metrics OperationRecorder, logger *zap.Logger) *BaselineCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &BaselineCache{
		next:      next,
		cache:     cache,
		ttl:       ttl,
		cacheType: cacheType,
		metrics:   metrics,
		logger:    logger.Named("baseline_cache"),
	}
}

var _ outbound.PriceBaselineReader = (*BaselineCache)(nil)

// ListBaselines returns cached baselines, loading and caching them on a miss
func (c *BaselineCache) ListBaselines(ctx context.Context) ([]shopping.PriceBaseline, error) {
	data, err := c.cache.Get(ctx, BaselinesKey)
	switch {
	case err == nil:
		var baselines []shopping.PriceBaseline
		uerr := json.Unmarshal(data, &baselines)
		if uerr == nil {
			c.metrics.CacheOperation("get", c.cacheType, "hit")
			return baselines, nil
		}
		c.logger.Warn("Discarding unreadable cached baselines", zap.Error(uerr))
		c.metrics.CacheOperation("get", c.cacheType, "error")
	case errors.Is(err, outbound.ErrCacheMiss):
		c.metrics.CacheOperation("get", c.cacheType, "miss")
	default:
		c.logger.Warn("Baseline cache read failed", zap.Error(err))
		c.metrics.CacheOperation("get", c.cacheType, "error")
	}

	baselines, err := c.next.ListBaselines(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(baselines); err == nil {
		if err := c.cache.Set(ctx, BaselinesKey, data, c.ttl); err != nil {
			c.logger.Warn("Baseline cache write failed", zap.Error(err))
			c.metrics.CacheOperation("set", c.cacheType, "error")
		} else {
			c.metrics.CacheOperation("set", c.cacheType, "ok")
		}
	}
	return baselines, nil
}

// Invalidate drops the cached table so the next read reloads it
func (c *BaselineCache) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, BaselinesKey)
}
