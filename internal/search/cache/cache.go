// Package cache is a Redis-backed query result cache. Concurrent identical
// queries collapse into one engine call via singleflight.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/searchcore/searchcore/internal/engine"
	"github.com/searchcore/searchcore/pkg/config"
	"github.com/searchcore/searchcore/pkg/metrics"
	pkgredis "github.com/searchcore/searchcore/pkg/redis"
)

const keyPrefix = "search:"

// QueryCache caches ranked result lists keyed by the normalized query.
type QueryCache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a QueryCache. Metrics may be nil.
func New(client *pkgredis.Client, cfg config.RedisConfig, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		client:  client,
		cfg:     cfg,
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

// Get returns the cached result for the normalized query, if any.
func (c *QueryCache) Get(ctx context.Context, normalized string) ([]engine.Document, bool) {
	key := c.buildKey(normalized)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	var result []engine.Document
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hit()
	return result, true
}

// Set stores a result list under the normalized query with the configured
// TTL.
func (c *QueryCache) Set(ctx context.Context, normalized string, result []engine.Document) {
	key := c.buildKey(normalized)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for the normalized query or
// computes, stores and returns it. The second return reports a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	normalized string,
	computeFn func() ([]engine.Document, error),
) ([]engine.Document, bool, error) {
	if result, ok := c.Get(ctx, normalized); ok {
		return result, true, nil
	}
	type lookup struct {
		docs []engine.Document
		hit  bool
	}
	key := c.buildKey(normalized)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.Get(ctx, normalized); ok {
			return lookup{docs: result, hit: true}, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, normalized, result)
		return lookup{docs: result}, nil
	})
	if err != nil {
		return nil, false, err
	}
	res := val.(lookup)
	return res.docs, res.hit, nil
}

// Invalidate drops every cached query result. Call after any corpus
// mutation.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating query cache: %w", err)
	}
	c.logger.Info("query cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) buildKey(normalized string) string {
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

func (c *QueryCache) hit() {
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) miss() {
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}
