// Package cache holds an optional Redis-backed copy of the rule sets.
//
// It is off unless both a Redis address and a positive TTL are configured;
// entries expire after the TTL and Invalidate drops them immediately.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clinic-assistant/internal/models"
	"clinic-assistant/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	scopeKey       = "clinic-assistant:rules:scope"
	restrictionKey = "clinic-assistant:rules:restriction"
)

type scopeSource interface {
	ListActive(ctx context.Context) ([]*models.ScopeRule, error)
}

type restrictionSource interface {
	ListActive(ctx context.Context) ([]*models.RestrictionRule, error)
}

type RuleCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func NewRuleCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RuleCache {
	return &RuleCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RuleCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Invalidate removes both cached rule sets.
func (c *RuleCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, scopeKey, restrictionKey).Err()
}

// Scopes wraps src so reads go through the cache.
func (c *RuleCache) Scopes(src scopeSource) *CachedScopes {
	return &CachedScopes{src: src, cache: c}
}

func (c *RuleCache) Restrictions(src restrictionSource) *CachedRestrictions {
	return &CachedRestrictions{src: src, cache: c}
}

type CachedScopes struct {
	src   scopeSource
	cache *RuleCache
}

func (s *CachedScopes) ListActive(ctx context.Context) ([]*models.ScopeRule, error) {
	return load(ctx, s.cache, scopeKey, s.src.ListActive)
}

type CachedRestrictions struct {
	src   restrictionSource
	cache *RuleCache
}

func (s *CachedRestrictions) ListActive(ctx context.Context) ([]*models.RestrictionRule, error) {
	return load(ctx, s.cache, restrictionKey, s.src.ListActive)
}

// load serves key from Redis, or calls fetch and stores the result. Redis
// errors are logged and the source is used directly.
func load[T any](ctx context.Context, c *RuleCache, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if !c.enabled() {
		return fetch(ctx)
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		c.logger.Warn("Discarding unreadable cached rules", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Rule cache read failed", zap.String("key", key), zap.Error(err))
	}

	rules, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(rules)
	if err != nil {
		c.logger.Warn("Failed to encode rules for cache", zap.String("key", key), zap.Error(err))
		return rules, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Rule cache write failed", zap.String("key", key), zap.Error(err))
	}
	return rules, nil
}
