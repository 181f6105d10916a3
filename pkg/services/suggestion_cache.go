package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const suggestionVersionKey = "pitchrank:suggestions:version"

// SuggestionCache stores scored suggestion reports keyed by cohort query.
// Entries are versioned: a merge or revert bumps the version so every cached
// report from before the registry changed stops resolving. Reads and writes
// degrade to misses when Redis is unavailable.
type SuggestionCache interface {
	Get(ctx context.Context, query *SuggestionQuery) (*SuggestionReport, bool)
	Set(ctx context.Context, query *SuggestionQuery, report *SuggestionReport)
	// Invalidate drops all cached reports by bumping the version.
	Invalidate(ctx context.Context) error
}

type suggestionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSuggestionCache creates a SuggestionCache backed by Redis. A nil client
// disables caching: every Get misses and Set and Invalidate do nothing.
func NewSuggestionCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) SuggestionCache {
	return &suggestionCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("suggestion-cache"),
	}
}

var _ SuggestionCache = (*suggestionCache)(nil)

func (c *suggestionCache) Get(ctx context.Context, query *SuggestionQuery) (*SuggestionReport, bool) {
	if c.client == nil {
		return nil, false
	}

	key, err := c.entryKey(ctx, query)
	if err != nil {
		c.logger.Debug("Failed to build cache key", zap.Error(err))
		return nil, false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("Cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var report SuggestionReport
	if err := json.Unmarshal(data, &report); err != nil {
		c.logger.Debug("Failed to decode cached report", zap.Error(err))
		return nil, false
	}

	return &report, true
}

func (c *suggestionCache) Set(ctx context.Context, query *SuggestionQuery, report *SuggestionReport) {
	if c.client == nil {
		return
	}

	key, err := c.entryKey(ctx, query)
	if err != nil {
		c.logger.Debug("Failed to build cache key", zap.Error(err))
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		c.logger.Debug("Failed to encode report", zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Debug("Cache write failed", zap.Error(err))
	}
}

func (c *suggestionCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, suggestionVersionKey).Err()
}

// entryKey folds the current version and the query parameters into the key.
// Old versions are left to expire via TTL rather than being deleted.
func (c *suggestionCache) entryKey(ctx context.Context, query *SuggestionQuery) (string, error) {
	version, err := c.client.Get(ctx, suggestionVersionKey).Result()
	if err != nil {
		if err != redis.Nil {
			return "", err
		}
		version = "0"
	}

	minConf := "default"
	if query.MinConfidence != nil {
		minConf = fmt.Sprintf("%.4f", *query.MinConfidence)
	}

	return fmt.Sprintf("pitchrank:suggestions:v%s:%s|%s|%s|%s|%d",
		version, query.AgeGroup, query.Gender, query.State, minConf, query.Limit), nil
}
