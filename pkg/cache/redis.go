package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/sorrel/pkg/metrics"
	"github.com/Ramsey-B/sorrel/pkg/redis"
)

const (
	keyPrefix = "sorrel:cache:"
	tagPrefix = "sorrel:tag:"
)

// RedisCache stores entries in Redis so invalidation is shared across replicas.
// Tag membership is tracked in Redis sets keyed by tag name. All failures are
// logged and surface as misses.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger ectologger.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger ectologger.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) (*Entry, bool) {
	raw, err := r.client.Get(ctx, keyPrefix+key)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		r.logger.WithContext(ctx).WithError(err).Warnf("dropping unreadable cache entry %s", key)
		_ = r.client.Del(ctx, keyPrefix+key)
		return nil, false
	}

	return &entry, true
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, tags []string) error {
	entry := Entry{
		Value:      value,
		ComputedAt: time.Now(),
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, keyPrefix+key, raw, r.ttl); err != nil {
		r.logger.WithContext(ctx).WithError(err).Warnf("failed to cache %s", key)
		return err
	}

	for _, tag := range tags {
		if err := r.client.SAdd(ctx, tagPrefix+tag, keyPrefix+key); err != nil {
			r.logger.WithContext(ctx).WithError(err).Warnf("failed to tag cache entry %s with %s", key, tag)
			continue
		}
		// Tag sets outlive their members slightly; stale members resolve to misses
		_ = r.client.Expire(ctx, tagPrefix+tag, r.ttl*2)
	}

	return nil
}

func (r *RedisCache) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		members, err := r.client.SMembers(ctx, tagPrefix+tag)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).Warnf("failed to read tag set %s", tag)
			continue
		}

		if len(members) > 0 {
			if err := r.client.Del(ctx, members...); err != nil {
				r.logger.WithContext(ctx).WithError(err).Warnf("failed to invalidate tag %s", tag)
				continue
			}
			for range members {
				metrics.CacheInvalidationsTotal.WithLabelValues(tag).Inc()
			}
		}

		_ = r.client.Del(ctx, tagPrefix+tag)
	}
	return nil
}
