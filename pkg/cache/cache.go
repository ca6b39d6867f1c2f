// Package cache implements a TTL cache with tag invalidation for reconciliation
// results. Values are cached as JSON so the memory and Redis backends behave the
// same. Any backend failure is treated as a miss so callers always fall back to
// computing against the real store.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Ramsey-B/sorrel/pkg/metrics"
)

// Tags used to group reconciliation entries for invalidation.
const (
	TagSOSMappings   = "sos-mappings"
	TagUnmappedItems = "unmapped-items"
	TagProducts      = "products"
	TagParents       = "parents"
)

// AllTags returns every reconciliation tag. Mutations invalidate all of them since
// any catalog write can change the mapped set, the unmapped pages, and the parent views.
func AllTags() []string {
	return []string{TagSOSMappings, TagUnmappedItems, TagProducts, TagParents}
}

// Entry is a cached value with the time it was computed.
type Entry struct {
	Value      []byte    `json:"value"`
	ComputedAt time.Time `json:"computed_at"`
}

// Cache stores tagged entries for a bounded time window.
type Cache interface {
	Get(ctx context.Context, key string) (*Entry, bool)
	Set(ctx context.Context, key string, value []byte, tags []string) error
	Invalidate(ctx context.Context, tags ...string) error
}

// Result describes how a GetOrCompute call was satisfied.
type Result struct {
	Hit        bool
	QueryTime  time.Duration
	ComputedAt time.Time
}

// GetOrCompute returns the cached value for key, or runs compute and caches the
// result under the given tags. A cache read or write failure degrades to a miss;
// the caller only sees an error when compute itself fails.
func GetOrCompute[T any](ctx context.Context, c Cache, key string, tags []string, compute func(ctx context.Context) (T, error)) (T, Result, error) {
	var value T

	if entry, ok := c.Get(ctx, key); ok {
		if err := json.Unmarshal(entry.Value, &value); err == nil {
			metrics.RecordCacheLookup(key, "hit")
			return value, Result{Hit: true, ComputedAt: entry.ComputedAt}, nil
		}
		// A corrupt entry is dropped and recomputed
	}

	metrics.RecordCacheLookup(key, "miss")

	start := time.Now()
	value, err := compute(ctx)
	queryTime := time.Since(start)
	if err != nil {
		return value, Result{QueryTime: queryTime}, err
	}

	computedAt := time.Now()
	if raw, merr := json.Marshal(value); merr == nil {
		_ = c.Set(ctx, key, raw, tags)
	}

	return value, Result{QueryTime: queryTime, ComputedAt: computedAt}, nil
}
