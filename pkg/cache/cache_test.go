package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	require.NoError(t, c.Set(ctx, "mapped-ids", []byte(`["1","2"]`), []string{TagSOSMappings}))

	entry, ok := c.Get(ctx, "mapped-ids")
	require.True(t, ok)
	assert.Equal(t, []byte(`["1","2"]`), entry.Value)
	assert.False(t, entry.ComputedAt.IsZero())
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	now := time.Now()
	c.now = func() time.Time { return now }
	require.NoError(t, c.Set(ctx, "mapped-ids", []byte(`[]`), nil))

	_, ok := c.Get(ctx, "mapped-ids")
	require.True(t, ok)

	// Advance past the TTL
	c.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, ok = c.Get(ctx, "mapped-ids")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCacheInvalidateByTag(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	require.NoError(t, c.Set(ctx, "mapped-ids", []byte(`[]`), []string{TagSOSMappings}))
	require.NoError(t, c.Set(ctx, "unmapped-page-0", []byte(`[]`), []string{TagSOSMappings, TagUnmappedItems}))
	require.NoError(t, c.Set(ctx, "unrelated", []byte(`[]`), []string{"other"}))

	require.NoError(t, c.Invalidate(ctx, TagSOSMappings))

	_, ok := c.Get(ctx, "mapped-ids")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "unmapped-page-0")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "unrelated")
	assert.True(t, ok, "entries without the invalidated tag must survive")
}

func TestGetOrComputeCachesResult(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	calls := 0
	compute := func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"1", "2"}, nil
	}

	value, result, err := GetOrCompute(ctx, c, "mapped-ids", []string{TagSOSMappings}, compute)
	require.NoError(t, err)
	assert.False(t, result.Hit)
	assert.Equal(t, []string{"1", "2"}, value)

	value, result, err = GetOrCompute(ctx, c, "mapped-ids", []string{TagSOSMappings}, compute)
	require.NoError(t, err)
	assert.True(t, result.Hit)
	assert.Equal(t, []string{"1", "2"}, value)
	assert.Equal(t, 1, calls, "second read must be served from cache")
}

func TestGetOrComputeFailurePropagatesWithoutCaching(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	storeErr := errors.New("store unreachable")
	_, _, err := GetOrCompute(ctx, c, "mapped-ids", nil, func(ctx context.Context) ([]string, error) {
		return nil, storeErr
	})
	require.ErrorIs(t, err, storeErr)

	// The failure must not be cached; a later successful compute runs
	value, _, err := GetOrCompute(ctx, c, "mapped-ids", nil, func(ctx context.Context) ([]string, error) {
		return []string{"3"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, value)
}

func TestGetOrComputeAfterInvalidationRecomputes(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	calls := 0
	compute := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	value, _, err := GetOrCompute(ctx, c, "total", []string{TagUnmappedItems}, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, value)

	require.NoError(t, c.Invalidate(ctx, TagUnmappedItems))

	value, result, err := GetOrCompute(ctx, c, "total", []string{TagUnmappedItems}, compute)
	require.NoError(t, err)
	assert.False(t, result.Hit)
	assert.Equal(t, 2, value, "read after invalidation must observe fresh data")
}
