package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Ramsey-B/sorrel/pkg/metrics"
)

type memoryEntry struct {
	entry     Entry
	tags      []string
	expiresAt time.Time
}

// MemoryCache is a process-local cache. It is the default backend and the one
// exercised by tests; entries expire after the configured TTL and are dropped
// eagerly on tag invalidation.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (*Entry, bool) {
	m.mu.RLock()
	me, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if m.now().After(me.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}

	entry := me.entry
	return &entry, true
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, tags []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{
		entry: Entry{
			Value:      value,
			ComputedAt: m.now(),
		},
		tags:      tags,
		expiresAt: m.now().Add(m.ttl),
	}
	return nil
}

func (m *MemoryCache) Invalidate(_ context.Context, tags ...string) error {
	tagSet := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tagSet[tag] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, me := range m.entries {
		for _, tag := range me.tags {
			if _, ok := tagSet[tag]; ok {
				delete(m.entries, key)
				metrics.CacheInvalidationsTotal.WithLabelValues(tag).Inc()
				break
			}
		}
	}
	return nil
}

// Len reports the number of live entries, expired or not.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
