// Package cache implements the in-process temporal cache store: a key/value
// store partitioned by category, each with its own time-to-live.
package cache

import (
	"sync"
	"time"
)

// Category partitions the key space. Keys never collide across categories.
type Category string

const (
	CategoryTimestamps   Category = "timestamps"
	CategoryBounds       Category = "bounds"
	CategoryContacts     Category = "contacts"
	CategoryUserContacts Category = "userContacts"
	CategoryTrajectory   Category = "trajectory"
)

// Default TTLs are keyed to data volatility: timestamp lists and bounds are
// near-static, per-timestamp snapshots churn more, and per-user/per-pair
// queries produce many distinct keys.
var defaultTTLs = map[Category]time.Duration{
	CategoryTimestamps:   time.Hour,
	CategoryBounds:       time.Hour,
	CategoryContacts:     30 * time.Minute,
	CategoryUserContacts: 15 * time.Minute,
	CategoryTrajectory:   15 * time.Minute,
}

// DefaultTTL returns the default time-to-live for a category.
func DefaultTTL(category Category) time.Duration {
	if ttl, ok := defaultTTLs[category]; ok {
		return ttl
	}
	return 15 * time.Minute
}

type entry struct {
	data      any
	createdAt time.Time
	ttl       time.Duration
}

// Store is an in-memory cache with lazy TTL eviction. Values stored in it are
// treated as immutable: the engine only caches aggregates that are never
// mutated after construction, so handing the same value to concurrent readers
// is safe. The store itself is guarded by a mutex; there is no LRU or
// max-size bound, only TTL expiry and explicit clearing.
type Store struct {
	mu      sync.Mutex
	entries map[Category]map[string]entry
	ttls    map[Category]time.Duration
	nowFn   func() time.Time
}

// NewStore builds a Store. Overrides replace the default TTL for listed
// categories; pass nil to keep all defaults.
func NewStore(overrides map[Category]time.Duration) *Store {
	ttls := make(map[Category]time.Duration, len(defaultTTLs))
	for category, ttl := range defaultTTLs {
		ttls[category] = ttl
	}
	for category, ttl := range overrides {
		if ttl > 0 {
			ttls[category] = ttl
		}
	}
	return &Store{
		entries: make(map[Category]map[string]entry),
		ttls:    ttls,
		nowFn:   time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *Store) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// Get returns the cached value for (category, key), or ok=false if no entry
// exists or the entry's TTL has elapsed. A stale entry is removed on the read
// that discovers it.
func (s *Store) Get(category Category, key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.entries[category]
	if !ok {
		return nil, false
	}
	e, ok := bucket[key]
	if !ok {
		return nil, false
	}
	if s.nowFn().Sub(e.createdAt) > e.ttl {
		delete(bucket, key)
		return nil, false
	}
	return e.data, true
}

// Set stores data under (category, key) with the category's TTL, overwriting
// any existing entry unconditionally.
func (s *Store) Set(category Category, key string, data any) {
	s.SetWithTTL(category, key, data, s.ttlFor(category))
}

// SetWithTTL stores data with an explicit TTL instead of the category default.
func (s *Store) SetWithTTL(category Category, key string, data any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.entries[category]
	if !ok {
		bucket = make(map[string]entry)
		s.entries[category] = bucket
	}
	bucket[key] = entry{
		data:      data,
		createdAt: s.nowFn(),
		ttl:       ttl,
	}
}

// Delete removes a single entry if present.
func (s *Store) Delete(category Category, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bucket, ok := s.entries[category]; ok {
		delete(bucket, key)
	}
}

// Clear drops every entry in every category. Called on session teardown.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[Category]map[string]entry)
}

// Sweep removes every expired entry and reports how many were dropped. Lazy
// expiry on read keeps results correct without it; sweeping only reclaims
// memory for keys that are never read again.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	removed := 0
	for _, bucket := range s.entries {
		for key, e := range bucket {
			if now.Sub(e.createdAt) > e.ttl {
				delete(bucket, key)
				removed++
			}
		}
	}
	return removed
}

// Len reports the number of live-or-stale entries currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, bucket := range s.entries {
		total += len(bucket)
	}
	return total
}

func (s *Store) ttlFor(category Category) time.Duration {
	if ttl, ok := s.ttls[category]; ok {
		return ttl
	}
	return DefaultTTL(category)
}
