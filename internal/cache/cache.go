// Package cache is a process-lifetime TTL key-value store with hit/miss stats.
package cache

import (
	"strings"
	"sync"
	"time"
)

const (
	DefaultTTL           = 600 * time.Second
	DefaultSweepInterval = 120 * time.Second
)

// entry wraps a cached value with its absolute expiry.
type entry struct {
	value     any
	expiresAt time.Time
}

// Stats is a snapshot of the store counters.
type Stats struct {
	Keys   int
	Hits   uint64
	Misses uint64
}

// Options configures a Store. Zero values fall back to defaults.
type Options struct {
	DefaultTTL    time.Duration
	SweepInterval time.Duration // negative disables the background sweep
	Clock         func() time.Time
}

// Store is safe for concurrent use. Expired entries are evicted lazily on
// access and periodically by a background sweep.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	hits    uint64
	misses  uint64

	defaultTTL time.Duration
	now        func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a store and starts its sweeper. Call Close to stop it.
func New(opts Options) *Store {
	s := &Store{
		entries:    make(map[string]entry),
		defaultTTL: opts.DefaultTTL,
		now:        opts.Clock,
		stop:       make(chan struct{}),
	}
	if s.defaultTTL <= 0 {
		s.defaultTTL = DefaultTTL
	}
	if s.now == nil {
		s.now = time.Now
	}

	interval := opts.SweepInterval
	if interval == 0 {
		interval = DefaultSweepInterval
	}
	if interval > 0 {
		go s.sweepLoop(interval)
	}
	return s
}

// Set stores value under key for ttl. A zero ttl uses the default TTL.
// Returns false for an empty key or a negative ttl.
func (s *Store) Set(key string, value any, ttl time.Duration) bool {
	if key == "" || ttl < 0 {
		return false
	}
	if ttl == 0 {
		ttl = s.defaultTTL
	}

	s.mu.Lock()
	s.entries[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return true
}

// Get returns the value for key and counts a hit or a miss.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(key)
	if !ok {
		s.misses++
		return nil, false
	}
	s.hits++
	return e.value, true
}

// Has reports whether key holds an unexpired value. It does not touch the counters.
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.lookup(key)
	return ok
}

// lookup evicts key if it has expired. Caller holds mu.
func (s *Store) lookup(key string) (entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return entry{}, false
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return entry{}, false
	}
	return e, true
}

// Del removes keys and returns how many were present.
func (s *Store) Del(keys ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, k := range keys {
		if _, ok := s.entries[k]; ok {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// DelPrefix removes every key starting with prefix and returns the count.
func (s *Store) DelPrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// Flush drops every entry. Counters are kept.
func (s *Store) Flush() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
}

// FlushStats resets the hit and miss counters.
func (s *Store) FlushStats() {
	s.mu.Lock()
	s.hits, s.misses = 0, 0
	s.mu.Unlock()
}

// Stats returns the current key count and counters. Expired but unswept
// entries are still counted as keys.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Keys: len(s.entries), Hits: s.hits, Misses: s.misses}
}

// Close stops the background sweep. It is safe to call more than once.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Store) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep removes every expired entry and returns the number removed.
func (s *Store) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}
