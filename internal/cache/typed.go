package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

const (
	DefaultSearchTTL  = 300 * time.Second
	DefaultCVTTL      = 3600 * time.Second
	DefaultProfileTTL = 86400 * time.Second
)

// Typed is a key-prefixing, TTL-fixing view over a Store. Values are cloned
// on the way in and out so no caller shares memory with the cache.
type Typed[T any] struct {
	store  *Store
	prefix string
	ttl    time.Duration
	clone  func(T) T
}

// NewTyped creates a typed view. clone may be nil for plain value types.
func NewTyped[T any](store *Store, prefix string, ttl time.Duration, clone func(T) T) *Typed[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Typed[T]{store: store, prefix: prefix, ttl: ttl, clone: clone}
}

// Get returns a copy of the value at key. A value of another type is a miss.
func (c *Typed[T]) Get(key string) (T, bool) {
	var zero T
	raw, ok := c.store.Get(c.prefix + key)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return c.clone(v), true
}

// Set stores a copy of v under key with the view's TTL.
func (c *Typed[T]) Set(key string, v T) bool {
	return c.store.Set(c.prefix+key, c.clone(v), c.ttl)
}

// Del removes key.
func (c *Typed[T]) Del(key string) bool {
	return c.store.Del(c.prefix+key) == 1
}

// Clear removes every entry of this view and returns the count.
func (c *Typed[T]) Clear() int {
	return c.store.DelPrefix(c.prefix)
}

// TTL returns the view's time-to-live.
func (c *Typed[T]) TTL() time.Duration { return c.ttl }

// NewJobSearchCache caches aggregated search results keyed by SearchKey.
func NewJobSearchCache(store *Store, ttl time.Duration) *Typed[[]model.Job] {
	if ttl <= 0 {
		ttl = DefaultSearchTTL
	}
	return NewTyped(store, "jobs:", ttl, model.CloneJobs)
}

// NewCVAnalysisCache caches CV analyses keyed by ContentHash.
func NewCVAnalysisCache(store *Store, ttl time.Duration) *Typed[model.CVAnalysis] {
	if ttl <= 0 {
		ttl = DefaultCVTTL
	}
	return NewTyped(store, "cv:", ttl, model.CVAnalysis.Clone)
}

// NewProfileCache caches user profiles keyed by user id.
func NewProfileCache(store *Store, ttl time.Duration) *Typed[model.Profile] {
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	return NewTyped(store, "profile:", ttl, model.Profile.Clone)
}

// SearchKey builds the composite key for a query. Keyword order and case do
// not matter; blank keywords are ignored.
func SearchKey(q model.Query) string {
	kws := make([]string, 0, len(q.Keywords))
	for _, k := range q.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kws = append(kws, k)
		}
	}
	slices.Sort(kws)
	kws = slices.Compact(kws)
	return strings.Join(kws, ",") + "|" + strings.ToLower(strings.TrimSpace(q.Location))
}

// ContentHash is the SHA-256 hex digest of text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
