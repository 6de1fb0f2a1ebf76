package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	gocache "github.com/patrickmn/go-cache"

	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

const defaultMemoryCleanupInterval = 10 * time.Minute

// MemoryCacheRepository keeps JSON payloads in process memory. It serves the
// catalog when Redis is not configured or cannot be reached.
type MemoryCacheRepository struct {
	cache *gocache.Cache
}

// NewMemoryCacheRepository builds an in-process cache whose entries expire
// after defaultTTL unless Set specifies otherwise.
func NewMemoryCacheRepository(defaultTTL time.Duration) *MemoryCacheRepository {
	if defaultTTL <= 0 {
		defaultTTL = gocache.NoExpiration
	}
	return &MemoryCacheRepository{cache: gocache.New(defaultTTL, defaultMemoryCleanupInterval)}
}

// Get unmarshals the cached value into dest.
func (r *MemoryCacheRepository) Get(_ context.Context, key string, dest interface{}) error {
	value, found := r.cache.Get(key)
	if !found {
		return appErrors.ErrCacheMiss
	}
	raw, ok := value.([]byte)
	if !ok {
		r.cache.Delete(key)
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Set stores a JSON copy of value so later mutations by the caller do not leak
// into the cache.
func (r *MemoryCacheRepository) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	r.cache.Set(key, payload, ttl)
	return nil
}

// DeleteByPattern removes entries whose key matches the glob pattern.
func (r *MemoryCacheRepository) DeleteByPattern(_ context.Context, pattern string) error {
	for key := range r.cache.Items() {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return fmt.Errorf("match cache pattern %s: %w", pattern, err)
		}
		if matched {
			r.cache.Delete(key)
		}
	}
	return nil
}

// Close drops every entry.
func (r *MemoryCacheRepository) Close() error {
	r.cache.Flush()
	return nil
}
