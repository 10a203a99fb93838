// Package cache provides a byte cache with TTL and LRU eviction and a typed
// cache for shortest-path query results on top of it.
package cache

import (
	"context"
	"errors"
	"time"

	"qecgraph/pkg/apperror"
	"qecgraph/pkg/config"
)

// Backend types for cache implementations.
const (
	// BackendMemory specifies an in-process cache backend.
	BackendMemory = "memory"
)

// Standard errors returned by cache operations.
var (
	// ErrKeyNotFound is returned when a requested key does not exist in the cache.
	ErrKeyNotFound = errors.New("key not found")
	// ErrCacheClosed is returned when an operation is attempted on a closed cache.
	ErrCacheClosed = errors.New("cache is closed")
)

// Cache is the set of operations the path cache relies on.
type Cache interface {
	// Get retrieves the value associated with the given key.
	// Returns ErrKeyNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value for the given key. A non-positive ttl uses the
	// cache default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// DeleteByPattern removes all keys matching pattern and returns how many
	// were removed.
	DeleteByPattern(ctx context.Context, pattern string) (int64, error)

	// Stats returns statistics about the cache.
	Stats(ctx context.Context) (*Stats, error)
	// Close shuts down the cache and releases any underlying resources.
	Close() error
}

// Stats holds various statistics about a cache's performance and state.
type Stats struct {
	TotalKeys    int64            // Number of live keys.
	Hits         int64            // Successful lookups.
	Misses       int64            // Failed lookups.
	Evictions    int64            // Entries dropped to respect the size limits.
	HitRate      float64          // Hits / (Hits + Misses).
	MemoryBytes  int64            // Sum of stored value sizes.
	KeysByPrefix map[string]int64 // Live keys grouped by the part before the first ':'.
	Backend      string
}

// Options contains configuration parameters for creating a Cache instance.
type Options struct {
	Backend         string
	DefaultTTL      time.Duration // Zero means entries never expire.
	MaxEntries      int
	MaxMemoryBytes  int64 // Zero disables the byte limit.
	CleanupInterval time.Duration
}

// DefaultOptions returns a new Options struct with sensible default values.
func DefaultOptions() *Options {
	return &Options{
		Backend:         BackendMemory,
		DefaultTTL:      5 * time.Minute,
		MaxEntries:      100000,
		MaxMemoryBytes:  256 * 1024 * 1024,
		CleanupInterval: 1 * time.Minute,
	}
}

// FromConfig создаёт опции из конфигурации
func FromConfig(cfg *config.CacheConfig) *Options {
	return &Options{
		Backend:         cfg.Driver,
		DefaultTTL:      cfg.DefaultTTL,
		MaxEntries:      cfg.MaxEntries,
		MaxMemoryBytes:  cfg.MaxMemoryBytes,
		CleanupInterval: cfg.CleanupInterval,
	}
}

// New создаёт кэш на основе опций
func New(opts *Options) (Cache, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	switch opts.Backend {
	case BackendMemory, "":
		return NewMemoryCache(opts), nil
	default:
		return nil, apperror.Newf(apperror.CodeInvalidArgument, "unknown cache backend %q", opts.Backend).
			WithField("cache.driver")
	}
}
