package optid

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache stores compiled rule programs and resolved candidate locations.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

type lruCache struct {
	entries *lru.Cache[string, any]
}

// NewLRUCache returns a Cache bounded to size entries and safe for
// concurrent use.
func NewLRUCache(size int) (Cache, error) {
	entries, err := lru.New[string, any](size)
	if err != nil {
		return nil, fmt.Errorf("optid: lru cache: %w", err)
	}
	return &lruCache{entries: entries}, nil
}

func (c *lruCache) Get(key string) (any, bool) {
	return c.entries.Get(key)
}

func (c *lruCache) Set(key string, value any) {
	c.entries.Add(key, value)
}

// WithProgramCache registers a cache for compiled deny rules.
func WithProgramCache(cache Cache) Option {
	return func(cfg *config) {
		cfg.programCache = cache
	}
}

// WithLocationCache memoises the origin path of candidate frames. Entries are
// keyed by function and source file, so the cache never changes which owner a
// frame resolves to.
func WithLocationCache(cache Cache) Option {
	return func(cfg *config) {
		cfg.locationCache = cache
	}
}
