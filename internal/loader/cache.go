package loader

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"git.home.luguber.info/inful/schemabuild/internal/schema"
)

// Cache is a content-hash-keyed LRU of decoded source files. Watch mode
// uses it so a rebuild only re-decodes files whose bytes changed.
type Cache struct {
	lru *lru.Cache[string, *schema.SourceFile]
}

// DefaultCacheSize bounds the parse cache; trees larger than this still
// work, they just re-parse cold entries.
const DefaultCacheSize = 1024

// NewCache creates a parse cache. size <= 0 uses DefaultCacheSize.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	inner, err := lru.New[string, *schema.SourceFile](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: inner}, nil
}

// Get returns the cached decode for a content hash.
func (c *Cache) Get(hash string) (*schema.SourceFile, bool) {
	return c.lru.Get(hash)
}

// Add stores a decoded file under its content hash.
func (c *Cache) Add(hash string, f *schema.SourceFile) {
	c.lru.Add(hash, f)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}
