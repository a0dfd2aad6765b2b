package extract

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultCacheTTL is how long extracted text stays valid before the file is
// re-read. Thirty minutes matches the staleness tolerance of the scan paths
// that re-extract candidate files per query.
const DefaultCacheTTL = 30 * time.Minute

// DefaultCacheSize bounds the number of cached extractions.
const DefaultCacheSize = 1024

// CachedExtractor wraps an Extractor with an expiring LRU cache keyed by file
// path. Deep-search paths extract the same candidate files repeatedly across
// queries; the cache makes that cheap without growing stale forever.
type CachedExtractor struct {
	inner *Extractor
	cache *expirable.LRU[string, string]
}

// NewCachedExtractor creates a caching extractor. size <= 0 and ttl <= 0 fall
// back to the defaults.
func NewCachedExtractor(inner *Extractor, size int, ttl time.Duration) *CachedExtractor {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedExtractor{
		inner: inner,
		cache: expirable.NewLRU[string, string](size, nil, ttl),
	}
}

// Extract returns the cached text for path when fresh, otherwise extracts and
// caches. Errors are never cached.
func (c *CachedExtractor) Extract(path string) (string, error) {
	if text, ok := c.cache.Get(path); ok {
		return text, nil
	}
	text, err := c.inner.Extract(path)
	if err != nil {
		return "", err
	}
	c.cache.Add(path, text)
	return text, nil
}

// Invalidate drops the cached entry for path (called on file change events).
func (c *CachedExtractor) Invalidate(path string) {
	c.cache.Remove(path)
}

// Len returns the number of cached entries.
func (c *CachedExtractor) Len() int {
	return c.cache.Len()
}
