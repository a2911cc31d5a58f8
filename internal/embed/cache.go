package embed

import (
	"context"
	"sync"
	"time"
)

// CachedEmbedder wraps another embedder with an in-memory TTL cache, so
// repeated ingestion or retrieval of the same text does not hit the provider
// again. Safe for concurrent use.
type CachedEmbedder struct {
	inner Embedder
	ttl   time.Duration

	mu    sync.RWMutex
	cache map[string]cachedVector
}

type cachedVector struct {
	vector    Vector
	createdAt time.Time
}

// NewCachedEmbedder wraps inner with a cache. ttl <= 0 means entries never
// expire.
func NewCachedEmbedder(inner Embedder, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		inner: inner,
		ttl:   ttl,
		cache: make(map[string]cachedVector),
	}
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	if v, ok := c.get(text); ok {
		return v, nil
	}

	v, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[text] = cachedVector{vector: v, createdAt: time.Now()}
	c.mu.Unlock()
	return v, nil
}

func (c *CachedEmbedder) get(text string) (Vector, bool) {
	c.mu.RLock()
	entry, ok := c.cache[text]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Since(entry.createdAt) > c.ttl {
		c.mu.Lock()
		delete(c.cache, text)
		c.mu.Unlock()
		return nil, false
	}
	return entry.vector, true
}

func (c *CachedEmbedder) Dims() int { return c.inner.Dims() }
