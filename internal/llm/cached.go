package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultEmbeddingCacheSize is the number of query embeddings kept in memory.
const DefaultEmbeddingCacheSize = 1000

// TextEmbedder embeds a single text with a named model.
type TextEmbedder interface {
	EmbedText(ctx context.Context, text, model string) ([]float32, error)
}

// CachedEmbedder memoizes query embeddings per (model, text).
type CachedEmbedder struct {
	inner TextEmbedder
	cache *lru.Cache[string, []float32]
}

// NewCachedEmbedder wraps inner with an LRU cache of cacheSize entries.
func NewCachedEmbedder(inner TextEmbedder, cacheSize int) *CachedEmbedder {
	if cacheSize <= 0 {
		cacheSize = DefaultEmbeddingCacheSize
	}
	cache, _ := lru.New[string, []float32](cacheSize)
	return &CachedEmbedder{inner: inner, cache: cache}
}

func cacheKey(text, model string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// EmbedText returns the cached vector or embeds and caches it.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text, model string) ([]float32, error) {
	key := cacheKey(text, model)
	if vec, ok := c.cache.Get(key); ok {
		return vec, nil
	}

	vec, err := c.inner.EmbedText(ctx, text, model)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, vec)
	return vec, nil
}

// Len returns the number of cached vectors.
func (c *CachedEmbedder) Len() int {
	return c.cache.Len()
}
