// Package embcache caches query embeddings in two tiers: an in-process LRU
// and the shared key-value store.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/gate-platform/rawi/internal/db"
	"github.com/gate-platform/rawi/internal/domain"
	"github.com/gate-platform/rawi/internal/metrics"
)

var cacheKeyPrefix = domain.KeyPrefix + "emb_cache:"

// store is the consumer interface for the shared cache tier (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// batchInner is what BatchEmbed needs from the wrapped provider.
type batchInner interface {
	domain.Embedder
	domain.BatchEmbedder
}

// CachedEmbedder caches embeddings in memory and in a key-value store.
// The memory tier avoids a store round-trip for repeated queries within one
// process; the store tier shares results across processes and restarts.
// Keys carry the model identifier: entries from different models live in
// different vector spaces and must never be served for one another.
type CachedEmbedder struct {
	inner  batchInner
	memory *lru.Cache[string, []float32]
	store  store
	model  string
	ttl    time.Duration // 0 = store entries never expire
	logger *zap.Logger
}

// New creates a two-tier caching decorator for the given embedding model.
// size is the memory tier capacity.
func New(
	inner batchInner,
	s store,
	model string,
	size int,
	ttl time.Duration,
	logger *zap.Logger,
) (*CachedEmbedder, error) {
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	memory, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}

	return &CachedEmbedder{
		inner:  inner,
		memory: memory,
		store:  s,
		model:  model,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Embed returns a cached embedding or calls the inner embedder.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
// Cache miss: full EmbeddingResult from inner.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.cacheKey(text)

	if vec, ok := c.lookup(ctx, key); ok {
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	c.memory.Add(key, result.Embedding)
	c.putToStore(ctx, key, result.Embedding)
	return result, nil
}

// BatchEmbed resolves each text against the cache and sends only the misses
// to the inner provider in one batch. Token usage reflects misses only.
func (c *CachedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	embeddings := make([][]float32, len(texts))
	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))

	for i, text := range texts {
		key := c.cacheKey(text)
		if vec, ok := c.lookup(ctx, key); ok {
			embeddings[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	out := domain.BatchEmbeddingResult{Embeddings: embeddings}

	if len(missTexts) > 0 {
		res, err := c.inner.BatchEmbed(ctx, missTexts)
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
		if len(res.Embeddings) != len(missTexts) {
			return domain.BatchEmbeddingResult{}, fmt.Errorf(
				"batch embed returned %d vectors for %d texts", len(res.Embeddings), len(missTexts))
		}

		for j, i := range missIdx {
			vec := res.Embeddings[j]
			embeddings[i] = vec

			key := c.cacheKey(texts[i])
			c.memory.Add(key, vec)
			c.putToStore(ctx, key, vec)
		}
		out.PromptTokens = res.PromptTokens
		out.TotalTokens = res.TotalTokens
	}

	return out, nil
}

// lookup checks the memory tier and then the store tier, promoting store hits
// into memory.
func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	if vec, ok := c.memory.Get(key); ok {
		metrics.EmbeddingCacheTotal.WithLabelValues("memory", "hit").Inc()
		return vec, true
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("memory", "miss").Inc()

	if vec, ok := c.getFromStore(ctx, key); ok {
		metrics.EmbeddingCacheTotal.WithLabelValues("store", "hit").Inc()
		c.memory.Add(key, vec)
		return vec, true
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("store", "miss").Inc()

	return nil, false
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return cacheKeyPrefix + c.model + ":" + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) getFromStore(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	vec, err := bytesToVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	return vec, true
}

func (c *CachedEmbedder) putToStore(ctx context.Context, key string, vec []float32) {
	data := vectorToCacheBytes(vec)

	var err error
	if c.ttl > 0 {
		err = c.store.SetWithTTL(ctx, key, data, c.ttl)
	} else {
		err = c.store.Set(ctx, key, data)
	}
	if err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

func vectorToCacheBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
