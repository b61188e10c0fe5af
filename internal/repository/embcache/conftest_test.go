package embcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/gate-platform/rawi/internal/db"
	"github.com/gate-platform/rawi/internal/domain"
)

type mockEmbedder struct {
	result      domain.EmbeddingResult
	err         error
	batchResult domain.BatchEmbeddingResult
	batchErr    error
	embedCalls  int
	batchCalls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.embedCalls++
	return m.result, m.err
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	if m.batchResult.Embeddings != nil {
		return m.batchResult, nil
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = m.result.Embedding
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: m.result.PromptTokens * len(texts),
		TotalTokens:  m.result.TotalTokens * len(texts),
	}, nil
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, _ time.Duration) error {
	return m.Set(ctx, key, value)
}

func newTestCachedEmbedder(t *testing.T, inner *mockEmbedder) (*CachedEmbedder, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	ce, err := New(inner, ms, "gate-arabert-v1-doc", 16, 0, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create cached embedder: %v", err)
	}
	return ce, ms
}

// kvBackedStore is a mockKVStore over a real map, for tests that share one
// store tier between several embedders.
func kvBackedStore() *mockKVStore {
	kv := make(map[string][]byte)
	ms := &mockKVStore{}
	ms.getFn = func(_ context.Context, key string) ([]byte, error) {
		data, ok := kv[key]
		if !ok {
			return nil, db.ErrKeyNotFound
		}
		return data, nil
	}
	ms.setFn = func(_ context.Context, key string, value []byte) error {
		kv[key] = value
		return nil
	}
	return ms
}
