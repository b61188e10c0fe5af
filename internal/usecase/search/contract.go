package search

import (
	"context"

	"github.com/gate-platform/rawi/internal/domain"
	"github.com/gate-platform/rawi/internal/domain/search/result"
)

// Repository defines the storage contract for search operations.
type Repository interface {
	SearchBasic(ctx context.Context, query string, topK int) ([]result.Result, int, error)

	SearchEnhanced(ctx context.Context, query string, synonyms []string, topK int) ([]result.Result, int, error)

	SearchSemantic(ctx context.Context, vector []float32, topK int) ([]result.Result, int, error)
}

// Embedder vectorizes query text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// StateReporter exposes the embedding provider state captured at startup.
type StateReporter interface {
	State() domain.ProviderState
}
