package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts, chunking internally to bound memory.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// StateReporter exposes the provider state captured at initialization.
type StateReporter interface {
	State() ProviderState
}

// EmbeddingResult carries the embedding vector and token usage through the
// decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult carries multiple embedding vectors and aggregate token
// usage. Embeddings[i] corresponds to the i-th input text.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// ProviderState is the process-wide embedding provider state, set once at
// startup. A provider that failed to initialize stays degraded for the
// process lifetime; per-request retries would mask a systemic failure.
type ProviderState struct {
	Available  bool
	Model      string
	Dimensions int
	Reason     string // failure reason when Available is false
}
