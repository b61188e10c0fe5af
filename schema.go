package rawi

import "context"

// SearchMode selects the retrieval strategy for a query.
type SearchMode string

const (
	// ModeBasic runs a plain lexical search on the raw query.
	ModeBasic SearchMode = "basic"
	// ModeEnhanced normalizes the query, expands synonyms and combines
	// phrase, AND and fuzzy matching. This is the default.
	ModeEnhanced SearchMode = "enhanced"
	// ModeSemantic embeds the query and runs a KNN vector search. Requires
	// a configured embedder; downgrades to enhanced otherwise.
	ModeSemantic SearchMode = "semantic"
)

// EmbeddingResult is a single embedding with token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder produces vector embeddings for query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// SearchResult is a single matched lecture segment.
type SearchResult struct {
	ID        string
	Score     float64
	Text      string
	Start     float64
	End       float64
	VideoLink string
	TimedLink string
}

// SearchResponse carries the matches and the mode that actually served
// the query, which may differ from the requested mode after a downgrade.
type SearchResponse struct {
	Results  []SearchResult
	ModeUsed SearchMode
	Total    int
}
