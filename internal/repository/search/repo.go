// Package search translates queries into FT.SEARCH expressions per retrieval
// strategy and parses hits back into domain results.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gate-platform/rawi/internal/db"
	"github.com/gate-platform/rawi/internal/domain"
	"github.com/gate-platform/rawi/internal/domain/search/result"
)

// Boosts applied to the clauses of the enhanced query. Exact phrase dominates,
// then full-term conjunction, synonyms, and fuzzy recovery.
const (
	phraseBoost      = 5.0
	andBoost         = 3.0
	synonymBoost     = 2.5
	fuzzyBoost       = 2.0
	weakSynonymBoost = 1.5
)

// Synonym terms past this rank get the weaker boost.
const strongSynonymCount = 3

var searchReturnFields = []string{"text", "start", "end", "video_link"}

// The KNN path must also request the computed distance attribute, or every
// semantic hit comes back without a relevance score.
var knnReturnFields = []string{"text", "start", "end", "video_link", "__vector_score"}

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store         store
	index         string
	fuzzyDistance int
}

// New creates a search repository over the named logical index.
func New(s store, index string, fuzzyDistance int) *Repo {
	return &Repo{store: s, index: index, fuzzyDistance: fuzzyDistance}
}

// SearchBasic performs a plain term match on the raw text field.
func (r *Repo) SearchBasic(ctx context.Context, query string, topK int) ([]result.Result, int, error) {
	expr := db.AndTerms("text", strings.Fields(query), 1)

	return r.searchText(ctx, expr, topK)
}

// SearchEnhanced performs the weighted multi-clause lexical search. synonyms
// are the one-hop alternatives of the normalized query terms, originals
// excluded; the first three carry the stronger boost. The clauses are
// independent: a document matching any one of them is a hit, ranked by the
// clause weights.
func (r *Repo) SearchEnhanced(
	ctx context.Context, query string, synonyms []string, topK int,
) ([]result.Result, int, error) {
	words := strings.Fields(query)

	strong := synonyms
	var weak []string
	if len(synonyms) > strongSynonymCount {
		strong = synonyms[:strongSynonymCount]
		weak = synonyms[strongSynonymCount:]
	}

	expr := db.Or(
		db.Phrase("text", query, phraseBoost),
		db.AndTerms("text", words, andBoost),
		db.FuzzyTerms("text", words, r.fuzzyDistance, fuzzyBoost),
		orTermsIfAny("normalized", strong, synonymBoost),
		orTermsIfAny("normalized", weak, weakSynonymBoost),
	)

	return r.searchText(ctx, expr, topK)
}

// SearchSemantic performs a KNN vector search. A missing vector is a contract
// violation by the caller, not an empty query.
func (r *Repo) SearchSemantic(ctx context.Context, vector []float32, topK int) ([]result.Result, int, error) {
	if len(vector) == 0 {
		return nil, 0, fmt.Errorf("semantic search without vector: %w", domain.ErrModeUnavailable)
	}

	q := &db.KNNQuery{
		IndexName:    r.indexName(),
		Vector:       vector,
		K:            topK,
		ReturnFields: knnReturnFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("search knn %s: %w", r.index, err)
	}

	results := r.parseResults(sr)
	return results, totalOf(sr), nil
}

func (r *Repo) searchText(ctx context.Context, expr string, topK int) ([]result.Result, int, error) {
	q := &db.TextQuery{
		IndexName:    r.indexName(),
		Query:        expr,
		TopK:         topK,
		ReturnFields: searchReturnFields,
	}

	sr, err := r.store.SearchText(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("search text %s: %w", r.index, err)
	}

	results := r.parseResults(sr)
	return results, totalOf(sr), nil
}

func (r *Repo) indexName() string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, r.index)
}

// parseResults converts db.SearchResult entries into domain results.
func (r *Repo) parseResults(sr *db.SearchResult) []result.Result {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	prefix := fmt.Sprintf("%s%s:", domain.KeyPrefix, r.index)
	results := make([]result.Result, 0, len(sr.Entries))

	for _, entry := range sr.Entries {
		docID := strings.TrimPrefix(entry.Key, prefix)
		results = append(results, parseEntryFields(docID, entry))
	}

	return results
}

func parseEntryFields(docID string, entry db.SearchEntry) result.Result {
	var text, videoLink string
	var start, end float64

	for k, v := range entry.Fields {
		switch k {
		case "text":
			text = v
		case "start":
			start, _ = strconv.ParseFloat(v, 64)
		case "end":
			end, _ = strconv.ParseFloat(v, 64)
		case "video_link":
			videoLink = v
		}
	}

	return result.New(docID, entry.Score, text, start, end, videoLink)
}

func totalOf(sr *db.SearchResult) int {
	if sr == nil {
		return 0
	}
	return sr.Total
}

func orTermsIfAny(field string, terms []string, weight float64) string {
	if len(terms) == 0 {
		return ""
	}
	return db.OrTerms(field, terms, weight)
}
