package search

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/gate-platform/rawi/internal/db"
	"github.com/gate-platform/rawi/internal/domain"
)

func TestSearchBasic_QueryShape(t *testing.T) {
	repo, ms := newTestRepo(t)

	var captured *db.TextQuery
	ms.searchTextFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		captured = q
		return &db.SearchResult{}, nil
	}

	_, _, err := repo.SearchBasic(context.Background(), "احكام الصلاه", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.IndexName != "rawi:gate_transcription:idx" {
		t.Errorf("unexpected index name: %s", captured.IndexName)
	}
	if captured.Query != "@text:(احكام الصلاه)" {
		t.Errorf("unexpected query: %s", captured.Query)
	}
	if captured.TopK != 10 {
		t.Errorf("unexpected topK: %d", captured.TopK)
	}
}

func TestSearchEnhanced_QueryShape(t *testing.T) {
	repo, ms := newTestRepo(t)

	var captured *db.TextQuery
	ms.searchTextFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		captured = q
		return &db.SearchResult{}, nil
	}

	synonyms := []string{"صلوات", "عباده", "ركوع", "سجود", "قيام"}
	_, _, err := repo.SearchEnhanced(context.Background(), "صلاة", synonyms, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := captured.Query

	for _, want := range []string{
		`(@text:"صلاة")=>{$weight:5;}`,
		`(@text:(صلاة))=>{$weight:3;}`,
		`(@text:(%%صلاة%%))=>{$weight:2;}`,
		`(@normalized:(صلوات|عباده|ركوع))=>{$weight:2.5;}`,
		`(@normalized:(سجود|قيام))=>{$weight:1.5;}`,
	} {
		if !strings.Contains(q, want) {
			t.Errorf("query missing clause %q:\n%s", want, q)
		}
	}
}

func TestSearchEnhanced_StrongBoostCoversSynonymsOnly(t *testing.T) {
	repo, ms := newTestRepo(t)

	var captured *db.TextQuery
	ms.searchTextFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		captured = q
		return &db.SearchResult{}, nil
	}

	// The caller strips the query terms before handing over synonyms, so the
	// first three entries of the strong clause are all synonyms.
	synonyms := []string{"صلوات", "الصلاه", "فريضه", "عباده"}
	if _, _, err := repo.SearchEnhanced(context.Background(), "صلاة", synonyms, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(captured.Query, `(@normalized:(صلوات|الصلاه|فريضه))=>{$weight:2.5;}`) {
		t.Errorf("strong synonym clause malformed:\n%s", captured.Query)
	}
	if strings.Contains(captured.Query, `@normalized:(صلاة`) {
		t.Errorf("query term must not appear in synonym clauses:\n%s", captured.Query)
	}
}

func TestSearchEnhanced_FewExpandedTermsNoWeakClause(t *testing.T) {
	repo, ms := newTestRepo(t)

	var captured *db.TextQuery
	ms.searchTextFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		captured = q
		return &db.SearchResult{}, nil
	}

	_, _, err := repo.SearchEnhanced(context.Background(), "زكاه", []string{"زكوات", "صدقه"}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(captured.Query, "$weight:1.5") {
		t.Errorf("unexpected weak synonym clause: %s", captured.Query)
	}
}

func TestSearchSemantic_QueryShape(t *testing.T) {
	repo, ms := newTestRepo(t)

	var captured *db.KNNQuery
	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		captured = q
		return &db.SearchResult{}, nil
	}

	vec := []float32{0.1, 0.2, 0.3}
	_, _, err := repo.SearchSemantic(context.Background(), vec, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.IndexName != "rawi:gate_transcription:idx" {
		t.Errorf("unexpected index name: %s", captured.IndexName)
	}
	if captured.K != 5 {
		t.Errorf("unexpected K: %d", captured.K)
	}
	if len(captured.Vector) != 3 {
		t.Errorf("unexpected vector: %v", captured.Vector)
	}
	if !slices.Contains(captured.ReturnFields, "__vector_score") {
		t.Errorf("KNN query must request the distance attribute, got %v", captured.ReturnFields)
	}
}

func TestSearchSemantic_PreservesScores(t *testing.T) {
	repo, ms := newTestRepo(t)

	// Entries arrive with the similarity already parsed from the distance
	// attribute; it must survive into the domain result untouched.
	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if !slices.Contains(q.ReturnFields, "__vector_score") {
			return &db.SearchResult{
				Total:   1,
				Entries: []db.SearchEntry{{Key: "rawi:gate_transcription:seg-1"}},
			}, nil
		}
		return &db.SearchResult{
			Total: 1,
			Entries: []db.SearchEntry{
				segmentEntry("rawi:gate_transcription:seg-1", 0.93, "نص الدرس"),
			},
		}, nil
	}

	results, _, err := repo.SearchSemantic(context.Background(), []float32{0.1, 0.2}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Score() != 0.93 {
		t.Errorf("semantic relevance score lost: got %f, want 0.93", results[0].Score())
	}
}

func TestSearchText_OmitsDistanceAttribute(t *testing.T) {
	repo, ms := newTestRepo(t)

	var captured *db.TextQuery
	ms.searchTextFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		captured = q
		return &db.SearchResult{}, nil
	}

	if _, _, err := repo.SearchBasic(context.Background(), "نص", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slices.Contains(captured.ReturnFields, "__vector_score") {
		t.Errorf("lexical query must not request the distance attribute, got %v", captured.ReturnFields)
	}
}

func TestSearchSemantic_MissingVector(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, _, err := repo.SearchSemantic(context.Background(), nil, 5)
	if !errors.Is(err, domain.ErrModeUnavailable) {
		t.Errorf("expected ErrModeUnavailable, got %v", err)
	}
}

func TestSearch_ParsesEntries(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchTextFn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				segmentEntry("rawi:gate_transcription:seg-1", 0.9, "نص اول"),
				segmentEntry("rawi:gate_transcription:seg-2", 0.5, "نص ثاني"),
			},
		}, nil
	}

	results, total, err := repo.SearchBasic(context.Background(), "نص", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected total 2, got %d", total)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	first := results[0]
	if first.ID() != "seg-1" {
		t.Errorf("expected key prefix stripped, got %s", first.ID())
	}
	if first.Score() != 0.9 {
		t.Errorf("unexpected score: %f", first.Score())
	}
	if first.Text() != "نص اول" {
		t.Errorf("unexpected text: %s", first.Text())
	}
	if first.Start() != 61.5 || first.End() != 75.0 {
		t.Errorf("unexpected offsets: %f-%f", first.Start(), first.End())
	}
	if first.VideoLink() != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("unexpected video link: %s", first.VideoLink())
	}
}

func TestSearch_EmptyResult(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchTextFn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		return &db.SearchResult{}, nil
	}

	results, total, err := repo.SearchBasic(context.Background(), "غائب", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 || len(results) != 0 {
		t.Errorf("expected no hits, got total=%d results=%d", total, len(results))
	}
}

func TestSearch_StoreErrorWrapped(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchTextFn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: errors.New("connection refused"), Transient: true}
	}

	_, _, err := repo.SearchBasic(context.Background(), "نص", 10)
	if err == nil {
		t.Fatal("expected error")
	}
	if !db.IsTransient(err) {
		t.Errorf("transient flag lost through wrapping: %v", err)
	}
}
