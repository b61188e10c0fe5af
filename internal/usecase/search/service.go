// Package search dispatches validated queries to the retrieval strategy the
// caller asked for, downgrading semantic to enhanced when the embedding
// provider is unavailable.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gate-platform/rawi/internal/arabic"
	"github.com/gate-platform/rawi/internal/db"
	"github.com/gate-platform/rawi/internal/domain"
	"github.com/gate-platform/rawi/internal/domain/search/mode"
	"github.com/gate-platform/rawi/internal/domain/search/request"
	"github.com/gate-platform/rawi/internal/domain/search/result"
	"github.com/gate-platform/rawi/internal/metrics"
)

// retryBackoff is the fixed wait before the single backend retry.
const retryBackoff = 250 * time.Millisecond

// Service executes searches across basic, enhanced, and semantic modes.
type Service struct {
	repo     Repository
	embed    Embedder
	provider StateReporter
	norm     *arabic.Normalizer
	synonyms *arabic.SynonymSet
	log      *zap.Logger

	backoff time.Duration
}

// New creates a search service.
func New(
	repo Repository, embed Embedder, provider StateReporter,
	norm *arabic.Normalizer, synonyms *arabic.SynonymSet, log *zap.Logger,
) *Service {
	return &Service{
		repo:     repo,
		embed:    embed,
		provider: provider,
		norm:     norm,
		synonyms: synonyms,
		log:      log,
		backoff:  retryBackoff,
	}
}

// Search executes a validated search request. The response's ModeUsed is the
// strategy that actually produced the results; a downgrade is reported there,
// never hidden.
func (s *Service) Search(ctx context.Context, req request.Request) (result.Response, error) {
	modeUsed := req.Mode()

	if modeUsed == mode.Semantic {
		if state := s.provider.State(); !state.Available {
			s.log.Warn("embedding provider degraded, downgrading to enhanced",
				zap.String("reason", state.Reason))
			metrics.SearchFallbacksTotal.WithLabelValues(string(mode.Semantic), string(mode.Enhanced)).Inc()
			modeUsed = mode.Enhanced
		}
	}

	var (
		results []result.Result
		total   int
		err     error
	)

	switch modeUsed {
	case mode.Basic:
		results, total, err = s.executeWithRetry(ctx, func() ([]result.Result, int, error) {
			return s.repo.SearchBasic(ctx, req.Query(), req.Size())
		})
	case mode.Enhanced:
		results, total, err = s.searchEnhanced(ctx, &req)
	case mode.Semantic:
		results, total, err = s.searchSemantic(ctx, &req)
		if errors.Is(err, domain.ErrModelUnavailable) {
			s.log.Warn("query embedding unavailable, downgrading to enhanced", zap.Error(err))
			metrics.SearchFallbacksTotal.WithLabelValues(string(mode.Semantic), string(mode.Enhanced)).Inc()
			modeUsed = mode.Enhanced
			results, total, err = s.searchEnhanced(ctx, &req)
		}
	}

	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(req.Mode()), "error").Inc()
		return result.Response{}, err
	}

	if results == nil {
		results = []result.Result{}
	}

	metrics.SearchRequestsTotal.WithLabelValues(string(req.Mode()), "success").Inc()
	return result.Response{Results: results, ModeUsed: modeUsed, Total: total}, nil
}

// searchEnhanced looks up synonyms of the normalized query terms and runs the
// weighted lexical query. Only the alternatives are passed on: the query terms
// themselves are ranked by the phrase and conjunction clauses, and the synonym
// boosts apply to synonyms alone.
func (s *Service) searchEnhanced(ctx context.Context, req *request.Request) ([]result.Result, int, error) {
	normalized := s.norm.Normalize(req.Query())
	synonyms := s.synonyms.Alternatives(strings.Fields(normalized))

	return s.executeWithRetry(ctx, func() ([]result.Result, int, error) {
		return s.repo.SearchEnhanced(ctx, req.Query(), synonyms, req.Size())
	})
}

// searchSemantic embeds the normalized query and runs KNN search. The query
// is normalized before embedding because the corpus vectors were computed
// from normalized text.
func (s *Service) searchSemantic(ctx context.Context, req *request.Request) ([]result.Result, int, error) {
	embResult, err := s.embed.Embed(ctx, s.norm.Normalize(req.Query()))
	if err != nil {
		return nil, 0, fmt.Errorf("vectorize query: %w", err)
	}

	return s.executeWithRetry(ctx, func() ([]result.Result, int, error) {
		return s.repo.SearchSemantic(ctx, embResult.Embedding, req.Size())
	})
}

// executeWithRetry retries a transient backend failure exactly once after a
// fixed backoff. A second transient failure surfaces ErrBackendUnavailable;
// server-side errors are never retried.
func (s *Service) executeWithRetry(
	ctx context.Context, fn func() ([]result.Result, int, error),
) ([]result.Result, int, error) {
	results, total, err := fn()
	if err == nil || !db.IsTransient(err) {
		return results, total, err
	}

	s.log.Warn("transient backend failure, retrying once", zap.Error(err))
	metrics.SearchBackendRetriesTotal.Inc()

	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case <-time.After(s.backoff):
	}

	results, total, err = fn()
	if err != nil && db.IsTransient(err) {
		return nil, 0, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	return results, total, err
}
