// Package indexing runs the batch pipeline that embeds corpus segments and
// writes them to the vector-enabled target index, checkpointing after each
// page so an interrupted run resumes instead of reprocessing.
package indexing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gate-platform/rawi/internal/arabic"
	"github.com/gate-platform/rawi/internal/domain"
	"github.com/gate-platform/rawi/internal/domain/document"
	domidx "github.com/gate-platform/rawi/internal/domain/indexing"
	"github.com/gate-platform/rawi/internal/metrics"
)

// DefaultPageSize is the page size used when the caller passes zero.
const DefaultPageSize = 50

// pageRetryBackoff is the fixed wait before retrying a failed page embed.
const pageRetryBackoff = 250 * time.Millisecond

// Service runs the embedding-indexing pipeline.
type Service struct {
	corpus  Corpus
	embed   BatchEmbedder
	norm    *arabic.Normalizer
	model   string
	opts    domidx.IndexOptions
	limiter *rate.Limiter
	log     *zap.Logger

	backoff time.Duration
}

// New creates a pipeline service. A ratePerSec of zero disables pacing.
func New(
	corpus Corpus, embed BatchEmbedder, norm *arabic.Normalizer,
	model string, opts domidx.IndexOptions, ratePerSec float64, log *zap.Logger,
) *Service {
	var limiter *rate.Limiter
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), 1)
	}
	return &Service{
		corpus:  corpus,
		embed:   embed,
		norm:    norm,
		model:   model,
		opts:    opts,
		limiter: limiter,
		log:     log,
		backoff: pageRetryBackoff,
	}
}

// Run processes the source index page by page: normalize, embed, upsert to the
// target. A page that still fails after one retry is counted failed and the
// run continues; a partial failure is reported, never hidden in a clean run.
func (s *Service) Run(ctx context.Context, sourceIndex, targetIndex string, batchSize int) (domidx.Report, error) {
	start := time.Now()
	if batchSize <= 0 {
		batchSize = DefaultPageSize
	}

	report := domidx.Report{
		SourceIndex: sourceIndex,
		TargetIndex: targetIndex,
		Model:       s.model,
	}

	if err := s.corpus.EnsureTarget(ctx, targetIndex, s.model, s.opts); err != nil {
		return report, fmt.Errorf("ensure target index: %w", err)
	}

	offset, err := s.resumeOffset(ctx, targetIndex)
	if err != nil {
		return report, err
	}
	report.ResumedFrom = offset

	s.log.Info("indexing run started",
		zap.String("source", sourceIndex),
		zap.String("target", targetIndex),
		zap.String("model", s.model),
		zap.Int("batch_size", batchSize),
		zap.Int("resumed_from", offset))

	for {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				report.Duration = time.Since(start)
				return report, err
			}
		}

		segments, total, err := s.corpus.Page(ctx, sourceIndex, offset, batchSize)
		if err != nil {
			report.Duration = time.Since(start)
			return report, fmt.Errorf("read page at offset %d: %w", offset, err)
		}
		if len(segments) == 0 {
			break
		}

		report.Pages++
		failed, err := s.processPage(ctx, targetIndex, segments)
		if err != nil {
			report.Failed += len(segments)
			report.FailedPages++
			metrics.IndexingPagesTotal.WithLabelValues("failed").Inc()
			metrics.IndexingDocumentsTotal.WithLabelValues("failed").Add(float64(len(segments)))
			s.log.Warn("page failed after retry, continuing",
				zap.Int("offset", offset),
				zap.Int("documents", len(segments)),
				zap.Error(err))
		} else {
			report.Processed += len(segments) - failed
			report.Failed += failed
			metrics.IndexingPagesTotal.WithLabelValues("ok").Inc()
			metrics.IndexingDocumentsTotal.WithLabelValues("processed").Add(float64(len(segments) - failed))
			if failed > 0 {
				metrics.IndexingDocumentsTotal.WithLabelValues("failed").Add(float64(failed))
			}
		}

		offset += len(segments)
		cp := domidx.Checkpoint{Offset: offset, Model: s.model}
		if err := s.corpus.SaveCheckpoint(ctx, targetIndex, cp); err != nil {
			report.Duration = time.Since(start)
			return report, fmt.Errorf("save checkpoint at offset %d: %w", offset, err)
		}

		if offset >= total {
			break
		}
	}

	if err := s.corpus.ClearCheckpoint(ctx, targetIndex); err != nil {
		report.Duration = time.Since(start)
		return report, fmt.Errorf("clear checkpoint: %w", err)
	}

	report.Duration = time.Since(start)
	metrics.IndexingRunDuration.Observe(report.Duration.Seconds())

	s.log.Info("indexing run finished",
		zap.Int("processed", report.Processed),
		zap.Int("failed", report.Failed),
		zap.Int("pages", report.Pages),
		zap.Int("failed_pages", report.FailedPages),
		zap.Duration("duration", report.Duration))

	return report, nil
}

// resumeOffset reads the checkpoint for the target index. A checkpoint pinned
// to a different model is ignored; resuming it would mix vectors across model
// versions.
func (s *Service) resumeOffset(ctx context.Context, targetIndex string) (int, error) {
	cp, ok, err := s.corpus.LoadCheckpoint(ctx, targetIndex)
	if err != nil {
		return 0, fmt.Errorf("load checkpoint: %w", err)
	}
	if !ok {
		return 0, nil
	}
	if cp.Model != s.model {
		s.log.Warn("checkpoint model mismatch, starting fresh",
			zap.String("checkpoint_model", cp.Model),
			zap.String("model", s.model))
		return 0, nil
	}
	return cp.Offset, nil
}

// processPage embeds one page and upserts it. The returned count is the number
// of individually rejected documents; an error means the whole page failed.
func (s *Service) processPage(ctx context.Context, target string, segments []document.Segment) (int, error) {
	texts := make([]string, len(segments))
	for i := range segments {
		texts[i] = s.norm.Normalize(segments[i].Text())
	}

	batch, err := s.embedWithRetry(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed page: %w", err)
	}
	if len(batch.Embeddings) != len(segments) {
		return 0, fmt.Errorf("embedding count mismatch: got %d, want %d", len(batch.Embeddings), len(segments))
	}

	enriched := make([]document.Segment, len(segments))
	for i := range segments {
		enriched[i] = segments[i].WithEmbedding(texts[i], batch.Embeddings[i], s.model)
	}

	itemErrs, err := s.corpus.BulkUpsert(ctx, target, enriched)
	if err != nil {
		return 0, fmt.Errorf("upsert page: %w", err)
	}

	failed := 0
	for i, itemErr := range itemErrs {
		if itemErr != nil {
			failed++
			s.log.Warn("segment upsert rejected",
				zap.String("id", segments[i].ID()),
				zap.Error(itemErr))
		}
	}
	return failed, nil
}

// embedWithRetry retries a failed page embedding exactly once after a fixed
// backoff.
func (s *Service) embedWithRetry(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	batch, err := s.embed.BatchEmbed(ctx, texts)
	if err == nil {
		return batch, nil
	}

	s.log.Warn("page embedding failed, retrying once", zap.Error(err))

	select {
	case <-ctx.Done():
		return domain.BatchEmbeddingResult{}, ctx.Err()
	case <-time.After(s.backoff):
	}

	return s.embed.BatchEmbed(ctx, texts)
}
