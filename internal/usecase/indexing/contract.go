package indexing

import (
	"context"

	"github.com/gate-platform/rawi/internal/domain"
	"github.com/gate-platform/rawi/internal/domain/document"
	domidx "github.com/gate-platform/rawi/internal/domain/indexing"
)

// Corpus defines the storage contract for the pipeline.
type Corpus interface {
	Page(ctx context.Context, index string, offset, limit int) ([]document.Segment, int, error)

	// BulkUpsert returns positional item errors; a non-nil error means the
	// whole batch failed.
	BulkUpsert(ctx context.Context, index string, segments []document.Segment) ([]error, error)

	EnsureTarget(ctx context.Context, index, model string, opts domidx.IndexOptions) error

	LoadCheckpoint(ctx context.Context, target string) (domidx.Checkpoint, bool, error)
	SaveCheckpoint(ctx context.Context, target string, cp domidx.Checkpoint) error
	ClearCheckpoint(ctx context.Context, target string) error
}

// BatchEmbedder vectorizes page texts, chunking internally.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
