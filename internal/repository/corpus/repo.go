// Package corpus stores transcribed lecture segments as hashes and manages
// the FT indexes and pipeline checkpoints around them.
package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gate-platform/rawi/internal/db"
	"github.com/gate-platform/rawi/internal/db/redis"
	"github.com/gate-platform/rawi/internal/domain"
	"github.com/gate-platform/rawi/internal/domain/document"
	"github.com/gate-platform/rawi/internal/domain/indexing"
)

var segmentReturnFields = []string{"text", "normalized", "vector", "model", "start", "end", "video_link"}

// store is the consumer interface for corpus operations (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) ([]error, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	DelKV(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchList(ctx context.Context, index string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index string) (int, error)
}

// Repo implements usecase/indexing.Corpus.
type Repo struct {
	store store
}

// New creates a corpus repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Page reads one page of segments from the named index in stable offset
// order. The returned total is the index document count at query time.
func (r *Repo) Page(ctx context.Context, index string, offset, limit int) ([]document.Segment, int, error) {
	sr, err := r.store.SearchList(ctx, indexName(index), offset, limit, segmentReturnFields)
	if err != nil {
		return nil, 0, fmt.Errorf("page %s offset %d: %w", index, offset, err)
	}

	prefix := docPrefix(index)
	segments := make([]document.Segment, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		segments = append(segments, parseSegment(prefix, entry))
	}

	return segments, sr.Total, nil
}

// Count returns the number of documents in the named index.
func (r *Repo) Count(ctx context.Context, index string) (int, error) {
	n, err := r.store.SearchCount(ctx, indexName(index))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", index, err)
	}
	return n, nil
}

// Get reads one segment by id.
func (r *Repo) Get(ctx context.Context, index, id string) (document.Segment, error) {
	key := docPrefix(index) + id
	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return document.Segment{}, fmt.Errorf("get %s: %w", key, err)
	}
	if len(fields) == 0 {
		return document.Segment{}, fmt.Errorf("segment %s: %w", id, domain.ErrDocumentNotFound)
	}
	return parseSegment(docPrefix(index), db.SearchEntry{Key: key, Fields: fields}), nil
}

// BulkUpsert writes segments to the target index in one pipelined round-trip.
// The returned slice is positional: errs[i] is non-nil when segments[i] was
// rejected by the store; a non-nil error means the whole batch failed.
func (r *Repo) BulkUpsert(ctx context.Context, index string, segments []document.Segment) ([]error, error) {
	if len(segments) == 0 {
		return nil, nil
	}

	prefix := docPrefix(index)
	items := make([]db.HashSetItem, len(segments))
	for i := range segments {
		items[i] = db.HashSetItem{
			Key:    prefix + segments[i].ID(),
			Fields: segmentFields(&segments[i]),
		}
	}

	errs, err := r.store.HSetMulti(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("bulk upsert %s: %w", index, err)
	}
	return errs, nil
}

// EnsureTarget creates the vector-enabled target index if it does not exist
// and records the embedding model on the index metadata key.
func (r *Repo) EnsureTarget(ctx context.Context, index, model string, opts indexing.IndexOptions) error {
	name := indexName(index)

	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("probe index %s: %w", name, err)
	}

	if !exists {
		def := targetIndexDefinition(index, opts)
		if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("create index %s: %w", name, err)
		}
	}

	if err := r.store.Set(ctx, modelKey(index), []byte(model)); err != nil {
		return fmt.Errorf("record index model: %w", err)
	}
	return nil
}

// IndexModel returns the embedding model recorded for the named index, or
// empty when none was recorded.
func (r *Repo) IndexModel(ctx context.Context, index string) (string, error) {
	data, err := r.store.Get(ctx, modelKey(index))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("read index model: %w", err)
	}
	return string(data), nil
}

// LoadCheckpoint reads the pipeline checkpoint for the target index. A
// missing checkpoint returns ok=false, not an error.
func (r *Repo) LoadCheckpoint(ctx context.Context, target string) (indexing.Checkpoint, bool, error) {
	data, err := r.store.Get(ctx, checkpointKey(target))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return indexing.Checkpoint{}, false, nil
		}
		return indexing.Checkpoint{}, false, fmt.Errorf("load checkpoint: %w", err)
	}

	var cp indexing.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return indexing.Checkpoint{}, false, fmt.Errorf("parse checkpoint: %w", err)
	}
	return cp, true, nil
}

// SaveCheckpoint persists the pipeline checkpoint for the target index.
func (r *Repo) SaveCheckpoint(ctx context.Context, target string, cp indexing.Checkpoint) error {
	cp.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := r.store.Set(ctx, checkpointKey(target), data); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// ClearCheckpoint removes the pipeline checkpoint for the target index.
func (r *Repo) ClearCheckpoint(ctx context.Context, target string) error {
	if err := r.store.DelKV(ctx, checkpointKey(target)); err != nil {
		return fmt.Errorf("clear checkpoint: %w", err)
	}
	return nil
}

// --- keys and schema ---

func indexName(index string) string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, index)
}

func docPrefix(index string) string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, index)
}

func checkpointKey(target string) string {
	return fmt.Sprintf("%scheckpoint:%s", domain.KeyPrefix, target)
}

func modelKey(index string) string {
	return fmt.Sprintf("%smodel:%s", domain.KeyPrefix, index)
}

func targetIndexDefinition(index string, opts indexing.IndexOptions) *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     indexName(index),
		Prefixes: []string{docPrefix(index)},
		Fields: []db.IndexField{
			{Name: "text", Type: db.IndexFieldText},
			{Name: "normalized", Type: db.IndexFieldText},
			{Name: "model", Type: db.IndexFieldTag},
			{Name: "start", Type: db.IndexFieldNumeric},
			{Name: "end", Type: db.IndexFieldNumeric},
			{
				Name:              "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         opts.Dimensions,
				VectorDistance:    db.DistanceCosine,
				VectorM:           opts.M,
				VectorEFConstruct: opts.EFConstruct,
			},
		},
	}
}

func segmentFields(s *document.Segment) map[string]string {
	fields := map[string]string{
		"text":       s.Text(),
		"start":      strconv.FormatFloat(s.Start(), 'g', -1, 64),
		"end":        strconv.FormatFloat(s.End(), 'g', -1, 64),
		"video_link": s.VideoLink(),
	}
	if s.Normalized() != "" {
		fields["normalized"] = s.Normalized()
	}
	if len(s.Vector()) > 0 {
		fields["vector"] = redis.VectorToBytes(s.Vector())
		fields["model"] = s.Model()
	}
	return fields
}

func parseSegment(prefix string, entry db.SearchEntry) document.Segment {
	var text, normalized, model, videoLink string
	var vector []float32
	var start, end float64

	for k, v := range entry.Fields {
		switch k {
		case "text":
			text = v
		case "normalized":
			normalized = v
		case "vector":
			vector = redis.BytesToVector([]byte(v))
		case "model":
			model = v
		case "start":
			start, _ = strconv.ParseFloat(v, 64)
		case "end":
			end, _ = strconv.ParseFloat(v, 64)
		case "video_link":
			videoLink = v
		}
	}

	id := strings.TrimPrefix(entry.Key, prefix)

	return document.Reconstruct(id, text, normalized, vector, model, start, end, videoLink)
}
