// Package openai implements the embedding provider over an OpenAI-compatible
// API serving the AraBERT document model.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/gate-platform/rawi/internal/domain"
	"github.com/gate-platform/rawi/internal/metrics"
)

// Embedder is an embedding provider using the OpenAI-compatible API.
// Initialize must be called once before serving; a provider that failed to
// initialize stays degraded for the process lifetime.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	chunkSize  int
	logger     *zap.Logger

	mu    sync.RWMutex
	state domain.ProviderState
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	ChunkSize  int
	Logger     *zap.Logger
}

const defaultChunkSize = 32

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	return &Embedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		chunkSize:  chunkSize,
		logger:     cfg.Logger,
		state: domain.ProviderState{
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Reason:     "not initialized",
		},
	}
}

// Initialize probes the provider with a short test request and records the
// outcome. The probe also discovers the real vector width when the configured
// dimensions disagree with what the model returns. Initialize never returns
// an error: a failed probe leaves the provider degraded and the service keeps
// running with lexical search only.
func (e *Embedder) Initialize(ctx context.Context) {
	req := openai.EmbeddingRequest{
		Input:          []string{"probe"},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.state.Available = false
		e.state.Reason = parseAPIError(err).Error()
		e.logger.Warn("embedding provider unavailable, semantic search disabled",
			zap.String("model", string(e.model)),
			zap.String("reason", e.state.Reason))
		return
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		e.state.Available = false
		e.state.Reason = "probe returned empty embedding"
		e.logger.Warn("embedding provider unavailable, semantic search disabled",
			zap.String("model", string(e.model)),
			zap.String("reason", e.state.Reason))
		return
	}

	got := len(resp.Data[0].Embedding)
	if got != e.dimensions {
		e.logger.Info("embedding dimensions discovered from probe",
			zap.Int("configured", e.dimensions),
			zap.Int("actual", got))
		e.dimensions = got
		e.state.Dimensions = got
	}

	e.state.Available = true
	e.state.Reason = ""
	e.logger.Info("embedding provider ready",
		zap.String("model", string(e.model)),
		zap.Int("dimensions", e.dimensions))
}

// State implements domain.StateReporter.
func (e *Embedder) State() domain.ProviderState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Embed implements domain.Embedder. A degraded provider fails fast so callers
// can fall back to lexical search without waiting on a request that cannot
// succeed.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if !e.State().Available {
		return domain.EmbeddingResult{}, domain.ErrModelUnavailable
	}

	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}

	start := time.Now()

	resp, err := e.client.CreateEmbeddings(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(string(e.model), "api_error").Inc()
		return domain.EmbeddingResult{}, parseAPIError(err)
	}

	if len(resp.Data) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(string(e.model), "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	recordSuccess(string(e.model), duration, resp.Usage.PromptTokens, resp.Usage.TotalTokens)

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// BatchEmbed implements domain.BatchEmbedder. Inputs are sent in fixed-size
// chunks; a failed chunk fails the whole batch so the caller can retry the
// page as a unit.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if !e.State().Available {
		return domain.BatchEmbeddingResult{}, domain.ErrModelUnavailable
	}
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	out := domain.BatchEmbeddingResult{
		Embeddings: make([][]float32, 0, len(texts)),
	}

	for begin := 0; begin < len(texts); begin += e.chunkSize {
		end := min(begin+e.chunkSize, len(texts))
		chunk := texts[begin:end]

		req := openai.EmbeddingRequest{
			Input:          chunk,
			Model:          e.model,
			EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		}

		start := time.Now()

		resp, err := e.client.CreateEmbeddings(ctx, req)

		duration := time.Since(start)

		if err != nil {
			metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), "error").Inc()
			metrics.EmbeddingErrorsTotal.WithLabelValues(string(e.model), "api_error").Inc()
			return domain.BatchEmbeddingResult{}, parseAPIError(err)
		}
		if len(resp.Data) != len(chunk) {
			metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), "error").Inc()
			metrics.EmbeddingErrorsTotal.WithLabelValues(string(e.model), "incomplete_response").Inc()
			return domain.BatchEmbeddingResult{}, fmt.Errorf(
				"embedding response has %d vectors for %d inputs: %w",
				len(resp.Data), len(chunk), domain.ErrEmbeddingProviderError)
		}

		recordSuccess(string(e.model), duration, resp.Usage.PromptTokens, resp.Usage.TotalTokens)

		// The API may return vectors out of order; restore by Index.
		ordered := make([][]float32, len(chunk))
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(chunk) {
				return domain.BatchEmbeddingResult{}, fmt.Errorf(
					"embedding response index %d out of range: %w", d.Index, domain.ErrEmbeddingProviderError)
			}
			ordered[d.Index] = d.Embedding
		}
		out.Embeddings = append(out.Embeddings, ordered...)
		out.PromptTokens += resp.Usage.PromptTokens
		out.TotalTokens += resp.Usage.TotalTokens
	}

	return out, nil
}

func recordSuccess(model string, duration time.Duration, promptTokens, totalTokens int) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(model).Observe(duration.Seconds())
	if totalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(model, "prompt").Add(float64(promptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(model, "total").Add(float64(totalTokens))
	}
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrEmbeddingProviderError for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrEmbeddingProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("embedding API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("embedding API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("embedding request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
