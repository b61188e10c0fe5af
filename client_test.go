package rawi

import (
	"context"
	"errors"
	"testing"

	"github.com/gate-platform/rawi/internal/domain/search/mode"
	"github.com/gate-platform/rawi/internal/domain/search/result"
)

func TestNew_NoAddress(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error when no address provided")
	}
}

func TestNoopEmbedder(t *testing.T) {
	noop := &noopEmbedder{}
	_, err := noop.Embed(context.Background(), "test")
	if err == nil {
		t.Fatal("expected error from noopEmbedder")
	}
}

func TestEmbedderAdapter(t *testing.T) {
	called := false
	mock := &mockEmbedder{
		fn: func(_ context.Context, text string) (EmbeddingResult, error) {
			called = true
			return EmbeddingResult{
				Embedding:    []float32{1, 2, 3},
				PromptTokens: 5,
				TotalTokens:  10,
			}, nil
		},
	}

	adapter := &embedderAdapter{inner: mock}
	result, err := adapter.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("inner embedder was not called")
	}
	if len(result.Embedding) != 3 {
		t.Errorf("embedding len = %d, want 3", len(result.Embedding))
	}
	if result.TotalTokens != 10 {
		t.Errorf("total tokens = %d, want 10", result.TotalTokens)
	}
}

func TestEmbedderAdapter_Error(t *testing.T) {
	mock := &mockEmbedder{
		fn: func(_ context.Context, _ string) (EmbeddingResult, error) {
			return EmbeddingResult{}, errors.New("provider down")
		},
	}

	adapter := &embedderAdapter{inner: mock}
	_, err := adapter.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error from adapter")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithRedis("localhost:6379", "secret")(cfg)
	if cfg.addrs[0] != "localhost:6379" {
		t.Errorf("addr = %q, want localhost:6379", cfg.addrs[0])
	}
	if cfg.password != "secret" {
		t.Errorf("password = %q, want secret", cfg.password)
	}

	cfg2 := &clientConfig{}
	WithCredentials("svc", "pass")(cfg2)
	if cfg2.username != "svc" || cfg2.password != "pass" {
		t.Errorf("credentials = (%q, %q), want (svc, pass)", cfg2.username, cfg2.password)
	}

	cfg3 := &clientConfig{}
	WithIndex("custom_idx")(cfg3)
	if cfg3.index != "custom_idx" {
		t.Errorf("index = %q, want custom_idx", cfg3.index)
	}

	WithFuzzyDistance(1)(cfg3)
	if cfg3.fuzzyDistance != 1 {
		t.Errorf("fuzzyDistance = %d, want 1", cfg3.fuzzyDistance)
	}
}

func TestWithEmbedder(t *testing.T) {
	mock := &mockEmbedder{
		fn: func(_ context.Context, _ string) (EmbeddingResult, error) {
			return EmbeddingResult{}, nil
		},
	}
	cfg := &clientConfig{}
	WithEmbedder(mock)(cfg)
	if cfg.embedder == nil {
		t.Error("expected non-nil embedder")
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	c := &Client{store: nil}
	c.Close() // must not panic
}

func TestStaticState(t *testing.T) {
	avail := &staticState{available: true}
	if s := avail.State(); !s.Available {
		t.Error("expected available state")
	}

	unavail := &staticState{}
	s := unavail.State()
	if s.Available {
		t.Error("expected unavailable state")
	}
	if s.Reason == "" {
		t.Error("expected a reason for unavailability")
	}
}

func TestFromSearchResponse(t *testing.T) {
	resp := result.Response{
		Results: []result.Result{
			result.New("seg-1", 4.2, "نص الدرس", 61.5, 75.0, "https://youtu.be/abc123"),
		},
		ModeUsed: mode.Enhanced,
		Total:    7,
	}

	out := fromSearchResponse(resp)
	if out.ModeUsed != ModeEnhanced {
		t.Errorf("mode used = %q, want enhanced", out.ModeUsed)
	}
	if out.Total != 7 {
		t.Errorf("total = %d, want 7", out.Total)
	}
	if len(out.Results) != 1 {
		t.Fatalf("results len = %d, want 1", len(out.Results))
	}

	r := out.Results[0]
	if r.ID != "seg-1" || r.Score != 4.2 {
		t.Errorf("result = %+v", r)
	}
	want := "https://www.youtube.com/watch?v=abc123&t=61s"
	if r.TimedLink != want {
		t.Errorf("timed link = %q, want %q", r.TimedLink, want)
	}
}

func TestFromSearchResponse_Empty(t *testing.T) {
	out := fromSearchResponse(result.Response{ModeUsed: mode.Basic})
	if out.Results == nil {
		t.Error("results must be an empty slice, not nil")
	}
}

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}
