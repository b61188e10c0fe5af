// Package rawi is an embedded client for the Arabic lecture search engine.
// It wires the search services directly over a Redis connection, without the
// HTTP layer.
package rawi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gate-platform/rawi/internal/arabic"
	dbRedis "github.com/gate-platform/rawi/internal/db/redis"
	"github.com/gate-platform/rawi/internal/domain"
	searchrepo "github.com/gate-platform/rawi/internal/repository/search"
	searchuc "github.com/gate-platform/rawi/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultRequestTimeout   = 5 * time.Second
	defaultIndex            = "gate_transcription"
	defaultFuzzyDistance    = 2
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs    []string
	username string
	password string

	embedder Embedder

	index         string
	fuzzyDistance int

	logger *zap.Logger
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithCredentials sets the database username and password.
func WithCredentials(username, password string) Option {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithEmbedder sets the query embedding provider. Without it semantic
// searches downgrade to enhanced.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithIndex sets the search index name. Defaults to gate_transcription.
func WithIndex(name string) Option {
	return func(c *clientConfig) {
		c.index = name
	}
}

// WithFuzzyDistance sets the Levenshtein distance for enhanced-mode fuzzy
// terms. Defaults to 2.
func WithFuzzyDistance(n int) Option {
	return func(c *clientConfig) {
		c.fuzzyDistance = n
	}
}

// WithLogger sets the client logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// Client is the rawi SDK entry point.
type Client struct {
	store     *dbRedis.Store
	searchSvc *searchuc.Service
}

// New creates a rawi Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		index:         defaultIndex,
		fuzzyDistance: defaultFuzzyDistance,
		logger:        zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("rawi: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:          cfg.addrs,
		Username:       cfg.username,
		Password:       cfg.password,
		RequestTimeout: defaultRequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("rawi: create redis store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("rawi: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store *dbRedis.Store, cfg *clientConfig) *Client {
	var domEmb domain.Embedder = &noopEmbedder{}
	state := &staticState{}
	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
		state.available = true
	}

	norm := arabic.NewNormalizer()
	repo := searchrepo.New(store, cfg.index, cfg.fuzzyDistance)
	svc := searchuc.New(repo, domEmb, state, norm, arabic.NewSynonymSet(norm), cfg.logger)

	return &Client{store: store, searchSvc: svc}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// embedderAdapter wraps the public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"rawi: embedder not configured (use WithEmbedder for semantic search)",
	)
}

// staticState reports the embedder availability decided at construction.
type staticState struct {
	available bool
}

func (s *staticState) State() domain.ProviderState {
	if s.available {
		return domain.ProviderState{Available: true}
	}
	return domain.ProviderState{Available: false, Reason: "embedder not configured"}
}
