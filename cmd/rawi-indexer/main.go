// Command rawi-indexer runs the batch embedding-indexing pipeline that
// prepares the vector corpus for semantic search.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gate-platform/rawi/internal/arabic"
	"github.com/gate-platform/rawi/internal/config"
	dbRedis "github.com/gate-platform/rawi/internal/db/redis"
	domidx "github.com/gate-platform/rawi/internal/domain/indexing"
	logpkg "github.com/gate-platform/rawi/internal/logger"
	"github.com/gate-platform/rawi/internal/metrics"
	corpusrepo "github.com/gate-platform/rawi/internal/repository/corpus"
	"github.com/gate-platform/rawi/internal/repository/embcache"
	openaiEmb "github.com/gate-platform/rawi/internal/transport/openai"
	indexinguc "github.com/gate-platform/rawi/internal/usecase/indexing"
	"github.com/gate-platform/rawi/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rawi-indexer",
		Short:         "Batch embedding-indexing pipeline for the rawi search corpus",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		source    string
		target    string
		batchSize int
		fresh     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Embed and index all segments from the source index into the target index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd.Context(), source, target, batchSize, fresh)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "source index holding raw segments (default: configured search index)")
	cmd.Flags().StringVar(&target, "target", "", "target index to write embedded segments to (required)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "segments per page (default: configured page size)")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "ignore any existing checkpoint and reprocess from offset 0")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runPipeline(ctx context.Context, source, target string, batchSize int, fresh bool) error {
	_ = godotenv.Load()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if source == "" {
		source = cfg.Search.Index
	}
	if batchSize == 0 {
		batchSize = cfg.Indexing.PageSize
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:          cfg.Database.Addrs,
		Username:       cfg.Database.Username,
		Password:       cfg.Database.Password,
		DB:             cfg.Database.DB,
		RequestTimeout: time.Duration(cfg.Database.RequestTimeoutSec) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("create database store: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterIndexingMetrics()

	embedder := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		ChunkSize:  cfg.Embedding.ChunkSize,
		Logger:     logger,
	})
	embedder.Initialize(ctx)

	state := embedder.State()
	if !state.Available {
		// Unlike search, the pipeline cannot degrade: no vectors, no run.
		return fmt.Errorf("embedding provider unavailable: %s", state.Reason)
	}

	cached, err := embcache.New(
		embedder, store, state.Model, cfg.Embedding.CacheSize,
		time.Duration(cfg.Embedding.CacheTTLSec)*time.Second, logger,
	)
	if err != nil {
		return fmt.Errorf("create embedding cache: %w", err)
	}

	corpus := corpusrepo.New(store)
	if fresh {
		if err := corpus.ClearCheckpoint(ctx, target); err != nil {
			return fmt.Errorf("clear checkpoint: %w", err)
		}
		logger.Info("checkpoint cleared, starting fresh", zap.String("target", target))
	}

	pipeline := indexinguc.New(
		corpus, cached, arabic.NewNormalizer(),
		state.Model,
		domidx.IndexOptions{
			Dimensions:  state.Dimensions,
			M:           cfg.Indexing.HNSWM,
			EFConstruct: cfg.Indexing.HNSWEFConstruct,
		},
		cfg.Indexing.RatePerSec,
		logger,
	)

	// SIGINT leaves the checkpoint in place so the next run resumes.
	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := pipeline.Run(runCtx, source, target, batchSize)
	printReport(report)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}
	return nil
}

func printReport(r domidx.Report) {
	fmt.Printf("source:        %s\n", r.SourceIndex)
	fmt.Printf("target:        %s\n", r.TargetIndex)
	fmt.Printf("model:         %s\n", r.Model)
	fmt.Printf("processed:     %d\n", r.Processed)
	fmt.Printf("failed:        %d\n", r.Failed)
	fmt.Printf("pages:         %d (%d failed)\n", r.Pages, r.FailedPages)
	if r.ResumedFrom > 0 {
		fmt.Printf("resumed from:  %d\n", r.ResumedFrom)
	}
	fmt.Printf("duration:      %s\n", r.Duration.Round(time.Millisecond))
}
