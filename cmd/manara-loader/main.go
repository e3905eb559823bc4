// Command manara-loader creates the venue index and loads a venue dataset into it.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/manara/internal/config"
	dbValkey "github.com/kailas-cloud/manara/internal/db/valkey"
	logpkg "github.com/kailas-cloud/manara/internal/logger"
	"github.com/kailas-cloud/manara/internal/metrics"
	venuerepo "github.com/kailas-cloud/manara/internal/repository/venue"
	openaiTransport "github.com/kailas-cloud/manara/internal/transport/openai"
	batchuc "github.com/kailas-cloud/manara/internal/usecase/batch"
	"github.com/kailas-cloud/manara/internal/version"
)

func main() {
	file := flag.String("file", "data/venues.json", "path to the venue dataset (JSON array)")
	batchSize := flag.Int("batch", batchuc.DefaultBatchSize, "documents per embedding call")
	workers := flag.Int("workers", batchuc.DefaultWorkers, "concurrent chunks")
	flag.Parse()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting manara loader",
		zap.String("version", version.String()),
		zap.String("file", *file),
		zap.String("index", cfg.Index.Name),
		zap.Int("batch", *batchSize),
		zap.Int("workers", *workers),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(filepath.Clean(*file))
	if err != nil {
		logger.Fatal("Failed to open dataset", zap.Error(err))
	}
	venues, err := batchuc.Parse(f)
	_ = f.Close()
	if err != nil {
		logger.Fatal("Failed to parse dataset", zap.Error(err))
	}

	store, err := dbValkey.NewStore(dbValkey.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	metrics.RegisterEmbeddingMetrics()
	embedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	// The loader never embeds queries, so the repo gets no query embedder.
	repo := venuerepo.New(store, nil, cfg.Index.Name, cfg.Storage.KeyPrefix)
	if err := repo.EnsureIndex(ctx, cfg.Embedding.Dimensions, venuerepo.HNSWConfig{
		M:              cfg.Index.HNSWM,
		EFConstruction: cfg.Index.HNSWEFConstruct,
	}); err != nil {
		logger.Fatal("Failed to ensure venue index", zap.Error(err))
	}

	start := time.Now()
	results, err := batchuc.New(embedder, repo, logger).
		WithBatchSize(*batchSize).
		WithWorkers(*workers).
		WithInstruction(cfg.Embedding.DocumentInstruction).
		Upsert(ctx, venues)

	loaded, failed := 0, 0
	for _, r := range results {
		if r.OK() {
			loaded++
			continue
		}
		failed++
		logger.Debug("Venue not loaded", zap.String("id", r.ID), zap.Error(r.Err))
	}

	count, cerr := repo.Count(context.WithoutCancel(ctx))
	logger.Info("Venue load finished",
		zap.Int("loaded", loaded),
		zap.Int("failed", failed),
		zap.Int64("index_documents", count),
		zap.Duration("duration", time.Since(start)),
		zap.NamedError("count_error", cerr),
		zap.Error(err),
	)
	if err != nil || failed > 0 {
		os.Exit(1)
	}
}
