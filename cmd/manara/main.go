package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/manara/internal/config"
	dbValkey "github.com/kailas-cloud/manara/internal/db/valkey"
	"github.com/kailas-cloud/manara/internal/domain"
	logpkg "github.com/kailas-cloud/manara/internal/logger"
	"github.com/kailas-cloud/manara/internal/metrics"
	bookingrepo "github.com/kailas-cloud/manara/internal/repository/booking"
	conversationrepo "github.com/kailas-cloud/manara/internal/repository/conversation"
	"github.com/kailas-cloud/manara/internal/repository/embcache"
	"github.com/kailas-cloud/manara/internal/repository/memory"
	profilerepo "github.com/kailas-cloud/manara/internal/repository/profile"
	venuerepo "github.com/kailas-cloud/manara/internal/repository/venue"
	chiTransport "github.com/kailas-cloud/manara/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/manara/internal/transport/openai"
	bookinguc "github.com/kailas-cloud/manara/internal/usecase/booking"
	conversationuc "github.com/kailas-cloud/manara/internal/usecase/conversation"
	dayplanuc "github.com/kailas-cloud/manara/internal/usecase/dayplan"
	healthuc "github.com/kailas-cloud/manara/internal/usecase/health"
	intentuc "github.com/kailas-cloud/manara/internal/usecase/intent"
	orchestratoruc "github.com/kailas-cloud/manara/internal/usecase/orchestrator"
	profileuc "github.com/kailas-cloud/manara/internal/usecase/profile"
	recommenduc "github.com/kailas-cloud/manara/internal/usecase/recommend"
	retrievaluc "github.com/kailas-cloud/manara/internal/usecase/retrieval"
	searchuc "github.com/kailas-cloud/manara/internal/usecase/search"
	"github.com/kailas-cloud/manara/internal/version"
)

func main() {
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

	logger.Info("Starting manara API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.Bool("llm_day_planning", cfg.Planning.LLMEnabled),
	)

	// Valkey and Redis Stack speak the same FT.* dialect, so one client serves both drivers.
	store, err := dbValkey.NewStore(dbValkey.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterAll()

	embedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	completer := openaiTransport.NewCompleter(&openaiTransport.Config{
		APIKey:   cfg.Completion.APIKey,
		BaseURL:  cfg.Completion.BaseURL,
		Model:    cfg.Completion.Model,
		Provider: cfg.Completion.Provider,
		Logger:   logger,
	},
		openaiTransport.WithRateLimit(cfg.Completion.RequestsPerSecond, cfg.Completion.Burst),
		openaiTransport.WithDefaultTemperature(cfg.Completion.Temperature),
	)

	venues := venuerepo.New(store, buildQueryEmbedder(cfg, embedder, store, logger), cfg.Index.Name, cfg.Storage.KeyPrefix)
	if ok, err := venues.Exists(ctx); err != nil || !ok {
		logger.Warn("Venue index not found; retrieval will return empty context until manara-loader runs",
			zap.String("index", venues.IndexName()), zap.Error(err))
	}

	repos := buildRepositories(cfg, store)

	completionTimeout := cfg.CompletionTimeout()
	retrieval := retrievaluc.New(venues, retrievaluc.Config{
		DefaultResults:  cfg.Retrieval.DefaultResults,
		OverFetchFactor: cfg.Retrieval.OverFetchFactor,
		BudgetTolerance: cfg.Retrieval.BudgetTolerance,
		Timeout:         cfg.RetrievalTimeout(),
	}, logger)

	recommender := recommenduc.New(retrieval, completer, recommenduc.Config{
		MinItems: cfg.Recommendations.MinItems,
		MaxItems: cfg.Recommendations.MaxItems,
		Timeout:  completionTimeout,
	}, logger)
	planner := dayplanuc.New(retrieval, completer, dayplanuc.NewGenerator(nil), dayplanuc.Config{
		LLMEnabled:       cfg.Planning.LLMEnabled,
		DefaultDuration:  cfg.Planning.DefaultDuration,
		DefaultStartTime: cfg.Planning.DefaultStartTime,
		DefaultBudget:    cfg.Planning.DefaultBudget,
		Timeout:          completionTimeout,
	}, logger)
	booker := bookinguc.NewSynthesizer(completer, completionTimeout, nil, logger)
	classifier := intentuc.New(completer, completionTimeout, logger)

	orchestrator := orchestratoruc.New(
		classifier, recommender, planner, booker, retrieval, completer, completionTimeout, logger,
	)

	server := chiTransport.NewServer(chiTransport.Services{
		Orchestrator:  orchestrator,
		Conversations: conversationuc.New(completer, repos.conversations, completionTimeout, logger),
		Recommender:   recommender,
		Planner:       planner,
		Reservations:  bookinguc.NewService(booker, repos.bookings, nil, logger),
		Profiles:      profileuc.New(repos.profiles),
		Searcher:      searchuc.New(retrieval),
		Health:        healthuc.New(store, completer, embedder, venues),
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Routes(cfg.HTTP.CORSOrigins),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildQueryEmbedder assembles the decorator chain: OpenAI -> Cached -> Instruction.
// The instruction prefix is outermost so the cache key includes it.
func buildQueryEmbedder(
	cfg config.Config, base domain.Embedder, store *dbValkey.Store, logger *zap.Logger,
) domain.Embedder {
	cached := embcache.New(base, store, embcache.Options{
		KeyPrefix: cfg.Storage.KeyPrefix,
		Model:     cfg.Embedding.Model,
		TTL:       cfg.EmbeddingCacheTTL(),
	}, metrics.EmbeddingCacheTotal, logger)
	return domain.NewPrefixEmbedder(cached, cfg.Embedding.QueryInstruction)
}

type repositories struct {
	bookings      bookinguc.Repository
	profiles      profileuc.Repository
	conversations conversationuc.Repository
}

// buildRepositories picks Valkey or in-process storage for bookings, profiles and conversations.
func buildRepositories(cfg config.Config, store *dbValkey.Store) repositories {
	turns, ttl := cfg.Conversation.MaxTurns, cfg.ConversationTTL()
	if cfg.Storage.Driver == "memory" {
		return repositories{
			bookings:      memory.NewBookingRepo(cfg.BookingTTL()),
			profiles:      memory.NewProfileRepo(),
			conversations: memory.NewConversationRepo(turns, ttl),
		}
	}
	return repositories{
		bookings:      bookingrepo.New(store, cfg.Storage.KeyPrefix, cfg.BookingTTL()),
		profiles:      profilerepo.New(store, cfg.Storage.KeyPrefix),
		conversations: conversationrepo.New(store, cfg.Storage.KeyPrefix, turns, ttl),
	}
}
