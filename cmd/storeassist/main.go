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

	"github.com/kailas-cloud/storeassist/internal/config"
	dbRedis "github.com/kailas-cloud/storeassist/internal/db/redis"
	"github.com/kailas-cloud/storeassist/internal/domain"
	"github.com/kailas-cloud/storeassist/internal/domain/vector"
	logpkg "github.com/kailas-cloud/storeassist/internal/logger"
	"github.com/kailas-cloud/storeassist/internal/metrics"
	backfillrepo "github.com/kailas-cloud/storeassist/internal/repository/backfill"
	budgetrepo "github.com/kailas-cloud/storeassist/internal/repository/budget"
	productrepo "github.com/kailas-cloud/storeassist/internal/repository/product"
	chiTransport "github.com/kailas-cloud/storeassist/internal/transport/chi"
	openaiGen "github.com/kailas-cloud/storeassist/internal/transport/openai"
	cataloguc "github.com/kailas-cloud/storeassist/internal/usecase/catalog"
	chatuc "github.com/kailas-cloud/storeassist/internal/usecase/chat"
	generationuc "github.com/kailas-cloud/storeassist/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/storeassist/internal/usecase/health"
	promptuc "github.com/kailas-cloud/storeassist/internal/usecase/prompt"
	rankuc "github.com/kailas-cloud/storeassist/internal/usecase/rank"
	recommenduc "github.com/kailas-cloud/storeassist/internal/usecase/recommend"
	usageuc "github.com/kailas-cloud/storeassist/internal/usecase/usage"
	"github.com/kailas-cloud/storeassist/internal/version"
)

func main() {
	config.LoadDotEnv()
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

	logger.Info("Starting storeassist API server",
		zap.String("version", version.Get().Version),
		zap.String("commit", version.Get().Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("generation_provider", cfg.Generation.Provider),
	)

	ctx := context.Background()
	store, err := dbRedis.Open(ctx, dbRedis.Config{
		Addrs:        cfg.Database.Addrs,
		Password:     cfg.Database.Password,
		ReadyTimeout: time.Duration(cfg.Database.ReadinessTimeout) * time.Second,
	})
	if err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	defer store.Close()
	logger.Info("Connected to database")

	// Explicit registration, no init()
	metrics.RegisterGenerationMetrics()
	metrics.RegisterPipelineMetrics()
	metrics.RegisterHTTPMetrics()

	products := productrepo.New(store, cfg.Storage.KeyPrefix)
	if err := products.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure product index", zap.Error(err))
	}

	mapping, err := vector.ParseBucketMapping(cfg.RAG.BucketMapping)
	if err != nil {
		logger.Fatal("Invalid bucket mapping", zap.Error(err))
	}
	vectorizer, err := vector.NewHashing(cfg.RAG.EmbeddingDimensions, vector.WithBucketMapping(mapping))
	if err != nil {
		logger.Fatal("Failed to create vectorizer", zap.Error(err))
	}
	ranker := rankuc.New(vectorizer)

	composer, err := promptuc.NewComposer(templatesFromConfig(cfg.Prompts), logger)
	if err != nil {
		logger.Fatal("Invalid prompt templates", zap.Error(err))
	}

	budget := buildBudget(ctx, cfg, store, logger)

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	var budgetChecker generationuc.BudgetChecker
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetChecker = budget
		budgetReader = budget
	}

	generator := buildGenerator(cfg.Generation, budgetChecker, logger)
	logger.Info("Generator created",
		zap.String("provider", cfg.Generation.Provider),
		zap.String("model", cfg.Generation.Model),
		zap.Int("dimensions", vectorizer.Dimensions()),
		zap.String("bucket_mapping", string(vectorizer.Mapping())),
	)

	chatSvc := chatuc.New(products, ranker, composer, generator, domain.RAGConfig{
		Dimensions:            cfg.RAG.EmbeddingDimensions,
		TopK:                  cfg.RAG.TopK,
		CandidateLimit:        cfg.RAG.CandidateLimit,
		SimilarCandidateLimit: cfg.RAG.SimilarCandidateLimit,
		DefaultMode:           cfg.RAG.DefaultMode,
	})
	catalogSvc := cataloguc.New(products, backfillrepo.New(store, cfg.Queue.BackfillStream, cfg.Queue.MaxLen))
	recommendSvc := recommenduc.New(products, ranker, cfg.RAG.SimilarCandidateLimit, cfg.RAG.TopK)
	usageSvc := usageuc.New(budgetReader)
	healthSvc := healthuc.New(store, generator)

	server := chiTransport.NewServer(chatSvc, catalogSvc, recommendSvc, usageSvc, healthSvc)
	handler := chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
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

func templatesFromConfig(prompts map[string]config.PromptConfig) map[string]promptuc.Templates {
	out := make(map[string]promptuc.Templates, len(prompts))
	for mode, p := range prompts {
		out[mode] = promptuc.Templates{System: p.System, User: p.User}
	}
	return out
}

// buildBudget returns nil when no limit is configured.
func buildBudget(
	ctx context.Context, cfg config.Config, store *dbRedis.Store, logger *zap.Logger,
) *generationuc.BudgetTracker {
	b := cfg.Generation.Budget
	if b.DailyTokenLimit <= 0 && b.MonthlyTokenLimit <= 0 {
		return nil
	}
	action := generationuc.BudgetActionWarn
	if b.Action == string(generationuc.BudgetActionReject) {
		action = generationuc.BudgetActionReject
	}
	tracker := generationuc.NewBudgetTracker(
		cfg.Generation.Provider,
		generationuc.BudgetLimits{Daily: b.DailyTokenLimit, Monthly: b.MonthlyTokenLimit},
		action, logger,
	).WithKeyPrefix(cfg.Storage.KeyPrefix)
	return tracker.WithStore(ctx, budgetrepo.New(store, budgetrepo.DefaultDailyTTL, budgetrepo.DefaultMonthlyTTL))
}

// buildGenerator assembles the decorator chain: backend -> Instrumented.
func buildGenerator(
	cfg config.GenerationConfig, budget generationuc.BudgetChecker, logger *zap.Logger,
) *generationuc.Instrumented {
	var base domain.Generator
	model := cfg.Model
	switch cfg.Provider {
	case "openai":
		base = openaiGen.NewGenerator(&openaiGen.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     time.Duration(cfg.TimeoutSec) * time.Second,
			Provider:    cfg.Provider,
			Logger:      logger,
		})
		if model == "" {
			model = openaiGen.DefaultModel
		}
	default:
		base = generationuc.NewSimulated()
		model = "simulated"
	}
	return generationuc.NewInstrumented(base, cfg.Provider, model, budget, logger)
}
