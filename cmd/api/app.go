package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/ideahub/hub/internal/api/handlers"
	"github.com/ideahub/hub/internal/api/middleware"
	"github.com/ideahub/hub/internal/clustering"
	"github.com/ideahub/hub/internal/config"
	"github.com/ideahub/hub/internal/openai"
	"github.com/ideahub/hub/internal/repository"
	"github.com/ideahub/hub/internal/service"
	"github.com/ideahub/hub/internal/similarity"
	"github.com/ideahub/hub/internal/worker"
	"github.com/ideahub/hub/pkg/database"
)

// App holds all server dependencies and coordinates startup and shutdown.
type App struct {
	cfg       *config.Config
	db        *pgxpool.Pool
	server    *http.Server
	scheduler *worker.AnalysisScheduler
}

// NewApp builds and wires all components. It does not start the HTTP server
// or the background scheduler; call Run to start and block until shutdown.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Database connection with pgvector type registration
	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, database.WithAfterConnect(pgxvec.RegisterTypes))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	ideasRepo := repository.NewIdeasRepository(db)

	// AI clients are optional; without an OpenAI API key the service stores
	// ideas without embeddings and clustering runs without theme labels.
	var (
		embeddingClient service.EmbeddingClient
		themeLabeler    service.ThemeLabeler
	)

	if cfg.OpenAIAPIKey != "" {
		aiClient := openai.NewClient(cfg.OpenAIAPIKey,
			openai.WithEmbeddingModel(cfg.EmbeddingModel),
			openai.WithDimensions(cfg.EmbeddingDimensions),
			openai.WithChatModel(cfg.ChatModel),
		)
		embeddingClient = service.NewRateLimitedEmbeddingClient(aiClient, cfg.EmbeddingRateLimit, 1)
		themeLabeler = aiClient

		slog.Info("AI enrichment enabled",
			"embedding_model", cfg.EmbeddingModel,
			"dimensions", cfg.EmbeddingDimensions,
			"chat_model", cfg.ChatModel,
		)
	} else {
		embeddingClient = &noopEmbeddingClient{}

		slog.Info("AI enrichment disabled (OPENAI_API_KEY not set)")
	}

	// Similarity search: indexed pgvector lookup with brute-force fallback
	searcher := similarity.NewFallbackSearcher(
		similarity.NewIndexedSearcher(ideasRepo),
		similarity.NewBruteForceSearcher(ideasRepo),
		logger,
	)

	var queryCache *lru.Cache[string, []float32]

	if cfg.QueryCacheSize > 0 {
		queryCache, err = lru.New[string, []float32](cfg.QueryCacheSize)
		if err != nil {
			db.Close()

			return nil, fmt.Errorf("create query cache: %w", err)
		}
	}

	ideasService := service.NewIdeasService(service.IdeasServiceParams{
		Repo:            ideasRepo,
		EmbeddingClient: embeddingClient,
		Searcher:        searcher,
		Weights:         cfg.Weights,
		QueryCache:      queryCache,
		Logger:          logger,
	})

	clusterer := clustering.New(clustering.Config{
		MinClusters:        cfg.MinClusters,
		MaxClusters:        cfg.MaxClusters,
		MinIdeasPerCluster: cfg.MinIdeasPerCluster,
	})
	clusteringService := service.NewClusteringService(ideasRepo, clusterer, themeLabeler, logger)

	ideasHandler := handlers.NewIdeasHandler(ideasService)
	searchHandler := handlers.NewSearchHandler(ideasService, cfg.SimilarityThreshold)
	clusteringHandler := handlers.NewClusteringHandler(clusteringService)
	healthHandler := handlers.NewHealthHandler()

	// Public endpoints (no authentication required)
	publicMux := http.NewServeMux()
	publicMux.HandleFunc("GET /health", healthHandler.Check)

	// Protected endpoints (authentication required)
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("POST /v1/ideas", ideasHandler.Create)
	protectedMux.HandleFunc("GET /v1/ideas", ideasHandler.List)
	protectedMux.HandleFunc("GET /v1/ideas/{id}", ideasHandler.Get)
	protectedMux.HandleFunc("PATCH /v1/ideas/{id}", ideasHandler.Update)
	protectedMux.HandleFunc("PATCH /v1/ideas/{id}/status", ideasHandler.UpdateStatus)
	protectedMux.HandleFunc("DELETE /v1/ideas/{id}", ideasHandler.Delete)
	protectedMux.HandleFunc("POST /v1/ideas/{id}/analyze", ideasHandler.Analyze)
	protectedMux.HandleFunc("POST /v1/ideas/{id}/rescore", ideasHandler.Rescore)
	protectedMux.HandleFunc("GET /v1/ideas/{id}/similar", searchHandler.SimilarToIdea)
	protectedMux.HandleFunc("POST /v1/ideas/search/similar", searchHandler.SearchSimilar)
	protectedMux.HandleFunc("POST /v1/ideas/clusters/run", clusteringHandler.Run)

	var protectedHandler http.Handler = protectedMux
	protectedHandler = middleware.Auth(cfg.APIKey)(protectedHandler)

	mainMux := http.NewServeMux()
	mainMux.Handle("/v1/", protectedHandler)
	mainMux.Handle("/", publicMux) // Catch-all for public routes (/health, etc.)

	// Outermost first: request ID, then logging, then body limit
	handler := middleware.MaxBody(cfg.MaxRequestBodyBytes)(mainMux)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var scheduler *worker.AnalysisScheduler

	if cfg.AnalysisSchedulerEnabled && cfg.OpenAIAPIKey != "" {
		scheduler = worker.NewAnalysisScheduler(
			ideasService,
			clusteringService,
			cfg.AnalysisInterval,
			cfg.BackfillBatchSize,
			logger,
		)
	}

	return &App{
		cfg:       cfg,
		db:        db,
		server:    server,
		scheduler: scheduler,
	}, nil
}

// Run starts the HTTP server and the background scheduler and blocks until an
// interrupt signal arrives or the server fails, then shuts down gracefully.
func (a *App) Run() error {
	serverErr := make(chan error, 1)

	go func() {
		slog.Info("Starting server", "port", a.cfg.Port)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	if a.scheduler != nil {
		go a.scheduler.Start(workerCtx)
	}

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		workerCancel()
		a.Shutdown()

		return fmt.Errorf("server: %w", err)
	case <-quit:
		slog.Info("Shutting down server...")
		workerCancel()
		a.Shutdown()

		return nil
	}
}

// Shutdown stops accepting new requests, waits for in-flight ones up to a
// timeout, and closes the database pool.
func (a *App) Shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	a.db.Close()

	slog.Info("Server exited")
}

// noopEmbeddingClient keeps the service wiring uniform when AI enrichment is
// disabled; every call reports the feature as unavailable.
type noopEmbeddingClient struct{}

var errEmbeddingsDisabled = errors.New("embeddings disabled: OPENAI_API_KEY not set")

func (c *noopEmbeddingClient) CreateEmbedding(context.Context, string) ([]float32, error) {
	return nil, errEmbeddingsDisabled
}
