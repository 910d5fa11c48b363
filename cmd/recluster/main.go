// Command recluster runs one batch clustering pass over all embedded ideas
// and exits. Useful for backfills and cron-style scheduling.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/ideahub/hub/internal/clustering"
	"github.com/ideahub/hub/internal/config"
	"github.com/ideahub/hub/internal/observability"
	"github.com/ideahub/hub/internal/openai"
	"github.com/ideahub/hub/internal/repository"
	"github.com/ideahub/hub/internal/service"
	"github.com/ideahub/hub/pkg/database"
)

func main() {
	k := flag.Int("k", 0, "cluster count; 0 selects automatically")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.SetupLogging(cfg.LogLevel)

	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, database.WithAfterConnect(pgxvec.RegisterTypes))
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var labeler service.ThemeLabeler

	if cfg.OpenAIAPIKey != "" {
		labeler = openai.NewClient(cfg.OpenAIAPIKey, openai.WithChatModel(cfg.ChatModel))
	}

	clusterer := clustering.New(clustering.Config{
		MinClusters:        cfg.MinClusters,
		MaxClusters:        cfg.MaxClusters,
		MinIdeasPerCluster: cfg.MinIdeasPerCluster,
	})

	clusteringService := service.NewClusteringService(
		repository.NewIdeasRepository(db), clusterer, labeler, logger)

	result, err := clusteringService.RunClustering(ctx, *k)
	if err != nil {
		slog.Error("Clustering run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Clustering run completed",
		"k", result.NumClusters,
		"ideas", result.TotalIdeas,
		"themes", len(result.Themes),
	)
}
