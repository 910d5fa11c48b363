// Package worker provides background workers for the Ideas Hub API.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/ideahub/hub/internal/service"
)

// EmbeddingBackfiller embeds ideas that are missing an embedding.
type EmbeddingBackfiller interface {
	BackfillEmbeddings(ctx context.Context, batchSize int) (int, error)
}

// Reclusterer runs one batch clustering pass over all embedded ideas.
type Reclusterer interface {
	RunClustering(ctx context.Context, kOverride int) (*service.ClusteringRunResult, error)
}

// AnalysisScheduler periodically backfills missing embeddings and re-runs
// batch clustering so cluster labels track the growing corpus.
type AnalysisScheduler struct {
	backfiller EmbeddingBackfiller
	reclusters Reclusterer
	interval   time.Duration
	batchSize  int
	logger     *slog.Logger
}

// NewAnalysisScheduler creates an analysis scheduler worker.
func NewAnalysisScheduler(
	backfiller EmbeddingBackfiller, reclusters Reclusterer,
	interval time.Duration, batchSize int, logger *slog.Logger,
) *AnalysisScheduler {
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	if batchSize <= 0 {
		batchSize = 50
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &AnalysisScheduler{
		backfiller: backfiller,
		reclusters: reclusters,
		interval:   interval,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// Start begins the background worker loop. It runs until the context is cancelled.
func (w *AnalysisScheduler) Start(ctx context.Context) {
	w.logger.Info("analysis scheduler started",
		"interval", w.interval,
		"batch_size", w.batchSize,
	)

	// Run immediately on startup
	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("analysis scheduler stopped")

			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce backfills missing embeddings, then re-clusters.
func (w *AnalysisScheduler) runOnce(ctx context.Context) {
	embedded, err := w.backfiller.BackfillEmbeddings(ctx, w.batchSize)
	if err != nil {
		w.logger.Error("embedding backfill failed", "error", err)
	} else if embedded > 0 {
		w.logger.Info("embedding backfill completed", "embedded", embedded)
	}

	if ctx.Err() != nil {
		return
	}

	result, err := w.reclusters.RunClustering(ctx, 0)
	if err != nil {
		w.logger.Error("scheduled clustering run failed", "error", err)

		return
	}

	if result.TotalIdeas > 0 {
		w.logger.Info("scheduled clustering run completed",
			"k", result.NumClusters, "ideas", result.TotalIdeas)
	}
}
