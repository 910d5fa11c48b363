package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ideahub/hub/internal/clustering"
	"github.com/ideahub/hub/internal/models"
)

// Theme label used when LLM labeling is unavailable or fails.
const fallbackThemeLabel = "Uncategorized"

// ClusteringRepository provides the data access needed for batch clustering.
type ClusteringRepository interface {
	ListEmbedded(ctx context.Context) ([]models.EmbeddedIdea, error)
	UpdateClusterLabels(ctx context.Context, labels map[uuid.UUID]string) error
}

// ThemeLabeler generates a short human-readable theme label for a cluster
// from the titles and summaries of its member ideas.
type ThemeLabeler interface {
	GenerateThemeLabel(ctx context.Context, titles, summaries []string) (string, error)
}

// ClusterTheme is one cluster of a clustering run.
type ClusterTheme struct {
	Label   string      `json:"label"`
	IdeaIDs []uuid.UUID `json:"ideaIds"`
	Size    int         `json:"size"`
}

// ClusteringRunResult summarizes one batch clustering run.
type ClusteringRunResult struct {
	Themes      []ClusterTheme           `json:"themes"`
	NumClusters int                      `json:"numClusters"`
	TotalIdeas  int                      `json:"totalIdeas"`
	Assignment  models.ClusterAssignment `json:"-"`
}

// ClusteringService runs batch K-means over all embedded ideas and attaches
// an LLM-generated theme label to each cluster.
type ClusteringService struct {
	repo      ClusteringRepository
	clusterer *clustering.Clusterer
	labeler   ThemeLabeler
	logger    *slog.Logger
}

// NewClusteringService creates a ClusteringService. Labeler may be nil, in
// which case clusters get the fallback label.
func NewClusteringService(
	repo ClusteringRepository, clusterer *clustering.Clusterer, labeler ThemeLabeler, logger *slog.Logger,
) *ClusteringService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ClusteringService{
		repo:      repo,
		clusterer: clusterer,
		labeler:   labeler,
		logger:    logger,
	}
}

// RunClustering clusters every embedded idea into thematic groups, labels
// each group, and persists the labels. kOverride > 0 forces a cluster count;
// kOverride <= 0 selects it automatically. An empty corpus is a no-op.
func (s *ClusteringService) RunClustering(ctx context.Context, kOverride int) (*ClusteringRunResult, error) {
	ideas, err := s.repo.ListEmbedded(ctx)
	if err != nil {
		return nil, fmt.Errorf("list embedded ideas: %w", err)
	}

	result := &ClusteringRunResult{Themes: []ClusterTheme{}, TotalIdeas: len(ideas)}

	if len(ideas) == 0 {
		s.logger.InfoContext(ctx, "clustering run skipped, no embedded ideas")

		return result, nil
	}

	embeddings := make([][]float32, len(ideas))
	for i, idea := range ideas {
		embeddings[i] = idea.Embedding
	}

	labels, k, err := s.clusterer.ClusterIdeas(embeddings, kOverride)
	if err != nil {
		return nil, fmt.Errorf("cluster ideas: %w", err)
	}

	result.NumClusters = k
	result.Assignment = models.ClusterAssignment{Labels: labels, K: k}

	s.logger.InfoContext(ctx, "clustering completed", "k", k, "ideas", len(ideas))

	// Group member indices per cluster, preserving corpus order.
	members := make([][]int, k)
	for i, label := range labels {
		members[label] = append(members[label], i)
	}

	ideaLabels := make(map[uuid.UUID]string, len(ideas))

	for cluster, idxs := range members {
		if len(idxs) == 0 {
			continue
		}

		titles := make([]string, 0, len(idxs))
		summaries := make([]string, 0, len(idxs))
		ideaIDs := make([]uuid.UUID, 0, len(idxs))

		for _, i := range idxs {
			titles = append(titles, ideas[i].Title)
			summaries = append(summaries, ideas[i].Summary)
			ideaIDs = append(ideaIDs, ideas[i].ID)
		}

		label := s.themeLabel(ctx, cluster, titles, summaries)

		for _, id := range ideaIDs {
			ideaLabels[id] = label
		}

		result.Themes = append(result.Themes, ClusterTheme{
			Label:   label,
			IdeaIDs: ideaIDs,
			Size:    len(ideaIDs),
		})
	}

	if err := s.repo.UpdateClusterLabels(ctx, ideaLabels); err != nil {
		return nil, fmt.Errorf("persist cluster labels: %w", err)
	}

	return result, nil
}

// themeLabel asks the labeler for a theme; any failure degrades to the
// fallback label so a flaky LLM never fails the whole run.
func (s *ClusteringService) themeLabel(ctx context.Context, cluster int, titles, summaries []string) string {
	if s.labeler == nil {
		return fallbackThemeLabel
	}

	label, err := s.labeler.GenerateThemeLabel(ctx, titles, summaries)
	if err != nil {
		s.logger.WarnContext(ctx, "theme labeling failed, using fallback",
			"cluster", cluster, "error", err)

		return fallbackThemeLabel
	}

	if label == "" {
		return fallbackThemeLabel
	}

	return label
}
