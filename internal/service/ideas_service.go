// Package service contains the application services of the Ideas Hub.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/ideahub/hub/internal/models"
	"github.com/ideahub/hub/internal/repository"
	"github.com/ideahub/hub/internal/scoring"
	"github.com/ideahub/hub/internal/similarity"
)

// Sentinel errors for idea operations (used by handlers for status mapping).
var (
	ErrIdeaNotFound      = repository.ErrIdeaNotFound
	ErrNoEmbedding       = errors.New("idea has no embedding")
	ErrNotEditable       = errors.New("idea is not editable in its current status")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// IdeasRepositoryForService provides the idea persistence operations the
// service needs.
type IdeasRepositoryForService interface {
	Create(ctx context.Context, idea *models.Idea) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Idea, error)
	List(ctx context.Context, status models.IdeaStatus, limit, offset int) ([]models.Idea, error)
	Update(ctx context.Context, idea *models.Idea) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateAnalysis(
		ctx context.Context, id uuid.UUID, estimate *models.KPIEstimate, score models.ScoreResult,
		summary string, tags []string, embedding []float32,
	) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.IdeaStatus) error
	ListMissingEmbedding(ctx context.Context, limit int) ([]models.Idea, error)
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error
}

// IdeasService owns the idea lifecycle: CRUD, KPI analysis, and
// embedding-based similarity lookups.
type IdeasService struct {
	repo            IdeasRepositoryForService
	embeddingClient EmbeddingClient
	searcher        similarity.Searcher
	weights         scoring.Weights
	queryCache      *lru.Cache[string, []float32]
	queryLoadGroup  singleflight.Group
	logger          *slog.Logger
}

// IdeasServiceParams configures IdeasService. QueryCache may be nil (no
// query embedding caching); Logger may be nil (slog default).
type IdeasServiceParams struct {
	Repo            IdeasRepositoryForService
	EmbeddingClient EmbeddingClient
	Searcher        similarity.Searcher
	Weights         scoring.Weights
	QueryCache      *lru.Cache[string, []float32]
	Logger          *slog.Logger
}

// NewIdeasService creates an IdeasService.
func NewIdeasService(p IdeasServiceParams) *IdeasService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &IdeasService{
		repo:            p.Repo,
		embeddingClient: p.EmbeddingClient,
		searcher:        p.Searcher,
		weights:         p.Weights,
		queryCache:      p.QueryCache,
		logger:          logger,
	}
}

// CreateIdea stores a new idea and generates its embedding. Embedding
// generation is best-effort: on failure the idea is stored without one and
// the background backfill picks it up later.
func (s *IdeasService) CreateIdea(ctx context.Context, idea *models.Idea) error {
	now := time.Now()
	idea.ID = uuid.New()
	idea.CreatedAt = now
	idea.UpdatedAt = now

	if idea.Status == "" {
		idea.Status = models.IdeaStatusDraft
	}

	if idea.RecommendationClass == "" {
		idea.RecommendationClass = models.RecommendationUnclassified
	}

	embedding, err := s.embeddingClient.CreateEmbedding(ctx, idea.EmbeddingText())
	if err != nil {
		s.logger.WarnContext(ctx, "create idea: embedding generation failed, storing without embedding",
			"ideaId", idea.ID.String(), "error", err)
	} else {
		idea.Embedding = embedding
	}

	if err := s.repo.Create(ctx, idea); err != nil {
		return fmt.Errorf("create idea: %w", err)
	}

	return nil
}

// GetIdea returns the idea with the given ID.
func (s *IdeasService) GetIdea(ctx context.Context, id uuid.UUID) (*models.Idea, error) {
	idea, err := s.repo.GetByID(ctx, id)
	if err != nil {
		//nolint:wrapcheck // ErrIdeaNotFound passes through for handler status mapping
		return nil, err
	}

	return idea, nil
}

// ListIdeas returns ideas filtered by status, newest first.
func (s *IdeasService) ListIdeas(ctx context.Context, status models.IdeaStatus, limit, offset int) ([]models.Idea, error) {
	ideas, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}

	return ideas, nil
}

// UpdateIdea applies user edits to an idea. Editing is only allowed while
// the idea is in a pre-decision workflow state; text changes invalidate the
// stored embedding, which is regenerated best-effort.
func (s *IdeasService) UpdateIdea(ctx context.Context, idea *models.Idea) error {
	current, err := s.repo.GetByID(ctx, idea.ID)
	if err != nil {
		//nolint:wrapcheck // ErrIdeaNotFound passes through for handler status mapping
		return err
	}

	if !current.CanBeEdited() {
		return fmt.Errorf("%w: status %s", ErrNotEditable, current.Status)
	}

	idea.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, idea); err != nil {
		return fmt.Errorf("update idea: %w", err)
	}

	textChanged := idea.Title != current.Title ||
		idea.Description != current.Description ||
		idea.ProblemDescription != current.ProblemDescription ||
		idea.ExpectedBenefit != current.ExpectedBenefit

	if textChanged {
		idea.Summary = current.Summary

		embedding, embErr := s.embeddingClient.CreateEmbedding(ctx, idea.EmbeddingText())
		if embErr != nil {
			s.logger.WarnContext(ctx, "update idea: embedding refresh failed",
				"ideaId", idea.ID.String(), "error", embErr)

			return nil
		}

		if err := s.repo.UpdateEmbedding(ctx, idea.ID, embedding); err != nil {
			s.logger.WarnContext(ctx, "update idea: storing refreshed embedding failed",
				"ideaId", idea.ID.String(), "error", err)
		}
	}

	return nil
}

// UpdateIdeaStatus moves an idea to the next workflow state. Review decisions
// are separate from content edits: transitions remain possible after the idea
// is frozen for editing, and are validated against the workflow transition
// table. Rejected and implemented are final states.
func (s *IdeasService) UpdateIdeaStatus(
	ctx context.Context, id uuid.UUID, status models.IdeaStatus, reason string,
) (*models.Idea, error) {
	idea, err := s.repo.GetByID(ctx, id)
	if err != nil {
		//nolint:wrapcheck // ErrIdeaNotFound passes through for handler status mapping
		return nil, err
	}

	if !idea.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, idea.Status, status)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update idea status: %w", err)
	}

	s.logger.InfoContext(ctx, "idea status changed",
		"ideaId", id.String(),
		"from", string(idea.Status),
		"to", string(status),
		"reason", reason,
	)

	return s.repo.GetByID(ctx, id)
}

// DeleteIdea removes an idea.
func (s *IdeasService) DeleteIdea(ctx context.Context, id uuid.UUID) error {
	//nolint:wrapcheck // ErrIdeaNotFound passes through for handler status mapping
	return s.repo.Delete(ctx, id)
}

// AnalyzeIdea scores an idea from the given KPI estimates and persists the
// full analysis outcome (estimates, scores, recommendation class, summary,
// tags, embedding). Each run supersedes the previous one. The embedding is
// regenerated best-effort; on failure the existing embedding is kept.
func (s *IdeasService) AnalyzeIdea(
	ctx context.Context, id uuid.UUID, estimate *models.KPIEstimate, summary string, tags []string,
) (*models.Idea, error) {
	idea, err := s.repo.GetByID(ctx, id)
	if err != nil {
		//nolint:wrapcheck // ErrIdeaNotFound passes through for handler status mapping
		return nil, err
	}

	score := scoring.Score(estimate, s.weights)

	embedding := idea.Embedding

	fresh, embErr := s.embeddingClient.CreateEmbedding(ctx, idea.EmbeddingText())
	if embErr != nil {
		s.logger.WarnContext(ctx, "analyze idea: embedding regeneration failed, keeping stored embedding",
			"ideaId", id.String(), "error", embErr)
	} else {
		embedding = fresh
	}

	if err := s.repo.UpdateAnalysis(ctx, id, estimate, score, summary, tags, embedding); err != nil {
		//nolint:wrapcheck // ErrIdeaNotFound passes through for handler status mapping
		return nil, err
	}

	s.logger.InfoContext(ctx, "idea analyzed",
		"ideaId", id.String(),
		"impactScore", score.ImpactScore,
		"feasibilityScore", score.FeasibilityScore,
		"recommendation", string(score.RecommendationClass),
	)

	return s.repo.GetByID(ctx, id)
}

// RecomputeScores rescores an already-analyzed idea with the current weights
// without touching estimates, summary, tags, or embedding. Ideas without
// stored estimates are returned unchanged.
func (s *IdeasService) RecomputeScores(ctx context.Context, id uuid.UUID) (*models.Idea, error) {
	idea, err := s.repo.GetByID(ctx, id)
	if err != nil {
		//nolint:wrapcheck // ErrIdeaNotFound passes through for handler status mapping
		return nil, err
	}

	if idea.KPIEstimates == nil {
		return idea, nil
	}

	score := scoring.Score(idea.KPIEstimates, s.weights)

	if err := s.repo.UpdateAnalysis(ctx, id, idea.KPIEstimates, score, idea.Summary, idea.Tags, idea.Embedding); err != nil {
		return nil, fmt.Errorf("recompute scores: %w", err)
	}

	return s.repo.GetByID(ctx, id)
}

// FindSimilarIdeas embeds the free-text query and returns ideas above the
// similarity threshold, most similar first. An empty or whitespace-only query
// matches nothing and yields an empty result list. Query embeddings are
// cached so repeated searches don't re-bill the provider.
func (s *IdeasService) FindSimilarIdeas(
	ctx context.Context, query string, threshold float64, limit int,
) ([]models.SimilarIdea, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.SimilarIdea{}, nil
	}

	var (
		embedding []float32
		err       error
	)

	if s.queryCache != nil {
		embedding, err = s.getQueryEmbeddingCached(ctx, query)
	} else {
		embedding, err = s.embeddingClient.CreateEmbedding(ctx, query)
	}

	if err != nil {
		s.logger.ErrorContext(ctx, "similar ideas search: create embedding failed", "error", err)

		return nil, fmt.Errorf("create embedding: %w", err)
	}

	results, err := s.searcher.Search(ctx, embedding, threshold, limit, nil)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	return results, nil
}

// SimilarToIdea returns ideas similar to the given one, excluding the idea
// itself. Returns ErrNoEmbedding when the idea has not been embedded yet.
func (s *IdeasService) SimilarToIdea(
	ctx context.Context, id uuid.UUID, threshold float64, limit int,
) ([]models.SimilarIdea, error) {
	idea, err := s.repo.GetByID(ctx, id)
	if err != nil {
		//nolint:wrapcheck // ErrIdeaNotFound passes through for handler status mapping
		return nil, err
	}

	if len(idea.Embedding) == 0 {
		return nil, ErrNoEmbedding
	}

	results, err := s.searcher.Search(ctx, idea.Embedding, threshold, limit, &id)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	return results, nil
}

// BackfillEmbeddings generates embeddings for ideas that are missing one,
// up to batchSize per call. Returns the number of ideas embedded. Individual
// failures are logged and skipped so one bad idea doesn't stall the batch.
func (s *IdeasService) BackfillEmbeddings(ctx context.Context, batchSize int) (int, error) {
	ideas, err := s.repo.ListMissingEmbedding(ctx, batchSize)
	if err != nil {
		return 0, fmt.Errorf("list ideas missing embedding: %w", err)
	}

	embedded := 0

	for i := range ideas {
		idea := &ideas[i]

		embedding, err := s.embeddingClient.CreateEmbedding(ctx, idea.EmbeddingText())
		if err != nil {
			if ctx.Err() != nil {
				return embedded, fmt.Errorf("embedding backfill cancelled: %w", ctx.Err())
			}

			s.logger.WarnContext(ctx, "embedding backfill: skipping idea",
				"ideaId", idea.ID.String(), "error", err)

			continue
		}

		if err := s.repo.UpdateEmbedding(ctx, idea.ID, embedding); err != nil {
			s.logger.WarnContext(ctx, "embedding backfill: storing embedding failed",
				"ideaId", idea.ID.String(), "error", err)

			continue
		}

		embedded++
	}

	return embedded, nil
}

func (s *IdeasService) getQueryEmbeddingCached(ctx context.Context, query string) ([]float32, error) {
	if vec, ok := s.queryCache.Get(query); ok {
		return vec, nil
	}

	val, err, _ := s.queryLoadGroup.Do(query, func() (any, error) {
		vec, loadErr := s.embeddingClient.CreateEmbedding(ctx, query)
		if loadErr != nil {
			return nil, fmt.Errorf("create embedding: %w", loadErr)
		}

		s.queryCache.Add(query, vec)

		return vec, nil
	})
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	return val.([]float32), nil
}
