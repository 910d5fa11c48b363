package similarity

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ideahub/hub/internal/models"
)

// Searcher finds ideas similar to a query embedding. Results are ordered by
// descending score, capped at limit, with excludeID (when non-nil) and scores
// below threshold filtered out. An empty query vector yields an empty result,
// not an error.
type Searcher interface {
	Search(ctx context.Context, query []float32, threshold float64, limit int, excludeID *uuid.UUID) ([]models.SimilarIdea, error)
}

// FallbackSearcher composes two searchers: it tries primary and runs secondary
// on any error from it. Index outages degrade to the slower scan instead of
// failing the request, so both paths must produce the same result shape.
type FallbackSearcher struct {
	primary   Searcher
	secondary Searcher
	logger    *slog.Logger
}

// NewFallbackSearcher creates a FallbackSearcher. A nil logger falls back to
// slog.Default.
func NewFallbackSearcher(primary, secondary Searcher, logger *slog.Logger) *FallbackSearcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &FallbackSearcher{primary: primary, secondary: secondary, logger: logger}
}

// Search implements Searcher. A primary failure is informational, not a
// user-facing error.
func (s *FallbackSearcher) Search(
	ctx context.Context, query []float32, threshold float64, limit int, excludeID *uuid.UUID,
) ([]models.SimilarIdea, error) {
	if len(query) == 0 || limit <= 0 {
		return nil, nil
	}

	results, err := s.primary.Search(ctx, query, threshold, limit, excludeID)
	if err == nil {
		return results, nil
	}

	s.logger.InfoContext(ctx, "indexed similarity search unavailable, using brute-force fallback", "error", err)

	return s.secondary.Search(ctx, query, threshold, limit, excludeID)
}
