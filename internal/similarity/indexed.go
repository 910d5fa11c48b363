package similarity

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ideahub/hub/internal/models"
)

// VectorIndex is the nearest-neighbour surface of the vector index backend
// (pgvector in this deployment). Implementations return candidates ordered by
// descending relevance with scores already >= minScore.
type VectorIndex interface {
	NearestByEmbedding(ctx context.Context, query []float32, limit int, minScore float64) ([]models.SimilarIdea, error)
}

// IndexedSearcher delegates the nearest-neighbour query to a vector index.
type IndexedSearcher struct {
	index VectorIndex
}

// NewIndexedSearcher creates an IndexedSearcher over the given index.
func NewIndexedSearcher(index VectorIndex) *IndexedSearcher {
	return &IndexedSearcher{index: index}
}

// Search implements Searcher. One extra candidate is requested as headroom for
// the excluded idea; threshold and exclusion are still applied locally since
// the backend's filtering is advisory.
func (s *IndexedSearcher) Search(
	ctx context.Context, query []float32, threshold float64, limit int, excludeID *uuid.UUID,
) ([]models.SimilarIdea, error) {
	if len(query) == 0 || limit <= 0 {
		return nil, nil
	}

	candidates, err := s.index.NearestByEmbedding(ctx, query, limit+1, threshold)
	if err != nil {
		return nil, fmt.Errorf("vector index search: %w", err)
	}

	results := make([]models.SimilarIdea, 0, limit)

	for _, candidate := range candidates {
		if candidate.Score < threshold {
			continue
		}

		if excludeID != nil && candidate.IdeaID == *excludeID {
			continue
		}

		results = append(results, candidate)
		if len(results) == limit {
			break
		}
	}

	return results, nil
}
