package similarity

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/ideahub/hub/internal/models"
)

// EmbeddedIdeaLister loads every stored idea that carries an embedding.
type EmbeddedIdeaLister interface {
	ListEmbedded(ctx context.Context) ([]models.EmbeddedIdea, error)
}

// BruteForceSearcher scans the whole corpus with in-memory cosine similarity.
// CPU-bound and linear in corpus size; it exists so that index outages degrade
// to slower answers instead of failed requests.
type BruteForceSearcher struct {
	repo EmbeddedIdeaLister
}

// NewBruteForceSearcher creates a BruteForceSearcher over the given corpus.
func NewBruteForceSearcher(repo EmbeddedIdeaLister) *BruteForceSearcher {
	return &BruteForceSearcher{repo: repo}
}

// Search implements Searcher.
func (s *BruteForceSearcher) Search(
	ctx context.Context, query []float32, threshold float64, limit int, excludeID *uuid.UUID,
) ([]models.SimilarIdea, error) {
	if len(query) == 0 || limit <= 0 {
		return nil, nil
	}

	ideas, err := s.repo.ListEmbedded(ctx)
	if err != nil {
		return nil, fmt.Errorf("list embedded ideas: %w", err)
	}

	var matches []models.SimilarIdea

	for _, idea := range ideas {
		if excludeID != nil && idea.ID == *excludeID {
			continue
		}

		if len(idea.Embedding) == 0 {
			continue
		}

		score := Cosine(query, idea.Embedding)
		if score < threshold {
			continue
		}

		matches = append(matches, models.SimilarIdea{
			IdeaID:  idea.ID,
			Title:   idea.Title,
			Summary: idea.Summary,
			Status:  idea.Status,
			Score:   score,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}
