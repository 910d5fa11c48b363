package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideahub/hub/internal/clustering"
	"github.com/ideahub/hub/internal/models"
)

type fakeClusteringRepo struct {
	ideas   []models.EmbeddedIdea
	listErr error

	savedLabels map[uuid.UUID]string
	saveErr     error
}

func (f *fakeClusteringRepo) ListEmbedded(_ context.Context) ([]models.EmbeddedIdea, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	return f.ideas, nil
}

func (f *fakeClusteringRepo) UpdateClusterLabels(_ context.Context, labels map[uuid.UUID]string) error {
	if f.saveErr != nil {
		return f.saveErr
	}

	f.savedLabels = labels

	return nil
}

type fakeLabeler struct {
	labels []string
	err    error
	calls  int
}

func (f *fakeLabeler) GenerateThemeLabel(_ context.Context, _, _ []string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}

	if len(f.labels) == 0 {
		return "Theme", nil
	}

	label := f.labels[(f.calls-1)%len(f.labels)]

	return label, nil
}

func embeddedGroup(direction []float32, count int) []models.EmbeddedIdea {
	out := make([]models.EmbeddedIdea, count)

	for i := range out {
		v := make([]float32, len(direction))
		copy(v, direction)
		v[i%len(v)] += 0.01 * float32(i+1)

		out[i] = models.EmbeddedIdea{
			ID:        uuid.New(),
			Title:     "idea",
			Embedding: v,
		}
	}

	return out
}

func TestRunClustering(t *testing.T) {
	ctx := context.Background()
	clusterer := clustering.New(clustering.DefaultConfig())

	t.Run("empty corpus is a no-op", func(t *testing.T) {
		repo := &fakeClusteringRepo{}
		svc := NewClusteringService(repo, clusterer, &fakeLabeler{}, nil)

		result, err := svc.RunClustering(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, result.NumClusters)
		assert.Equal(t, 0, result.TotalIdeas)
		assert.Empty(t, result.Themes)
		assert.Nil(t, repo.savedLabels)
	})

	t.Run("labels every idea with its cluster theme", func(t *testing.T) {
		var ideas []models.EmbeddedIdea
		ideas = append(ideas, embeddedGroup([]float32{1, 0, 0}, 4)...)
		ideas = append(ideas, embeddedGroup([]float32{0, 1, 0}, 4)...)

		repo := &fakeClusteringRepo{ideas: ideas}
		labeler := &fakeLabeler{labels: []string{"Process Automation", "Employee Wellbeing"}}
		svc := NewClusteringService(repo, clusterer, labeler, nil)

		result, err := svc.RunClustering(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, result.NumClusters)
		assert.Equal(t, 8, result.TotalIdeas)
		require.Len(t, result.Themes, 2)
		require.Len(t, repo.savedLabels, 8)

		// Every idea in a theme carries that theme's label.
		for _, theme := range result.Themes {
			for _, id := range theme.IdeaIDs {
				assert.Equal(t, theme.Label, repo.savedLabels[id])
			}
		}
	})

	t.Run("labeler failure degrades to fallback label", func(t *testing.T) {
		repo := &fakeClusteringRepo{ideas: embeddedGroup([]float32{1, 0}, 4)}
		svc := NewClusteringService(repo, clusterer, &fakeLabeler{err: errors.New("llm down")}, nil)

		result, err := svc.RunClustering(ctx, 1)
		require.NoError(t, err)
		require.Len(t, result.Themes, 1)
		assert.Equal(t, "Uncategorized", result.Themes[0].Label)
	})

	t.Run("nil labeler uses fallback label", func(t *testing.T) {
		repo := &fakeClusteringRepo{ideas: embeddedGroup([]float32{1, 0}, 3)}
		svc := NewClusteringService(repo, clusterer, nil, nil)

		result, err := svc.RunClustering(ctx, 1)
		require.NoError(t, err)
		require.Len(t, result.Themes, 1)
		assert.Equal(t, "Uncategorized", result.Themes[0].Label)
	})

	t.Run("k override larger than corpus fails", func(t *testing.T) {
		repo := &fakeClusteringRepo{ideas: embeddedGroup([]float32{1, 0}, 2)}
		svc := NewClusteringService(repo, clusterer, nil, nil)

		_, err := svc.RunClustering(ctx, 5)
		assert.ErrorIs(t, err, clustering.ErrTooManyClusters)
	})

	t.Run("persist failure surfaces", func(t *testing.T) {
		repo := &fakeClusteringRepo{
			ideas:   embeddedGroup([]float32{1, 0}, 3),
			saveErr: errors.New("db down"),
		}
		svc := NewClusteringService(repo, clusterer, nil, nil)

		_, err := svc.RunClustering(ctx, 1)
		assert.ErrorContains(t, err, "persist cluster labels")
	})
}
