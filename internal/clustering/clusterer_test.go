package clustering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// group returns count vectors near the given base direction so clusters are
// well separated.
func group(base []float32, count int) [][]float32 {
	out := make([][]float32, count)
	for i := range out {
		v := make([]float32, len(base))
		copy(v, base)

		// Small per-point perturbation that keeps the direction.
		v[i%len(v)] += 0.01 * float32(i+1)
		out[i] = v
	}

	return out
}

func TestClusterIdeasEmptyInput(t *testing.T) {
	c := New(DefaultConfig())

	labels, k, err := c.ClusterIdeas(nil, 0)
	require.NoError(t, err)
	assert.Empty(t, labels)
	assert.Equal(t, 0, k)
}

func TestClusterIdeasTooManyClusters(t *testing.T) {
	c := New(DefaultConfig())

	_, _, err := c.ClusterIdeas([][]float32{{1, 0}, {0, 1}}, 5)
	assert.ErrorIs(t, err, ErrTooManyClusters)
}

func TestClusterIdeasExplicitK(t *testing.T) {
	c := New(DefaultConfig())

	var embeddings [][]float32
	embeddings = append(embeddings, group([]float32{1, 0, 0}, 4)...)
	embeddings = append(embeddings, group([]float32{0, 1, 0}, 4)...)

	labels, k, err := c.ClusterIdeas(embeddings, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, k)
	require.Len(t, labels, len(embeddings))

	// Both halves land in one cluster each.
	for i := 1; i < 4; i++ {
		assert.Equal(t, labels[0], labels[i])
	}

	for i := 5; i < 8; i++ {
		assert.Equal(t, labels[4], labels[i])
	}

	assert.NotEqual(t, labels[0], labels[4])
}

func TestClusterIdeasAutoK(t *testing.T) {
	c := New(DefaultConfig())

	var embeddings [][]float32
	embeddings = append(embeddings, group([]float32{1, 0, 0}, 4)...)
	embeddings = append(embeddings, group([]float32{0, 1, 0}, 4)...)
	embeddings = append(embeddings, group([]float32{0, 0, 1}, 4)...)

	labels, k, err := c.ClusterIdeas(embeddings, 0)
	require.NoError(t, err)
	require.Len(t, labels, 12)

	// 12 ideas with min 3 per cluster: k search range is [3, 4]; three
	// separated groups should select 3.
	assert.Equal(t, 3, k)
}

func TestClusterIdeasDegenerateAutoRange(t *testing.T) {
	c := New(DefaultConfig())

	// 5 ideas with min 3 per cluster: only one cluster is feasible.
	embeddings := group([]float32{1, 0}, 5)

	labels, k, err := c.ClusterIdeas(embeddings, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, k)

	for _, label := range labels {
		assert.Equal(t, 0, label)
	}
}

func TestClusterIdeasDeterministic(t *testing.T) {
	c := New(DefaultConfig())

	var embeddings [][]float32
	embeddings = append(embeddings, group([]float32{1, 0, 0}, 5)...)
	embeddings = append(embeddings, group([]float32{0, 1, 0}, 5)...)

	first, firstK, err := c.ClusterIdeas(embeddings, 0)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		labels, k, err := c.ClusterIdeas(embeddings, 0)
		require.NoError(t, err)
		assert.Equal(t, firstK, k)
		assert.Equal(t, first, labels)
	}
}

func TestClusterIdeasMixedDimensions(t *testing.T) {
	c := New(DefaultConfig())

	// Shorter and longer rows are padded/truncated, not rejected.
	embeddings := [][]float32{
		{1, 0, 0},
		{1, 0},
		{0.9, 0.1, 0, 0.5},
		{0, 1, 0},
		{0, 0.9, 0.1},
	}

	labels, k, err := c.ClusterIdeas(embeddings, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, k)
	assert.Len(t, labels, 5)
}

func TestConfigDefaults(t *testing.T) {
	c := New(Config{MinClusters: -1, MaxClusters: 0, MinIdeasPerCluster: 0, MaxIterations: -5})

	assert.Equal(t, DefaultConfig(), c.cfg)
}
