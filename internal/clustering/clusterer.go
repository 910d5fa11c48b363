// Package clustering partitions idea embeddings into thematic clusters with
// K-means, auto-selecting the cluster count via silhouette score. Clustering
// is purely geometric; theme labeling is the caller's concern.
package clustering

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

const (
	defaultMinClusters        = 3
	defaultMaxClusters        = 10
	defaultMinIdeasPerCluster = 3
	defaultMaxIterations      = 100

	// Fixed seed: repeated runs on identical input must produce identical
	// labels.
	randomSeed = 42
)

// ErrTooManyClusters is returned when the caller requests more clusters than
// there are embeddings. This is a contract violation, unlike a degenerate
// auto-selection range which is resolved silently.
var ErrTooManyClusters = errors.New("clustering: requested k exceeds number of embeddings")

// Config bounds the automatic cluster-count search.
type Config struct {
	MinClusters        int
	MaxClusters        int
	MinIdeasPerCluster int
	MaxIterations      int
}

// DefaultConfig returns the deployment default search bounds.
func DefaultConfig() Config {
	return Config{
		MinClusters:        defaultMinClusters,
		MaxClusters:        defaultMaxClusters,
		MinIdeasPerCluster: defaultMinIdeasPerCluster,
		MaxIterations:      defaultMaxIterations,
	}
}

// Clusterer runs K-means batch clustering over idea embeddings.
type Clusterer struct {
	cfg Config
}

// New creates a Clusterer. Non-positive config fields fall back to defaults.
func New(cfg Config) *Clusterer {
	def := DefaultConfig()

	if cfg.MinClusters <= 0 {
		cfg.MinClusters = def.MinClusters
	}

	if cfg.MaxClusters <= 0 {
		cfg.MaxClusters = def.MaxClusters
	}

	if cfg.MinIdeasPerCluster <= 0 {
		cfg.MinIdeasPerCluster = def.MinIdeasPerCluster
	}

	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = def.MaxIterations
	}

	return &Clusterer{cfg: cfg}
}

// ClusterIdeas partitions the embeddings into k clusters and returns the
// per-embedding labels and the cluster count used. k <= 0 selects the count
// automatically by silhouette score. Empty input returns ([], 0, nil); the
// only error condition is an explicit k larger than the input size.
func (c *Clusterer) ClusterIdeas(embeddings [][]float32, k int) ([]int, int, error) {
	n := len(embeddings)
	if n == 0 {
		return []int{}, 0, nil
	}

	if k > n {
		return nil, 0, fmt.Errorf("%w: k=%d, n=%d", ErrTooManyClusters, k, n)
	}

	data := toDense(embeddings)

	if k <= 0 {
		k = c.findOptimalK(data, n)
	}

	labels := c.kMeans(data, k)

	return labels, k, nil
}

// findOptimalK searches [min(minClusters, maxFeasible), min(maxClusters,
// maxFeasible)] where maxFeasible = n / minIdeasPerCluster, scoring each
// candidate partition with the silhouette metric. A degenerate range (too few
// ideas) resolves to the smallest feasible k; candidates that fail to produce
// a valid score are skipped rather than aborting the run.
func (c *Clusterer) findOptimalK(data *mat.Dense, n int) int {
	maxFeasible := n / c.cfg.MinIdeasPerCluster

	maxK := min(c.cfg.MaxClusters, maxFeasible)
	minK := min(c.cfg.MinClusters, maxK)

	if minK < 1 {
		minK = 1
	}

	if maxK < minK {
		return minK
	}

	bestK := minK
	bestScore := -1.0

	for k := minK; k <= maxK; k++ {
		labels := c.kMeans(data, k)

		score, ok := silhouetteScore(data, labels, k)
		if !ok {
			continue
		}

		if score > bestScore {
			bestScore = score
			bestK = k
		}
	}

	return bestK
}

// toDense copies the embeddings into a gonum matrix. Rows shorter than the
// first row are zero-padded and longer rows truncated; mixed-dimensionality
// corpora are a data-quality condition, not an error.
func toDense(embeddings [][]float32) *mat.Dense {
	n := len(embeddings)
	dim := len(embeddings[0])

	data := mat.NewDense(n, dim, nil)

	for i, emb := range embeddings {
		row := make([]float64, dim)
		for j := 0; j < dim && j < len(emb); j++ {
			row[j] = float64(emb[j])
		}

		data.SetRow(i, row)
	}

	return data
}
