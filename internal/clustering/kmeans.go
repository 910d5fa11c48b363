package clustering

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// kMeans clusters the rows of data into k clusters and returns one label per
// row. Initialization is k-means++ on a locally seeded RNG, so runs are
// reproducible and no global mutable state survives an abandoned call.
func (c *Clusterer) kMeans(data *mat.Dense, k int) []int {
	n, dim := data.Dims()
	if k > n {
		k = n
	}

	rng := rand.New(rand.NewSource(randomSeed))
	centroids := initCentroids(data, k, rng)
	assignments := make([]int, n)

	for iter := 0; iter < c.cfg.MaxIterations; iter++ {
		changed := false

		for i := 0; i < n; i++ {
			nearest := nearestCentroid(data.RawRowView(i), centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed = true
			}
		}

		if !changed && iter > 0 {
			break
		}

		// Update step: recompute each centroid as the mean of its members.
		// Empty clusters keep their previous centroid.
		sums := mat.NewDense(k, dim, nil)
		counts := make([]int, k)

		for i := 0; i < n; i++ {
			cluster := assignments[i]
			counts[cluster]++

			row := data.RawRowView(i)
			for j := 0; j < dim; j++ {
				sums.Set(cluster, j, sums.At(cluster, j)+row[j])
			}
		}

		for i := 0; i < k; i++ {
			if counts[i] == 0 {
				continue
			}

			for j := 0; j < dim; j++ {
				centroids.Set(i, j, sums.At(i, j)/float64(counts[i]))
			}
		}
	}

	return assignments
}

// initCentroids picks k starting centroids with k-means++: the first uniformly
// at random, each following one with probability proportional to the squared
// cosine distance to its nearest chosen centroid.
func initCentroids(data *mat.Dense, k int, rng *rand.Rand) *mat.Dense {
	n, dim := data.Dims()
	centroids := mat.NewDense(k, dim, nil)
	centroids.SetRow(0, data.RawRowView(rng.Intn(n)))

	for next := 1; next < k; next++ {
		distances := make([]float64, n)

		var total float64

		for i := 0; i < n; i++ {
			point := data.RawRowView(i)
			minDist := math.Inf(1)

			for c := 0; c < next; c++ {
				dist := cosineDistance(point, centroids.RawRowView(c))
				if dist < minDist {
					minDist = dist
				}
			}

			distances[i] = minDist * minDist
			total += distances[i]
		}

		if total == 0 {
			// All points coincide with a chosen centroid; pick randomly.
			centroids.SetRow(next, data.RawRowView(rng.Intn(n)))
			continue
		}

		target := rng.Float64() * total

		var cum float64

		selected := n - 1

		for i, d := range distances {
			cum += d
			if cum >= target {
				selected = i
				break
			}
		}

		centroids.SetRow(next, data.RawRowView(selected))
	}

	return centroids
}

// nearestCentroid returns the index of the centroid closest to point by
// cosine distance.
func nearestCentroid(point []float64, centroids *mat.Dense) int {
	k, _ := centroids.Dims()
	nearest := 0
	minDist := math.Inf(1)

	for i := 0; i < k; i++ {
		dist := cosineDistance(point, centroids.RawRowView(i))
		if dist < minDist {
			minDist = dist
			nearest = i
		}
	}

	return nearest
}

// cosineDistance is 1 - cosine similarity, so smaller is more similar.
// Zero-magnitude vectors are maximally distant.
func cosineDistance(a, b []float64) float64 {
	var dot, normA, normB float64

	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 1
	}

	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
