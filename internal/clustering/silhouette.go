package clustering

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// silhouetteScore computes the mean silhouette coefficient of the partition
// using cosine distance. For each point, a is the mean distance to its own
// cluster and b the smallest mean distance to any other cluster; the
// coefficient is (b-a)/max(a,b). Returns ok=false for partitions where the
// score is undefined (fewer than two non-empty clusters), which callers treat
// as a skipped candidate rather than a failure.
func silhouetteScore(data *mat.Dense, labels []int, k int) (float64, bool) {
	if k < 2 {
		return 0, false
	}

	n, _ := data.Dims()

	clusterSizes := make([]int, k)
	for _, label := range labels {
		clusterSizes[label]++
	}

	nonEmpty := 0

	for _, size := range clusterSizes {
		if size > 0 {
			nonEmpty++
		}
	}

	if nonEmpty < 2 {
		return 0, false
	}

	var total float64

	counted := 0

	for i := 0; i < n; i++ {
		own := labels[i]

		// A point alone in its cluster has coefficient 0.
		if clusterSizes[own] == 1 {
			counted++

			continue
		}

		// Mean distance per cluster from point i.
		sums := make([]float64, k)

		for j := 0; j < n; j++ {
			if i == j {
				continue
			}

			sums[labels[j]] += cosineDistance(data.RawRowView(i), data.RawRowView(j))
		}

		a := sums[own] / float64(clusterSizes[own]-1)

		b := math.Inf(1)

		for cluster := 0; cluster < k; cluster++ {
			if cluster == own || clusterSizes[cluster] == 0 {
				continue
			}

			avg := sums[cluster] / float64(clusterSizes[cluster])
			if avg < b {
				b = avg
			}
		}

		if maxAB := math.Max(a, b); maxAB > 0 && !math.IsInf(b, 1) {
			total += (b - a) / maxAB
			counted++
		}
	}

	if counted == 0 {
		return 0, false
	}

	return total / float64(counted), true
}
