// Package similarity implements embedding-based near-duplicate detection with
// a two-tier search strategy: a vector-index backend first, brute-force
// in-memory scan as fallback.
package similarity

import "math"

// Cosine returns the cosine similarity of a and b in [-1, 1]. Vectors of
// different lengths (mixed embedding-model generations in the corpus) and
// zero-magnitude vectors yield 0 rather than an error.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64

	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
