// Package vector holds the text vectorizer and the similarity metric used by ranking.
package vector

import (
	"math"

	"github.com/kailas-cloud/storeassist/internal/domain"
)

// cosineEpsilon keeps Cosine finite for all-zero vectors.
const cosineEpsilon = 1e-9

// Vector is a fixed-length embedding.
type Vector []float32

// Vectorizer turns text into a fixed-dimension vector.
// Implementations must be deterministic and free of side effects.
type Vectorizer interface {
	Embed(text string) Vector
	Dimensions() int
}

// Norm returns the Euclidean norm of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Cosine returns dot(a, b) / (|a|*|b| + eps).
// Fails with domain.ErrDimensionMismatch when the lengths differ.
func Cosine(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, domain.NewDimensionMismatch(len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	return dot / (math.Sqrt(na)*math.Sqrt(nb) + cosineEpsilon), nil
}
