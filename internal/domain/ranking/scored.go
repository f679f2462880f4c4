// Package ranking holds ranked retrieval results.
package ranking

import "github.com/kailas-cloud/storeassist/internal/domain/product"

// Scored is a candidate paired with its similarity score and input position.
type Scored struct {
	product  product.Product
	score    float64
	position int
}

// NewScored creates a scored candidate.
func NewScored(p product.Product, score float64, position int) Scored {
	return Scored{product: p, score: score, position: position}
}

// Product returns the candidate.
func (s Scored) Product() product.Product { return s.product }

// Score returns the similarity score, nominally in [-1, 1].
func (s Scored) Score() float64 { return s.score }

// Position returns the candidate index in the ranker input.
func (s Scored) Position() int { return s.position }

// Less orders by descending score, then ascending input position.
func Less(a, b Scored) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.position < b.position
}
