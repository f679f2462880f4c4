package recommend

import (
	"context"

	"github.com/kailas-cloud/storeassist/internal/domain/product"
	"github.com/kailas-cloud/storeassist/internal/domain/ranking"
)

// CandidateSource fetches the candidate pool for a term.
type CandidateSource interface {
	Search(ctx context.Context, query string, limit int) ([]product.Product, error)
}

// Ranker re-scores candidates against the term.
type Ranker interface {
	Rank(ctx context.Context, query string, candidates []product.Product, k int) ([]ranking.Scored, error)
}
