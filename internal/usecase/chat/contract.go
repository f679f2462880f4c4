package chat

import (
	"context"

	"github.com/kailas-cloud/storeassist/internal/domain/product"
	"github.com/kailas-cloud/storeassist/internal/domain/profile"
	"github.com/kailas-cloud/storeassist/internal/domain/prompt"
	"github.com/kailas-cloud/storeassist/internal/domain/ranking"
)

// CandidateSource fetches the candidate pool for a query.
type CandidateSource interface {
	Search(ctx context.Context, query string, limit int) ([]product.Product, error)
}

// Ranker re-scores candidates against the query.
type Ranker interface {
	Rank(ctx context.Context, query string, candidates []product.Product, k int) ([]ranking.Scored, error)
}

// Composer builds the directive pair for a profile, query, and mode.
type Composer interface {
	Compose(p profile.Profile, query, mode string) prompt.Pair
}
