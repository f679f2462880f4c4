// Package rank orders retrieval candidates by cosine similarity to a query.
package rank

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kailas-cloud/storeassist/internal/domain/product"
	"github.com/kailas-cloud/storeassist/internal/domain/ranking"
	"github.com/kailas-cloud/storeassist/internal/domain/vector"
	"github.com/kailas-cloud/storeassist/internal/metrics"
)

// Ranker scores candidates against a query and keeps the top k.
type Ranker struct {
	vec Vectorizer
}

// New creates a ranker over the given vectorizer.
func New(vec Vectorizer) *Ranker {
	return &Ranker{vec: vec}
}

// Rank returns at most k candidates ordered by descending similarity to query.
// Ties keep input order. k <= 0 or no candidates yields an empty slice.
func (r *Ranker) Rank(
	ctx context.Context, query string, candidates []product.Product, k int,
) ([]ranking.Scored, error) {
	if k <= 0 || len(candidates) == 0 {
		return []ranking.Scored{}, nil
	}

	start := time.Now()
	defer func() {
		metrics.RankingCandidates.Observe(float64(len(candidates)))
		metrics.RankingDuration.Observe(time.Since(start).Seconds())
	}()

	q := r.vec.Embed(query)

	scored := make([]ranking.Scored, 0, len(candidates))
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("rank: %w", err)
		}
		s, err := vector.Cosine(q, r.vec.Embed(candidates[i].RepresentationText()))
		if err != nil {
			return nil, fmt.Errorf("score candidate %s: %w", candidates[i].ID(), err)
		}
		scored = append(scored, ranking.NewScored(candidates[i], s, i))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return ranking.Less(scored[i], scored[j])
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}
