// Package recommend suggests products similar to a search term.
package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/storeassist/internal/domain"
	"github.com/kailas-cloud/storeassist/internal/domain/product"
)

// Service ranks a wide candidate pool and keeps the closest items.
type Service struct {
	candidates CandidateSource
	ranker     Ranker
	poolSize   int
	topK       int
}

// New creates a recommendation service. Non-positive sizes fall back to domain defaults.
func New(candidates CandidateSource, ranker Ranker, poolSize, topK int) *Service {
	def := domain.DefaultRAGConfig()
	if poolSize <= 0 {
		poolSize = def.SimilarCandidateLimit
	}
	if topK <= 0 {
		topK = def.TopK
	}
	return &Service{candidates: candidates, ranker: ranker, poolSize: poolSize, topK: topK}
}

// Similar returns up to k products closest to term, best first. k <= 0 uses the default.
func (s *Service) Similar(ctx context.Context, term string, k int) ([]product.Product, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("%w: term is required", domain.ErrInvalidRequest)
	}
	if k <= 0 {
		k = s.topK
	}

	pool, err := s.candidates.Search(ctx, term, s.poolSize)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("fetch candidates: %w", ctxErr)
		}
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}
	ranked, err := s.ranker.Rank(ctx, term, pool, k)
	if err != nil {
		return nil, fmt.Errorf("rank candidates: %w", err)
	}

	out := make([]product.Product, len(ranked))
	for i, r := range ranked {
		out[i] = r.Product()
	}
	return out, nil
}
