// Package chat answers catalog questions: fetch candidates, rank them,
// compose directives, and generate an answer.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storeassist/internal/domain"
	"github.com/kailas-cloud/storeassist/internal/domain/profile"
	"github.com/kailas-cloud/storeassist/internal/domain/ranking"
	"github.com/kailas-cloud/storeassist/internal/logger"
	"github.com/kailas-cloud/storeassist/internal/metrics"
)

// contextDivider separates entries in the rendered context block.
const contextDivider = "\n---\n"

// Result is the generated answer plus the ranked items it was grounded on.
type Result struct {
	Answer  string
	Sources []ranking.Scored
}

// Service is the per-request retrieval-augmented answer pipeline.
type Service struct {
	candidates CandidateSource
	ranker     Ranker
	composer   Composer
	generator  domain.Generator
	cfg        domain.RAGConfig
}

// New creates a chat service. Zero config values fall back to domain.DefaultRAGConfig.
func New(
	candidates CandidateSource, ranker Ranker, composer Composer,
	generator domain.Generator, cfg domain.RAGConfig,
) *Service {
	def := domain.DefaultRAGConfig()
	if cfg.TopK <= 0 {
		cfg.TopK = def.TopK
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = def.CandidateLimit
	}
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = def.DefaultMode
	}
	return &Service{
		candidates: candidates,
		ranker:     ranker,
		composer:   composer,
		generator:  generator,
		cfg:        cfg,
	}
}

// Ask answers query for the given profile. An empty mode uses the configured default.
// Cancellation at any step returns the context error and no answer.
func (s *Service) Ask(ctx context.Context, query string, p profile.Profile, mode string) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, fmt.Errorf("%w: prompt is required", domain.ErrInvalidRequest)
	}
	if mode == "" {
		mode = s.cfg.DefaultMode
	}

	res, err := s.ask(ctx, query, p, mode)
	metrics.ChatRequestsTotal.WithLabelValues(mode, outcome(err)).Inc()
	return res, err
}

func (s *Service) ask(ctx context.Context, query string, p profile.Profile, mode string) (Result, error) {
	log := logger.FromContext(ctx)

	items, err := s.candidates.Search(ctx, query, s.cfg.CandidateLimit)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("fetch candidates: %w", ctxErr)
		}
		return Result{}, fmt.Errorf("fetch candidates: %w", err)
	}

	ranked, err := s.ranker.Rank(ctx, query, items, s.cfg.TopK)
	if err != nil {
		return Result{}, fmt.Errorf("rank candidates: %w", err)
	}

	pair := s.composer.Compose(p, query, mode)
	block := BuildContext(ranked)

	start := time.Now()
	gen, err := s.generator.Generate(ctx, domain.GenerationRequest{
		SystemDirective: pair.System(),
		UserDirective:   pair.User(),
		Context:         block,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("generate: %w", ctxErr)
		}
		if !errors.Is(err, domain.ErrGeneration) {
			err = fmt.Errorf("%w: %w", domain.ErrGeneration, err)
		}
		return Result{}, fmt.Errorf("generate: %w", err)
	}

	log.Debug("Chat answered",
		zap.String("mode", mode),
		zap.Int("candidates", len(items)),
		zap.Int("ranked", len(ranked)),
		zap.Duration("generation", time.Since(start)),
	)

	return Result{Answer: gen.Answer, Sources: ranked}, nil
}

// BuildContext renders ranked items as "title | score\ndescription" entries
// joined by a divider. No items yields an empty string.
func BuildContext(ranked []ranking.Scored) string {
	if len(ranked) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ranked))
	for _, r := range ranked {
		p := r.Product()
		parts = append(parts, fmt.Sprintf("%s | %.2f\n%s", p.Title(), r.Score(), p.Description()))
	}
	return strings.Join(parts, contextDivider)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
