// Package generation holds Generator implementations and decorators that are
// independent of any network backend.
package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storeassist/internal/domain"
	"github.com/kailas-cloud/storeassist/internal/metrics"
)

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	Daily() BudgetSnapshot
	Monthly() BudgetSnapshot
}

// Instrumented wraps a Generator with budget enforcement, metrics, and logging.
type Instrumented struct {
	inner    domain.Generator
	provider string
	model    string
	budget   BudgetChecker
	logger   *zap.Logger
}

// NewInstrumented wraps a generator. budget may be nil (unlimited).
func NewInstrumented(
	inner domain.Generator, provider, model string,
	budget BudgetChecker, logger *zap.Logger,
) *Instrumented {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Instrumented{
		inner:    inner,
		provider: provider,
		model:    model,
		budget:   budget,
		logger:   logger,
	}
}

// Generate checks the budget, delegates, and records usage.
func (g *Instrumented) Generate(
	ctx context.Context, req domain.GenerationRequest,
) (domain.GenerationResult, error) {
	if g.budget != nil {
		if err := g.budget.Check(ctx); err != nil {
			g.logger.Error("Generation budget exceeded",
				zap.String("provider", g.provider),
				zap.String("model", g.model),
				zap.Error(err),
			)
			metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "rejected").Inc()
			return domain.GenerationResult{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()
	result, err := g.inner.Generate(ctx, req)
	duration := time.Since(start)

	metrics.GenerationRequestDuration.WithLabelValues(g.provider, g.model).Observe(duration.Seconds())

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, statusOf(err)).Inc()
		g.logger.Error("Generation request failed",
			zap.String("provider", g.provider),
			zap.String("model", g.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.GenerationResult{}, fmt.Errorf("generate: %w", err)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "success").Inc()
	metrics.GenerationTokensTotal.WithLabelValues(g.provider, g.model, "prompt").Add(float64(result.PromptTokens))
	metrics.GenerationTokensTotal.WithLabelValues(g.provider, g.model, "completion").Add(float64(result.CompletionTokens))

	domain.UsageFromContext(ctx).AddTokens(result.TotalTokens)

	if g.budget != nil && result.TotalTokens > 0 {
		g.budget.Record(int64(result.TotalTokens))
		remaining := metrics.GenerationBudgetTokensRemaining
		remaining.WithLabelValues(g.provider, "daily").Set(float64(g.budget.Daily().Remaining))
		remaining.WithLabelValues(g.provider, "monthly").Set(float64(g.budget.Monthly().Remaining))
	}

	g.logger.Debug("Generation request completed",
		zap.String("provider", g.provider),
		zap.String("model", g.model),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
		zap.Int("answer_len", len(result.Answer)),
	)

	return result, nil
}

// HealthCheck forwards to the inner generator when it supports probing.
func (g *Instrumented) HealthCheck(ctx context.Context) error {
	if hc, ok := g.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func statusOf(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
