package domain

import "context"

// Generator is the text completion capability consumed by the pipeline.
// Implementations must honor ctx cancellation and never return a partial answer.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}

// HealthChecker verifies generation backend availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// GenerationRequest is the directive pair plus the rendered context block.
type GenerationRequest struct {
	SystemDirective string
	UserDirective   string
	Context         string
}

// GenerationResult carries the answer and token usage through the decorator chain.
type GenerationResult struct {
	Answer           string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type generationUsageKey struct{}

// GenerationUsage collects token usage for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the service;
// the generator decorator writes to it; the handler reads it for response headers.
type GenerationUsage struct {
	TotalTokens int
	Used        bool
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *GenerationUsage) {
	u := &GenerationUsage{}
	return context.WithValue(ctx, generationUsageKey{}, u), u
}

// UsageContext returns ctx with its existing usage collector, installing a new one when absent.
func UsageContext(ctx context.Context) (context.Context, *GenerationUsage) {
	if u := UsageFromContext(ctx); u != nil {
		return ctx, u
	}
	return NewContextWithUsage(ctx)
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *GenerationUsage {
	u, _ := ctx.Value(generationUsageKey{}).(*GenerationUsage)
	return u
}

// AddTokens records consumed tokens. Safe on a nil receiver.
func (u *GenerationUsage) AddTokens(n int) {
	if u != nil {
		u.TotalTokens += n
		u.Used = true
	}
}
