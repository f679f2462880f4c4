package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/storeassist/internal/domain"
)

// simulatedSummaryWords is how much of the context the stand-in echoes back.
const simulatedSummaryWords = 60

// Simulated is a deterministic offline generator. It echoes the user
// directive and the head of the context in a fixed-shape answer.
type Simulated struct{}

// NewSimulated creates the stand-in generator.
func NewSimulated() *Simulated { return &Simulated{} }

// Generate builds the canned answer. It never returns an empty string.
func (s *Simulated) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.GenerationResult{}, fmt.Errorf("simulated generate: %w", err)
	}

	words := strings.Split(req.Context, " ")
	if len(words) > simulatedSummaryWords {
		words = words[:simulatedSummaryWords]
	}
	summary := strings.Join(words, " ")

	answer := fmt.Sprintf(
		"[Sim-LLM] Q: %s\n\nContext:\n%s\n\nAnswer: Based on the inventory, here are 3 relevant options.",
		req.UserDirective, summary,
	)

	prompt := countWords(req.SystemDirective) + countWords(req.UserDirective) + countWords(req.Context)
	completion := countWords(answer)
	return domain.GenerationResult{
		Answer:           answer,
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}, nil
}

// HealthCheck always succeeds.
func (s *Simulated) HealthCheck(_ context.Context) error { return nil }

// countWords approximates token usage for budget accounting.
func countWords(s string) int { return len(strings.Fields(s)) }
