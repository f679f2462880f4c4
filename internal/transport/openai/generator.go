// Package openai adapts OpenAI-compatible chat completion APIs to domain.Generator.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storeassist/internal/domain"
	"github.com/kailas-cloud/storeassist/internal/metrics"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.GPT4oMini

// Generator is a generation backend using the OpenAI-compatible chat API.
type Generator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	user        string
	provider    string
	logger      *zap.Logger
}

// Config holds the generation provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	User        string
	Provider    string
	Logger      *zap.Logger
}

// NewGenerator creates an OpenAI-compatible generation backend.
func NewGenerator(cfg *Config) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		user:        cfg.User,
		provider:    cfg.Provider,
		logger:      logger,
	}
}

// Generate implements domain.Generator with one chat completion call.
// The context block travels in the user message after the user directive.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	chatReq := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemDirective},
			{Role: openai.ChatMessageRoleUser, Content: userMessage(req)},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		User:        g.user,
	}

	resp, err := g.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			metrics.GenerationErrorsTotal.WithLabelValues(g.provider, g.model, "canceled").Inc()
			return domain.GenerationResult{}, fmt.Errorf("chat completion: %w", ctxErr)
		}
		metrics.GenerationErrorsTotal.WithLabelValues(g.provider, g.model, "api_error").Inc()
		return domain.GenerationResult{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.GenerationErrorsTotal.WithLabelValues(g.provider, g.model, "empty_response").Inc()
		return domain.GenerationResult{}, fmt.Errorf("empty completion response: %w", domain.ErrGeneration)
	}

	if reason := resp.Choices[0].FinishReason; reason == openai.FinishReasonLength {
		g.logger.Warn("Completion truncated by max_tokens",
			zap.String("provider", g.provider),
			zap.String("model", g.model),
			zap.Int("max_tokens", g.maxTokens),
		)
	}

	return domain.GenerationResult{
		Answer:           resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func userMessage(req domain.GenerationRequest) string {
	if req.Context == "" {
		return req.UserDirective
	}
	return req.UserDirective + "\n\nContext:\n" + req.Context
}

// parseAPIError extracts a human-readable error from the API response.
// All errors wrap domain.ErrGeneration for the 502 mapping; HTTP 429 maps to the quota error.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		wrap := wrapFor(reqErr.HTTPStatusCode)
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("generation API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("generation API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("generation API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrapFor(apiErr.HTTPStatusCode))
	}

	return fmt.Errorf("generation request failed: %w: %w", domain.ErrGeneration, err)
}

func wrapFor(status int) error {
	if status == http.StatusTooManyRequests {
		return domain.ErrGenerationQuotaExceeded
	}
	return domain.ErrGeneration
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
