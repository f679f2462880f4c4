package storeassist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/storeassist/internal/db"
	dbRedis "github.com/kailas-cloud/storeassist/internal/db/redis"
	"github.com/kailas-cloud/storeassist/internal/domain"
	"github.com/kailas-cloud/storeassist/internal/domain/product"
	"github.com/kailas-cloud/storeassist/internal/domain/profile"
	"github.com/kailas-cloud/storeassist/internal/domain/vector"
	logpkg "github.com/kailas-cloud/storeassist/internal/logger"
	productrepo "github.com/kailas-cloud/storeassist/internal/repository/product"
	chatuc "github.com/kailas-cloud/storeassist/internal/usecase/chat"
	generationuc "github.com/kailas-cloud/storeassist/internal/usecase/generation"
	promptuc "github.com/kailas-cloud/storeassist/internal/usecase/prompt"
	rankuc "github.com/kailas-cloud/storeassist/internal/usecase/rank"
	recommenduc "github.com/kailas-cloud/storeassist/internal/usecase/recommend"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped out in tests.
type chatUseCase interface {
	Ask(ctx context.Context, query string, p profile.Profile, mode string) (chatuc.Result, error)
}

type recommendUseCase interface {
	Similar(ctx context.Context, term string, k int) ([]product.Product, error)
}

// Client is the storeassist entry point. It is safe for concurrent use.
type Client struct {
	store        db.Store
	chatSvc      chatUseCase
	recommendSvc recommendUseCase
	obs          *observer
}

// New creates a Client. Exactly one candidate source is required:
// WithRedis or WithCandidateStore. The provided context bounds the
// initial readiness check and index creation.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	def := domain.DefaultRAGConfig()
	cfg := &clientConfig{
		keyPrefix:             domain.KeyPrefix,
		dimensions:            def.Dimensions,
		topK:                  def.TopK,
		candidateLimit:        def.CandidateLimit,
		similarCandidateLimit: def.SimilarCandidateLimit,
		defaultMode:           def.DefaultMode,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	switch {
	case len(cfg.addrs) == 0 && cfg.candidates == nil:
		return nil, errors.New("storeassist: candidate source required (use WithRedis or WithCandidateStore)")
	case len(cfg.addrs) > 0 && cfg.candidates != nil:
		return nil, errors.New("storeassist: WithRedis and WithCandidateStore are mutually exclusive")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	if cfg.candidates != nil {
		return wireClient(nil, &candidateAdapter{inner: cfg.candidates}, cfg, obs)
	}

	store, err := dbRedis.Open(ctx, dbRedis.Config{
		Addrs:        cfg.addrs,
		Password:     cfg.password,
		ReadyTimeout: defaultReadinessTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("storeassist: open redis store: %w", err)
	}

	repo := productrepo.New(store, cfg.keyPrefix)
	if err := repo.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("storeassist: ensure product index: %w", err)
	}

	return wireClient(store, repo, cfg, obs)
}

func wireClient(store db.Store, candidates chatuc.CandidateSource, cfg *clientConfig, obs *observer) (*Client, error) {
	mapping := vector.BucketUniform
	if cfg.legacyBuckets {
		mapping = vector.BucketLegacy
	}
	vec, err := vector.NewHashing(cfg.dimensions, vector.WithBucketMapping(mapping))
	if err != nil {
		closeStore(store)
		return nil, fmt.Errorf("storeassist: %w", err)
	}

	modes := make(map[string]promptuc.Templates, len(cfg.prompts))
	for mode, t := range cfg.prompts {
		modes[mode] = promptuc.Templates{System: t.system, User: t.user}
	}
	composer, err := promptuc.NewComposer(modes, cfg.logger)
	if err != nil {
		closeStore(store)
		return nil, fmt.Errorf("storeassist: %w", err)
	}

	var gen domain.Generator = generationuc.NewSimulated()
	if cfg.generator != nil {
		gen = &generatorAdapter{inner: cfg.generator}
	}

	ranker := rankuc.New(vec)
	chatSvc := chatuc.New(candidates, ranker, composer, gen, domain.RAGConfig{
		Dimensions:            cfg.dimensions,
		TopK:                  cfg.topK,
		CandidateLimit:        cfg.candidateLimit,
		SimilarCandidateLimit: cfg.similarCandidateLimit,
		DefaultMode:           cfg.defaultMode,
	})
	recommendSvc := recommenduc.New(candidates, ranker, cfg.similarCandidateLimit, cfg.topK)

	return &Client{
		store:        store,
		chatSvc:      chatSvc,
		recommendSvc: recommendSvc,
		obs:          obs,
	}, nil
}

func closeStore(store db.Store) {
	if store != nil {
		store.Close()
	}
}

// Close releases all resources.
func (c *Client) Close() {
	closeStore(c.store)
}

// Ping checks database connectivity. It is a no-op with a custom candidate store.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Ask answers question for the given profile using the templates of mode.
// An empty mode uses the default mode.
func (c *Client) Ask(ctx context.Context, question string, p Profile, mode string) (_ Answer, err error) {
	defer func(start time.Time) { c.obs.observe("ask", start, err) }(time.Now())

	if c.obs != nil && c.obs.logger != nil {
		ctx = logpkg.ContextWithLogger(ctx, c.obs.logger)
	}
	res, err := c.chatSvc.Ask(ctx, question, p.toInternal(), mode)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}

	sources := make([]Source, len(res.Sources))
	for i, s := range res.Sources {
		sources[i] = Source{Product: fromInternalProduct(s.Product()), Score: s.Score()}
	}
	return Answer{Text: res.Answer, Sources: sources}, nil
}

// Similar returns up to k products closest to term, best first. k <= 0 uses the top-K setting.
func (c *Client) Similar(ctx context.Context, term string, k int) (_ []Product, err error) {
	defer func(start time.Time) { c.obs.observe("similar", start, err) }(time.Now())

	items, err := c.recommendSvc.Similar(ctx, term, k)
	if err != nil {
		return nil, fmt.Errorf("similar: %w", err)
	}
	out := make([]Product, len(items))
	for i, p := range items {
		out[i] = fromInternalProduct(p)
	}
	return out, nil
}
