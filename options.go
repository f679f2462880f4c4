package storeassist

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type promptTemplates struct {
	system string
	user   string
}

type clientConfig struct {
	addrs     []string
	password  string
	keyPrefix string

	candidates CandidateStore
	generator  Generator

	dimensions            int
	topK                  int
	candidateLimit        int
	similarCandidateLimit int
	defaultMode           string
	legacyBuckets         bool
	prompts               map[string]promptTemplates

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithRedis serves candidates from the product index of a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix overrides the Redis key namespace. Default: "storeassist:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithCandidateStore serves candidates from s instead of Redis.
func WithCandidateStore(s CandidateStore) Option {
	return optionFunc(func(c *clientConfig) {
		c.candidates = s
	})
}

// WithGenerator sets the answer backend. Defaults to the offline simulated generator.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithDimensions sets the vectorizer dimensionality. Default: 256.
func WithDimensions(d int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = d
	})
}

// WithTopK sets how many ranked items ground an answer. Default: 5.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = k
	})
}

// WithCandidateLimit sets how many candidates are fetched per question. Default: 50.
func WithCandidateLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.candidateLimit = n
	})
}

// WithSimilarCandidateLimit sets the candidate pool for Similar. Default: 100.
func WithSimilarCandidateLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.similarCandidateLimit = n
	})
}

// WithDefaultMode sets the prompt mode used when Ask gets an empty mode. Default: "friendly".
func WithDefaultMode(mode string) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultMode = mode
	})
}

// WithPrompt registers templates for a mode. An empty half falls back to the built-in directive.
func WithPrompt(mode, system, user string) Option {
	return optionFunc(func(c *clientConfig) {
		if c.prompts == nil {
			c.prompts = make(map[string]promptTemplates)
		}
		c.prompts[mode] = promptTemplates{system: system, user: user}
	})
}

// WithLegacyBuckets reproduces the masked bucket mapping of older deployments.
// Only use it when scores must match vectors produced by those systems.
func WithLegacyBuckets() Option {
	return optionFunc(func(c *clientConfig) {
		c.legacyBuckets = true
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
