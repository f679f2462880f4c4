package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/storeassist/internal/domain"
	"github.com/kailas-cloud/storeassist/internal/domain/vector"
)

// Config holds the storeassist API configuration.
type Config struct {
	HTTP       HTTPConfig              `yaml:"http"`
	Database   DatabaseConfig          `yaml:"database"`
	Auth       AuthConfig              `yaml:"auth"`
	RAG        RAGConfig               `yaml:"rag"`
	Prompts    map[string]PromptConfig `yaml:"prompts"`
	Generation GenerationConfig        `yaml:"generation"`
	Queue      QueueConfig             `yaml:"queue"`
	Storage    StorageConfig           `yaml:"storage"`
	Logging    LoggingConfig           `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// RAGConfig holds retrieval pipeline settings.
type RAGConfig struct {
	EmbeddingDimensions   int    `yaml:"embedding_dimensions"`
	TopK                  int    `yaml:"top_k"`
	CandidateLimit        int    `yaml:"candidate_limit"`
	SimilarCandidateLimit int    `yaml:"similar_candidate_limit"`
	BucketMapping         string `yaml:"bucket_mapping"` // uniform | legacy
	DefaultMode           string `yaml:"default_mode"`
}

// PromptConfig holds the directive templates for one mode. Either half may be empty.
type PromptConfig struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// GenerationConfig holds completion backend settings.
type GenerationConfig struct {
	Provider    string       `yaml:"provider"` // simulated | openai
	APIKey      string       `yaml:"api_key"`
	BaseURL     string       `yaml:"base_url"`
	Model       string       `yaml:"model"`
	MaxTokens   int          `yaml:"max_tokens"`
	Temperature float32      `yaml:"temperature"`
	TimeoutSec  int          `yaml:"timeout_sec"`
	Budget      BudgetConfig `yaml:"budget"`
}

// QueueConfig holds backfill stream settings.
type QueueConfig struct {
	BackfillStream string `yaml:"backfill_stream"`
	MaxLen         int64  `yaml:"max_len"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// LoadDotEnv loads variables from .env files if present. Existing variables win.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if fileExists(f) {
			_ = godotenv.Load(f)
		}
	}
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}

	def := domain.DefaultRAGConfig()
	if c.RAG.EmbeddingDimensions <= 0 {
		c.RAG.EmbeddingDimensions = def.Dimensions
	}
	if c.RAG.TopK <= 0 {
		c.RAG.TopK = def.TopK
	}
	if c.RAG.CandidateLimit <= 0 {
		c.RAG.CandidateLimit = def.CandidateLimit
	}
	if c.RAG.SimilarCandidateLimit <= 0 {
		c.RAG.SimilarCandidateLimit = def.SimilarCandidateLimit
	}
	if c.RAG.BucketMapping == "" {
		c.RAG.BucketMapping = string(vector.BucketUniform)
	}
	if c.RAG.DefaultMode == "" {
		c.RAG.DefaultMode = def.DefaultMode
	}

	if c.Generation.Provider == "" {
		c.Generation.Provider = "simulated"
	}
	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = 30
	}

	if c.Queue.BackfillStream == "" {
		c.Queue.BackfillStream = "storeassist:backfill"
	}
	if c.Queue.MaxLen <= 0 {
		c.Queue.MaxLen = 10000
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = domain.KeyPrefix
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if _, err := vector.ParseBucketMapping(c.RAG.BucketMapping); err != nil {
		return fmt.Errorf("rag.bucket_mapping: %w", err)
	}
	switch c.Generation.Provider {
	case "simulated":
	case "openai":
		if c.Generation.APIKey == "" {
			return fmt.Errorf("generation.api_key is required for provider %q", c.Generation.Provider)
		}
	default:
		return fmt.Errorf("generation.provider must be \"simulated\" or \"openai\", got %q", c.Generation.Provider)
	}
	switch c.Generation.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf(
			"generation.budget.action must be \"warn\" or \"reject\", got %q",
			c.Generation.Budget.Action,
		)
	}
	if c.Generation.Budget.DailyTokenLimit < 0 || c.Generation.Budget.MonthlyTokenLimit < 0 {
		return fmt.Errorf("generation.budget limits must not be negative")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
