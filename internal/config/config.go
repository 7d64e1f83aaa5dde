package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// CorpusConfig locates the bundled documents.
type CorpusConfig struct {
	Dir string `yaml:"dir"`
}

// ChunkerConfig configures how document text is split into chunks.
type ChunkerConfig struct {
	MaxWordsPerChunk int `yaml:"max_words_per_chunk"`
}

// RetrievalConfig configures document selection.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
	// MinScore rejects winners whose aggregate relevance is below it. Zero disables the check.
	MinScore float64 `yaml:"min_score"`
}

// RerankerConfig selects the optional similarity-refinement service.
type RerankerConfig struct {
	Type        string `yaml:"type"`
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// GeneratorConfig selects and configures the language-generation backend.
type GeneratorConfig struct {
	Provider      string   `yaml:"provider"`
	BaseURL       string   `yaml:"base_url"`
	APIKeyEnv     string   `yaml:"api_key_env"`
	Models        []string `yaml:"models"`
	TimeoutSecs   int      `yaml:"timeout_secs"`
	BackoffMillis int      `yaml:"backoff_ms"`
	FallbackChars int      `yaml:"fallback_chars"`
	MaxTokens     int      `yaml:"max_tokens"`
}

// RedisConfig contains connection details for the shared extraction cache.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
	TTLSecs   int    `yaml:"ttl_secs"`
}

// CacheConfig selects the memoization store.
type CacheConfig struct {
	Type  string       `yaml:"type"`
	Redis *RedisConfig `yaml:"redis,omitempty"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Engine string `yaml:"engine"`
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus    CorpusConfig    `yaml:"corpus"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Reranker  RerankerConfig  `yaml:"reranker"`
	Generator GeneratorConfig `yaml:"generator"`
	Cache     CacheConfig     `yaml:"cache"`
	Log       LogConfig       `yaml:"log"`
}

// Timeout returns the per-call generation timeout.
func (g GeneratorConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSecs) * time.Second
}

// Backoff returns the pause between two model attempts.
func (g GeneratorConfig) Backoff() time.Duration {
	return time.Duration(g.BackoffMillis) * time.Millisecond
}

// APIKey reads the generation credential from the configured environment variable.
func (g GeneratorConfig) APIKey() string { return lookupKey(g.APIKeyEnv) }

// Timeout returns the per-chunk refinement timeout.
func (r RerankerConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSecs) * time.Second
}

// APIKey reads the refinement credential from the configured environment variable.
func (r RerankerConfig) APIKey() string { return lookupKey(r.APIKeyEnv) }

// TTL returns how long cached entries live in Redis. Zero means no expiry.
func (r RedisConfig) TTL() time.Duration {
	return time.Duration(r.TTLSecs) * time.Second
}

// placeholder values shipped in sample configs count as unset
func lookupKey(env string) string {
	if env == "" {
		return ""
	}
	key := os.Getenv(env)
	switch key {
	case "your_groq_api_key_here", "your_api_ninjas_key_here", "changeme":
		return ""
	}
	return key
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docqa/config.yaml.
// If neither exists, it writes defaults to ~/.config/docqa/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the values the core relies on.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Chunker.MaxWordsPerChunk <= 0 {
		errs = append(errs, fmt.Errorf("chunker.max_words_per_chunk must be > 0, got %d", c.Chunker.MaxWordsPerChunk))
	}
	if c.Retrieval.TopK < 1 {
		errs = append(errs, fmt.Errorf("retrieval.top_k must be >= 1, got %d", c.Retrieval.TopK))
	}
	if c.Retrieval.MinScore < 0 {
		errs = append(errs, fmt.Errorf("retrieval.min_score must be >= 0, got %g", c.Retrieval.MinScore))
	}
	switch c.Generator.Provider {
	case "openai", "anthropic", "google":
	default:
		errs = append(errs, fmt.Errorf("unknown generator provider: %q", c.Generator.Provider))
	}
	switch c.Reranker.Type {
	case "none", "apininjas":
	default:
		errs = append(errs, fmt.Errorf("unknown reranker: %q", c.Reranker.Type))
	}
	switch c.Cache.Type {
	case "memory":
	case "redis":
		if c.Cache.Redis == nil || c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("cache.redis.addr is required for the redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache: %q", c.Cache.Type))
	}
	return errors.Join(errs...)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docqa", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig { return defaultConfig() }

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Corpus:    CorpusConfig{Dir: "pdfs"},
		Chunker:   ChunkerConfig{MaxWordsPerChunk: 500},
		Retrieval: RetrievalConfig{TopK: 3},
		Reranker:  RerankerConfig{Type: "apininjas"},
		Generator: GeneratorConfig{Provider: "openai"},
		Cache:     CacheConfig{Type: "memory"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Corpus.Dir == "" {
		cfg.Corpus.Dir = "pdfs"
	}
	if cfg.Chunker.MaxWordsPerChunk == 0 {
		cfg.Chunker.MaxWordsPerChunk = 500
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Reranker.Type == "" {
		cfg.Reranker.Type = "apininjas"
	}
	if cfg.Reranker.Type == "apininjas" {
		if cfg.Reranker.URL == "" {
			cfg.Reranker.URL = "https://api.api-ninjas.com/v1/textsimilarity"
		}
		if cfg.Reranker.APIKeyEnv == "" {
			cfg.Reranker.APIKeyEnv = "API_NINJAS_KEY"
		}
		if cfg.Reranker.TimeoutSecs == 0 {
			cfg.Reranker.TimeoutSecs = 8
		}
	}
	g := &cfg.Generator
	if g.Provider == "" {
		g.Provider = "openai"
	}
	switch g.Provider {
	case "openai":
		if g.BaseURL == "" {
			g.BaseURL = "https://api.groq.com/openai/v1"
		}
		if g.APIKeyEnv == "" {
			g.APIKeyEnv = "GROQ_API_KEY"
		}
		if g.Models == nil {
			g.Models = []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant"}
		}
	case "anthropic":
		if g.APIKeyEnv == "" {
			g.APIKeyEnv = "ANTHROPIC_API_KEY"
		}
		if g.Models == nil {
			g.Models = []string{"claude-sonnet-4-5", "claude-haiku-4-5"}
		}
	case "google":
		if g.APIKeyEnv == "" {
			g.APIKeyEnv = "GEMINI_API_KEY"
		}
		if g.Models == nil {
			g.Models = []string{"gemini-2.5-flash", "gemini-2.0-flash"}
		}
	}
	if g.TimeoutSecs == 0 {
		g.TimeoutSecs = 60
	}
	if g.BackoffMillis == 0 {
		g.BackoffMillis = 400
	}
	if g.FallbackChars == 0 {
		g.FallbackChars = 800
	}
	if g.MaxTokens == 0 {
		g.MaxTokens = 1024
	}
	if cfg.Cache.Type == "" {
		cfg.Cache.Type = "memory"
	}
	if cfg.Cache.Type == "redis" && cfg.Cache.Redis != nil && cfg.Cache.Redis.KeyPrefix == "" {
		cfg.Cache.Redis.KeyPrefix = "docqa:"
	}
	if cfg.Log.Engine == "" {
		cfg.Log.Engine = "slog"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "INFO"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}
