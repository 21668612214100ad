package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/satriahrh/notetaker/domain"
)

// Provider selects the text-generation backend
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
	ProviderMock   Provider = "mock"
)

const (
	defaultMaxOutputTokens = 8192
	defaultTimeout         = 60 * time.Second
	defaultMaxRetries      = 3
	defaultRetryDelay      = time.Second
	defaultKeywordLimit    = 10
	defaultAddr            = ":8080"
	defaultTokenTTL        = 24 * time.Hour
)

type LLMConfig struct {
	Provider        Provider      `yaml:"provider"`
	Model           string        `yaml:"model"`
	APIKey          string        `yaml:"api_key"`
	BaseURL         string        `yaml:"base_url"`
	MaxOutputTokens int32         `yaml:"max_output_tokens"`
	Timeout         time.Duration `yaml:"timeout"`
}

type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries"`
	Delay      time.Duration `yaml:"delay"`
}

type PipelineConfig struct {
	IncludeSOAP  bool `yaml:"include_soap"`
	Parallel     bool `yaml:"parallel"`
	KeywordLimit int  `yaml:"keyword_limit"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// JWTSecret signs and verifies API bearer tokens. Empty disables API auth.
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Config is the process-wide configuration. It is read-only once loaded.
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Retry    RetryConfig    `yaml:"retry"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

func Default() Config {
	var cfg Config
	cfg.LLM.Provider = ProviderGemini
	cfg.LLM.MaxOutputTokens = defaultMaxOutputTokens
	cfg.LLM.Timeout = defaultTimeout
	cfg.Retry.MaxRetries = defaultMaxRetries
	cfg.Retry.Delay = defaultRetryDelay
	cfg.Pipeline.IncludeSOAP = true
	cfg.Pipeline.Parallel = true
	cfg.Pipeline.KeywordLimit = defaultKeywordLimit
	cfg.Server.Addr = defaultAddr
	cfg.Server.TokenTTL = defaultTokenTTL
	cfg.Log.Level = "info"
	return cfg
}

// Load layers defaults, the optional YAML file at path, the environment and
// finally the overrides, then validates the result. A missing file is not an
// error. The API key falls back to the provider's environment variable once
// the provider is settled.
func Load(path string, overrides ...func(*Config)) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, err
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	for _, override := range overrides {
		override(&cfg)
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv(apiKeyEnv(cfg.LLM.Provider))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the settings needed before any processing starts
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
		if c.LLM.APIKey == "" {
			return &domain.ConfigurationError{
				Field:   "llm.api_key",
				Message: "API key not found; set " + apiKeyEnv(c.LLM.Provider) + " or llm.api_key",
			}
		}
	case ProviderOllama, ProviderMock:
	default:
		return &domain.ConfigurationError{
			Field:   "llm.provider",
			Message: "unsupported provider " + strconv.Quote(string(c.LLM.Provider)) + " (supported: gemini, openai, ollama, mock)",
		}
	}

	if c.Retry.MaxRetries < 1 {
		return &domain.ConfigurationError{Field: "retry.max_retries", Message: "must be at least 1"}
	}
	if c.Retry.Delay < 0 {
		return &domain.ConfigurationError{Field: "retry.delay", Message: "must not be negative"}
	}
	if c.Server.TokenTTL <= 0 {
		return &domain.ConfigurationError{Field: "server.token_ttl", Message: "must be positive"}
	}
	if c.Pipeline.KeywordLimit < 0 {
		return &domain.ConfigurationError{Field: "pipeline.keyword_limit", Message: "must not be negative"}
	}
	return nil
}

func apiKeyEnv(p Provider) string {
	if p == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("NOTETAKER_PROVIDER"); v != "" {
		cfg.LLM.Provider = Provider(strings.ToLower(v))
	}
	if v := os.Getenv("NOTETAKER_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("NOTETAKER_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("NOTETAKER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("NOTETAKER_TIMEOUT", v, "a duration such as 30s")
		}
		cfg.LLM.Timeout = d
	}
	if v := os.Getenv("NOTETAKER_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("NOTETAKER_MAX_RETRIES", v, "an integer")
		}
		cfg.Retry.MaxRetries = n
	}
	if v := os.Getenv("NOTETAKER_RETRY_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("NOTETAKER_RETRY_DELAY", v, "a duration such as 1s")
		}
		cfg.Retry.Delay = d
	}
	if v := os.Getenv("NOTETAKER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
	if v := os.Getenv("NOTETAKER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("NOTETAKER_JWT_SECRET"); v != "" {
		cfg.Server.JWTSecret = v
	}
	if v := os.Getenv("NOTETAKER_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("NOTETAKER_TOKEN_TTL", v, "a duration such as 24h")
		}
		cfg.Server.TokenTTL = d
	}
	return nil
}

func envError(name, value, want string) error {
	return &domain.ConfigurationError{
		Field:   name,
		Message: "invalid value " + strconv.Quote(value) + ", expected " + want,
	}
}
