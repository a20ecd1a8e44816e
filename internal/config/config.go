package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/timemachine/internal/era"
)

const configPathEnv = "TIMEMACHINE_CONFIG"

// Config is built from defaults, then the optional YAML file named by
// TIMEMACHINE_CONFIG, then environment variables.
type Config struct {
	Port             int                   `yaml:"port"`
	LogLevel         string                `yaml:"log_level"`
	DatabaseURL      string                `yaml:"database_url"`
	SQLitePath       string                `yaml:"sqlite_path"`
	NatsURL          string                `yaml:"nats_url"`
	NatsToken        string                `yaml:"nats_token"`
	AnthropicAPIKey  string                `yaml:"anthropic_api_key"`
	Model            string                `yaml:"model"`
	MaxTokens        int                   `yaml:"max_tokens"`
	ModelTimeout     time.Duration         `yaml:"model_timeout"`
	WikipediaURL     string                `yaml:"wikipedia_url"`
	WikipediaTimeout time.Duration         `yaml:"wikipedia_timeout"`
	CORSOrigins      []string              `yaml:"cors_origins"`
	Images           map[era.Era]era.Image `yaml:"images"`
}

func defaultConfig() Config {
	return Config{
		Port:             8001,
		LogLevel:         "info",
		SQLitePath:       "timemachine.db",
		Model:            "claude-sonnet-4-20250514",
		MaxTokens:        4096,
		ModelTimeout:     90 * time.Second,
		WikipediaURL:     "https://en.wikipedia.org",
		WikipediaTimeout: 5 * time.Second,
		CORSOrigins:      []string{"*"},
	}
}

func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			slog.Warn("config file ignored, using defaults", "path", path, "error", err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.Port = envInt("TIMEMACHINE_PORT", cfg.Port)
	cfg.LogLevel = envStr("LOG_LEVEL", cfg.LogLevel)
	cfg.DatabaseURL = envStr("DATABASE_URL", cfg.DatabaseURL)
	cfg.SQLitePath = envStr("SQLITE_PATH", cfg.SQLitePath)
	cfg.NatsURL = envStr("NATS_URL", cfg.NatsURL)
	cfg.NatsToken = envStr("NATS_TOKEN", cfg.NatsToken)
	cfg.AnthropicAPIKey = envStr("ANTHROPIC_API_KEY", cfg.AnthropicAPIKey)
	cfg.Model = envStr("TIMEMACHINE_MODEL", cfg.Model)
	cfg.MaxTokens = envInt("MODEL_MAX_TOKENS", cfg.MaxTokens)
	cfg.ModelTimeout = envDuration("MODEL_TIMEOUT", cfg.ModelTimeout)
	cfg.WikipediaURL = envStr("WIKIPEDIA_URL", cfg.WikipediaURL)
	cfg.WikipediaTimeout = envDuration("WIKIPEDIA_TIMEOUT", cfg.WikipediaTimeout)
	cfg.CORSOrigins = envList("CORS_ORIGINS", cfg.CORSOrigins)

	return cfg
}

func readFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeConfig overlays every non-zero field of override onto base.
func mergeConfig(base, override Config) Config {
	if override.Port != 0 {
		base.Port = override.Port
	}
	if override.LogLevel != "" {
		base.LogLevel = override.LogLevel
	}
	if override.DatabaseURL != "" {
		base.DatabaseURL = override.DatabaseURL
	}
	if override.SQLitePath != "" {
		base.SQLitePath = override.SQLitePath
	}
	if override.NatsURL != "" {
		base.NatsURL = override.NatsURL
	}
	if override.NatsToken != "" {
		base.NatsToken = override.NatsToken
	}
	if override.AnthropicAPIKey != "" {
		base.AnthropicAPIKey = override.AnthropicAPIKey
	}
	if override.Model != "" {
		base.Model = override.Model
	}
	if override.MaxTokens > 0 {
		base.MaxTokens = override.MaxTokens
	}
	if override.ModelTimeout > 0 {
		base.ModelTimeout = override.ModelTimeout
	}
	if override.WikipediaURL != "" {
		base.WikipediaURL = override.WikipediaURL
	}
	if override.WikipediaTimeout > 0 {
		base.WikipediaTimeout = override.WikipediaTimeout
	}
	if len(override.CORSOrigins) > 0 {
		base.CORSOrigins = override.CORSOrigins
	}
	if len(override.Images) > 0 {
		base.Images = override.Images
	}
	return base
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
