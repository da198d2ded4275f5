// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type WebhookConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	Path       string `yaml:"path"`
	Secret     string `yaml:"secret"` // optional shared secret; check skipped when empty
}

type BotConfig struct {
	Token      string        `yaml:"token"`
	Mode       string        `yaml:"mode"` // webhook | polling
	Username   string        `yaml:"username"`
	Workers    int           `yaml:"workers"` // update workers
	AllowedIDs []int64       `yaml:"allowed_ids"`
	Webhook    WebhookConfig `yaml:"webhook"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type VercelConfig struct {
	Token   string `yaml:"token"`
	TeamID  string `yaml:"team_id"`
	BaseURL string `yaml:"base_url"`
}

type GitHubConfig struct {
	Token   string `yaml:"token"`
	Owner   string `yaml:"owner"`
	BaseURL string `yaml:"base_url"`
}

type AIConfig struct {
	OpenAIKey       string `yaml:"openai_key"`
	GeminiKey       string `yaml:"gemini_key"`
	GeminiURL       string `yaml:"gemini_url"`
	DefaultModel    string `yaml:"default_model"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
	ConcurrentLimit int    `yaml:"concurrent_limit"` // max concurrent AI calls
}

type RedisConfig struct {
	URL      string `yaml:"url"` // optional; rate limiting disabled when empty
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MetricsConfig struct {
	Port int `yaml:"port"`
}

type Config struct {
	Bot     BotConfig     `yaml:"bot"`
	Log     LogConfig     `yaml:"log"`
	Vercel  VercelConfig  `yaml:"vercel"`
	GitHub  GitHubConfig  `yaml:"github"`
	AI      AIConfig      `yaml:"ai"`
	Redis   RedisConfig   `yaml:"redis"`
	Metrics MetricsConfig `yaml:"metrics"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads and validates the YAML config. Credentials for upstream
// services are all optional: a missing credential degrades that capability to
// a "not configured" reply instead of failing startup.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Bot.Token == "" && !dev {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Bot.Mode != "webhook" && cfg.Bot.Mode != "polling" {
		return nil, fmt.Errorf("bot.mode must be webhook or polling, got %q", cfg.Bot.Mode)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "webhook"
	}
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.Webhook.ListenAddr == "" {
		cfg.Bot.Webhook.ListenAddr = ":8080"
	}
	if cfg.Bot.Webhook.Path == "" {
		cfg.Bot.Webhook.Path = "/telegram/webhook"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Vercel.BaseURL == "" {
		cfg.Vercel.BaseURL = "https://api.vercel.com"
	}
	if cfg.GitHub.BaseURL == "" {
		cfg.GitHub.BaseURL = "https://api.github.com"
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gemini-2.0-flash"
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 1024
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
}
