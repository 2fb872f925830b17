package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.hub/config.toml.
type Config struct {
	DefaultProfile string  `toml:"default_profile"`
	Gateway        Gateway `toml:"gateway"`
	OpenAI         OpenAI  `toml:"openai"`
	Sync           Sync    `toml:"sync"`
	HTTP           HTTP    `toml:"http"`
}

// Gateway configures the messaging-aggregation API client.
type Gateway struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	SuccessURL     string `toml:"success_url"`
	FailureURL     string `toml:"failure_url"`
}

// OpenAI configures the reply-suggestion generator.
type OpenAI struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
}

// Sync configures the inbox refresh loop.
type Sync struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

// HTTP configures the daemon API server.
type HTTP struct {
	ListenAddr string `toml:"listen_addr"`
}

// Timeout returns the per-call gateway timeout.
func (g Gateway) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// Interval returns the refresh loop interval.
func (s Sync) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

// Load reads config from the given path. A missing file yields defaults
// rather than an error; a present but malformed file is an error.
// API keys may be supplied via HUB_GATEWAY_API_KEY and OPENAI_API_KEY,
// which take precedence over the file.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

func (c *Config) applyDefaults() {
	if c.DefaultProfile == "" {
		c.DefaultProfile = "main"
	}
	if c.Gateway.TimeoutSeconds <= 0 {
		c.Gateway.TimeoutSeconds = 15
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.OpenAI.MaxTokens <= 0 {
		c.OpenAI.MaxTokens = 512
	}
	if c.OpenAI.Temperature <= 0 {
		c.OpenAI.Temperature = 0.7
	}
	if c.Sync.IntervalSeconds <= 0 {
		c.Sync.IntervalSeconds = 60
	}
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = "127.0.0.1:8090"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HUB_GATEWAY_API_KEY"); v != "" {
		c.Gateway.APIKey = v
	}
	if v := os.Getenv("HUB_GATEWAY_BASE_URL"); v != "" {
		c.Gateway.BaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
}
