// Package config loads the gamma-fetch configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Resources that gamma-fetch can fetch.
const (
	ResourceMarkets = "markets"
	ResourceEvents  = "events"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	BaseURL        string        `mapstructure:"gamma_base_url"`
	Resource       string        `mapstructure:"gamma_resource"`
	PageSize       int           `mapstructure:"gamma_page_size"`
	MaxPages       int           `mapstructure:"gamma_max_pages"`
	PageCap        int           `mapstructure:"gamma_page_cap"`
	TimeoutSeconds int64         `mapstructure:"gamma_timeout_seconds"`
	Timeout        time.Duration `mapstructure:"-"`
	UserAgent      string        `mapstructure:"gamma_user_agent"`

	LogLevel  string `mapstructure:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty"`

	DumpType   string `mapstructure:"dump_type"`
	DumpTarget string `mapstructure:"dump_target"`
	RedisURL   string `mapstructure:"redis_url"`

	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Load reads configuration from environment variables, after loading the
// optional env files (".env" when none are given). Variables already set
// in the environment win over the files.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		_ = godotenv.Load(file)
	}

	v := viper.New()

	v.SetDefault("gamma_base_url", "https://gamma-api.polymarket.com")
	v.SetDefault("gamma_resource", ResourceMarkets)
	v.SetDefault("gamma_page_size", 100)
	v.SetDefault("gamma_max_pages", 10)
	v.SetDefault("gamma_page_cap", 10)
	v.SetDefault("gamma_timeout_seconds", 30)
	v.SetDefault("gamma_user_agent", "gamma-markets-client/0.1.0")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("dump_type", "none")
	v.SetDefault("dump_target", "")
	v.SetDefault("redis_url", "localhost:6379")
	v.SetDefault("metrics_addr", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second

	return &cfg, nil
}

func (c *Config) validate() error {
	c.Resource = strings.ToLower(strings.TrimSpace(c.Resource))
	if c.Resource != ResourceMarkets && c.Resource != ResourceEvents {
		return fmt.Errorf("invalid gamma_resource %q (must be %q or %q)", c.Resource, ResourceMarkets, ResourceEvents)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("invalid gamma_page_size (must be positive)")
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("invalid gamma_max_pages (must not be negative)")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("invalid gamma_timeout_seconds (must not be negative)")
	}
	return nil
}

// Endpoint returns the collection path of the configured resource.
func (c *Config) Endpoint() string {
	return "/" + c.Resource
}
