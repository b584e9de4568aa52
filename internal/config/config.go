// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all pipeline knobs loaded via Viper.
type Config struct {
	Discovery  DiscoveryConfig  `mapstructure:"discovery"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Renderer   RendererConfig   `mapstructure:"renderer"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// DiscoveryConfig bounds the page discovery run.
type DiscoveryConfig struct {
	MaxPages     int      `mapstructure:"max_pages"`
	MaxDepth     int      `mapstructure:"max_depth"`
	Concurrency  int      `mapstructure:"concurrency"`
	LinksPerPage int      `mapstructure:"links_per_page"`
	OverrideURLs []string `mapstructure:"override_urls"`
}

// HTTPConfig governs static fetching.
type HTTPConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RespectRobots  bool   `mapstructure:"respect_robots"`
	RateDelayMs    int    `mapstructure:"rate_delay_ms"`
}

// RendererConfig configures the headless rendering fallback.
type RendererConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	MaxParallel   int     `mapstructure:"max_parallel"`
	NavTimeoutSec int     `mapstructure:"nav_timeout_seconds"`
	DomainQPS     float64 `mapstructure:"domain_qps"`
	MinTextLength int     `mapstructure:"min_text_length"`
}

// ExtractionConfig governs the collaborator worker pool.
type ExtractionConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	APIKey         string `mapstructure:"api_key"`
	Workers        int    `mapstructure:"workers"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// CacheConfig controls the two cache namespaces and the backing store.
type CacheConfig struct {
	Backend            string `mapstructure:"backend"`
	Path               string `mapstructure:"path"`
	TTLHours           int    `mapstructure:"ttl_hours"`
	PagesEnabled       bool   `mapstructure:"pages_enabled"`
	ExtractionsEnabled bool   `mapstructure:"extractions_enabled"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("APISCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("discovery.max_pages", 25)
	v.SetDefault("discovery.max_depth", 3)
	v.SetDefault("discovery.concurrency", 4)
	v.SetDefault("discovery.links_per_page", 10)
	v.SetDefault("discovery.override_urls", []string{})
	v.SetDefault("http.user_agent", "apiscout/0.1")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.respect_robots", true)
	v.SetDefault("http.rate_delay_ms", 250)
	v.SetDefault("renderer.enabled", true)
	v.SetDefault("renderer.max_parallel", 1)
	v.SetDefault("renderer.nav_timeout_seconds", 25)
	v.SetDefault("renderer.domain_qps", 1.0)
	v.SetDefault("renderer.min_text_length", 500)
	v.SetDefault("extraction.endpoint", "")
	v.SetDefault("extraction.api_key", "")
	v.SetDefault("extraction.workers", 3)
	v.SetDefault("extraction.timeout_seconds", 60)
	v.SetDefault("cache.backend", "sqlite")
	v.SetDefault("cache.path", ".apiscout-cache.db")
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("cache.pages_enabled", true)
	v.SetDefault("cache.extractions_enabled", true)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Discovery.MaxPages <= 0 {
		return fmt.Errorf("discovery.max_pages must be > 0")
	}
	if c.Discovery.MaxDepth < 0 {
		return fmt.Errorf("discovery.max_depth must be >= 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Renderer.Enabled && c.Renderer.MaxParallel <= 0 {
		return fmt.Errorf("renderer.max_parallel must be > 0 when renderer is enabled")
	}
	if c.Extraction.Workers <= 0 {
		return fmt.Errorf("extraction.workers must be > 0")
	}
	switch c.Cache.Backend {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("cache.backend must be sqlite or memory, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "sqlite" && c.Cache.Path == "" {
		return fmt.Errorf("cache.path must be set for the sqlite backend")
	}
	if c.Cache.TTLHours <= 0 {
		return fmt.Errorf("cache.ttl_hours must be > 0")
	}
	return nil
}

// HTTPTimeout converts the fetch timeout into a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// CacheTTL converts the cache TTL into a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}
