// Package config loads and validates aggregator configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Pools   PoolsConfig   `mapstructure:"pools"`
	Crawler CrawlerConfig `mapstructure:"crawler"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// PoolsConfig sizes the two worker pools.
type PoolsConfig struct {
	FeedWorkers    int `mapstructure:"feed_workers"`
	ArticleWorkers int `mapstructure:"article_workers"`
}

// CrawlerConfig governs crawl behavior.
type CrawlerConfig struct {
	PerServerMax int `mapstructure:"per_server_max"`
}

// HTTPConfig configures the HTTP fetch collaborator.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxRedirects   int    `mapstructure:"max_redirects"`
	UserAgent      string `mapstructure:"user_agent"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NEWSAGG")
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
	v.SetDefault("pools.feed_workers", 8)
	v.SetDefault("pools.article_workers", 24)
	v.SetDefault("crawler.per_server_max", 10)
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.max_redirects", 6)
	v.SetDefault("http.user_agent", "news-aggregator/0.1")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Pools.FeedWorkers <= 0 {
		return fmt.Errorf("pools.feed_workers must be > 0")
	}
	if c.Pools.ArticleWorkers <= 0 {
		return fmt.Errorf("pools.article_workers must be > 0")
	}
	if c.Crawler.PerServerMax <= 0 {
		return fmt.Errorf("crawler.per_server_max must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxRedirects <= 0 {
		return fmt.Errorf("http.max_redirects must be > 0")
	}
	return nil
}

// Timeout converts the HTTP timeout into a duration.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
