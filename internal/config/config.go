package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Server      ServerConfig      `yaml:"server"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Sources     SourcesConfig     `yaml:"sources"`
	Archive     ArchiveConfig     `yaml:"archive"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// ScheduleConfig configures the periodic aggregation loop.
type ScheduleConfig struct {
	AggregateInterval string `yaml:"aggregate_interval"`
}

// ParseAggregateInterval returns the aggregation interval as a Duration.
func (s ScheduleConfig) ParseAggregateInterval() time.Duration {
	d, err := time.ParseDuration(s.AggregateInterval)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}

// AggregationConfig configures the fetch-merge cycle.
type AggregationConfig struct {
	CacheTTL         string `yaml:"cache_ttl"`
	FetchTimeout     string `yaml:"fetch_timeout"`
	LimitPerPlatform int    `yaml:"limit_per_platform"`
}

// ParseCacheTTL returns the platform cache TTL as a Duration.
func (a AggregationConfig) ParseCacheTTL() time.Duration {
	d, err := time.ParseDuration(a.CacheTTL)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// ParseFetchTimeout returns the per-platform fetch timeout as a Duration.
func (a AggregationConfig) ParseFetchTimeout() time.Duration {
	d, err := time.ParseDuration(a.FetchTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// SourcesConfig holds configuration for all platform fetchers.
type SourcesConfig struct {
	Weibo    WeiboConfig    `yaml:"weibo"`
	Zhihu    ZhihuConfig    `yaml:"zhihu"`
	Bilibili BilibiliConfig `yaml:"bilibili"`
	RSS      RSSConfig      `yaml:"rss"`
}

// WeiboConfig for the Weibo hot-search fetcher.
type WeiboConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cookie  string `yaml:"cookie"`
}

// ZhihuConfig for the Zhihu hot-list fetcher.
type ZhihuConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cookie  string `yaml:"cookie"`
}

// BilibiliConfig for the Bilibili hot-word fetcher.
type BilibiliConfig struct {
	Enabled bool `yaml:"enabled"`
}

// RSSConfig for the RSS hot-feed fetcher.
type RSSConfig struct {
	Enabled bool       `yaml:"enabled"`
	Feeds   []FeedItem `yaml:"feeds"`
}

// FeedItem is a single RSS feed entry.
type FeedItem struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ArchiveConfig configures the historical hot-search archive.
type ArchiveConfig struct {
	BaseURL string `yaml:"base_url"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./truetrend.db"},
		Server:   ServerConfig{Port: 8080},
		Schedule: ScheduleConfig{AggregateInterval: "10m"},
		Aggregation: AggregationConfig{
			CacheTTL:         "5m",
			FetchTimeout:     "30s",
			LimitPerPlatform: 30,
		},
		Sources: SourcesConfig{
			Weibo:    WeiboConfig{Enabled: true},
			Zhihu:    ZhihuConfig{Enabled: true},
			Bilibili: BilibiliConfig{Enabled: true},
			RSS:      RSSConfig{Enabled: false},
		},
		Archive: ArchiveConfig{},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRUETREND_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("TRUETREND_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TRUETREND_ARCHIVE_BASE_URL"); v != "" {
		cfg.Archive.BaseURL = v
	}
	if v := os.Getenv("WEIBO_COOKIE"); v != "" {
		cfg.Sources.Weibo.Cookie = v
	}
	if v := os.Getenv("ZHIHU_COOKIE"); v != "" {
		cfg.Sources.Zhihu.Cookie = v
	}
}
