// Package config loads and validates discovery run configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures every knob of a discovery run. It is immutable once
// loaded; components receive it (or slices of it) by value.
type Config struct {
	DatabaseURL string `mapstructure:"database_url"`

	// Venue enumeration.
	Limit    int   `mapstructure:"limit"`
	Offset   int   `mapstructure:"offset"`
	StartID  int64 `mapstructure:"start_id"`
	PageSize int   `mapstructure:"page_size"`
	RPCChunk int   `mapstructure:"rpc_chunk"`

	// Scoring thresholds.
	MinAutoApprove   int `mapstructure:"min_auto_approve"`
	MinPendingReview int `mapstructure:"min_pending_review"`
	MinAutoApply     int `mapstructure:"min_auto_apply"`
	ApplyLimit       int `mapstructure:"apply_limit"`

	// Seed construction.
	ManifestPath        string `mapstructure:"manifest"`
	IncludeWithVideo    bool   `mapstructure:"include_with_video"`
	IncludeExistingSeed bool   `mapstructure:"include_existing_seed"`
	NoOfficialSources   bool   `mapstructure:"no_official_sources"`

	// Stage toggles.
	ApplyApproved bool `mapstructure:"apply_approved"`
	SkipDiscovery bool `mapstructure:"skip_discovery"`
	NoCrawl       bool `mapstructure:"no_crawl"`
	DryRun        bool `mapstructure:"dry_run"`

	// Crawler budget.
	CrawlMaxRequests       int `mapstructure:"crawl_max_requests"`
	CrawlConcurrency       int `mapstructure:"crawl_concurrency"`
	CrawlTimeoutMs         int `mapstructure:"crawl_timeout_ms"`
	CrawlMaxLinksPerSource int `mapstructure:"crawl_max_links_per_source"`

	// Observability.
	Verbose            bool   `mapstructure:"verbose"`
	MetricsAddr        string `mapstructure:"metrics_addr"`
	HeartbeatIntervalS int    `mapstructure:"heartbeat_interval_seconds"`

	// Audit label stamped on auto-approved candidates.
	Actor string `mapstructure:"actor"`
}

// Load builds a Config from the given viper instance, applying defaults and
// environment overrides (prefix VIDDISC, dots become underscores).
func Load(v *viper.Viper) (Config, error) {
	v.SetEnvPrefix("VIDDISC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = v.GetString("database_url")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("page_size", 500)
	v.SetDefault("rpc_chunk", 200)
	v.SetDefault("min_auto_approve", 88)
	v.SetDefault("min_pending_review", 55)
	v.SetDefault("min_auto_apply", 90)
	v.SetDefault("apply_limit", 5000)
	v.SetDefault("crawl_max_requests", 1200)
	v.SetDefault("crawl_concurrency", 8)
	v.SetDefault("crawl_timeout_ms", 6000)
	v.SetDefault("crawl_max_links_per_source", 8)
	v.SetDefault("heartbeat_interval_seconds", 15)
	v.SetDefault("actor", "video-discovery-bot")
}

// Validate enforces threshold ordering and positive resource limits.
func (c Config) Validate() error {
	if c.MinPendingReview < 0 || c.MinAutoApprove > 100 {
		return fmt.Errorf("thresholds must stay within [0,100]")
	}
	if c.MinPendingReview > c.MinAutoApprove {
		return fmt.Errorf("min_pending_review (%d) must not exceed min_auto_approve (%d)", c.MinPendingReview, c.MinAutoApprove)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be > 0")
	}
	if c.RPCChunk <= 0 {
		return fmt.Errorf("rpc_chunk must be > 0")
	}
	if c.CrawlConcurrency <= 0 {
		return fmt.Errorf("crawl_concurrency must be > 0")
	}
	if c.CrawlMaxRequests < 0 {
		return fmt.Errorf("crawl_max_requests must be >= 0")
	}
	if c.CrawlTimeoutMs <= 0 {
		return fmt.Errorf("crawl_timeout_ms must be > 0")
	}
	if c.Offset > 0 && c.StartID > 0 {
		return fmt.Errorf("offset cannot be combined with start_id")
	}
	if c.Actor == "" {
		return fmt.Errorf("actor must be set")
	}
	return nil
}

// CrawlTimeout returns the per-fetch timeout as a duration.
func (c Config) CrawlTimeout() time.Duration {
	return time.Duration(c.CrawlTimeoutMs) * time.Millisecond
}

// HeartbeatInterval returns the wall-clock heartbeat period.
func (c Config) HeartbeatInterval() time.Duration {
	if c.HeartbeatIntervalS <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.HeartbeatIntervalS) * time.Second
}
