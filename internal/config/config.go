// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/scholar-crawler/internal/crawler"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// CrawlerConfig governs fetching and pacing.
type CrawlerConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Delay           time.Duration `mapstructure:"delay"`
	UserAgent       string        `mapstructure:"user_agent"`
	RandomUserAgent bool          `mapstructure:"random_user_agent"`
	RespectRobots   bool          `mapstructure:"respect_robots"`
	AcceptLanguage  string        `mapstructure:"accept_language"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	BackoffInitial  time.Duration `mapstructure:"backoff_initial"`
	BackoffMax      time.Duration `mapstructure:"backoff_max"`
	FailurePolicy   string        `mapstructure:"failure_policy"`
	ArchiveDir      string        `mapstructure:"archive_dir"`
	MaxPageBytes    int64         `mapstructure:"max_page_bytes"`
}

// OutputConfig selects how results are written.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Sort   string `mapstructure:"sort"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
	Quiet       bool `mapstructure:"quiet"`
}

// MetricsConfig controls the optional Prometheus text dump.
type MetricsConfig struct {
	File string `mapstructure:"file"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCHOLAR")
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
	v.SetDefault("crawler.base_url", "https://scholar.google.com")
	v.SetDefault("crawler.delay", crawler.DefaultDelay)
	v.SetDefault("crawler.user_agent", "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0")
	v.SetDefault("crawler.random_user_agent", false)
	v.SetDefault("crawler.respect_robots", false)
	v.SetDefault("crawler.accept_language", "en-US,en;q=0.9")
	v.SetDefault("crawler.request_timeout", 15*time.Second)
	v.SetDefault("crawler.max_attempts", 3)
	v.SetDefault("crawler.backoff_initial", 250*time.Millisecond)
	v.SetDefault("crawler.backoff_max", 5*time.Second)
	v.SetDefault("crawler.failure_policy", string(crawler.FailAbort))
	v.SetDefault("crawler.archive_dir", "")
	v.SetDefault("crawler.max_page_bytes", 5*1024*1024)
	v.SetDefault("output.format", "")
	v.SetDefault("output.sort", "citations")
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.quiet", false)
	v.SetDefault("metrics.file", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	base, err := url.Parse(c.Crawler.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return &crawler.ConfigurationError{Field: "crawler.base_url", Reason: fmt.Sprintf("%q is not an absolute URL", c.Crawler.BaseURL)}
	}
	if c.Crawler.Delay < 0 {
		return &crawler.ConfigurationError{Field: "crawler.delay", Reason: "must be >= 0"}
	}
	if c.Crawler.RequestTimeout <= 0 {
		return &crawler.ConfigurationError{Field: "crawler.request_timeout", Reason: "must be > 0"}
	}
	if c.Crawler.MaxAttempts <= 0 {
		return &crawler.ConfigurationError{Field: "crawler.max_attempts", Reason: "must be > 0"}
	}
	if _, err := crawler.ParseFailurePolicy(c.Crawler.FailurePolicy); err != nil {
		return err
	}
	switch c.Output.Sort {
	case "", "citations", "year":
	default:
		return &crawler.ConfigurationError{Field: "output.sort", Reason: fmt.Sprintf("unknown sort key %q", c.Output.Sort)}
	}
	return nil
}

// RetryPolicy converts the attempt and backoff settings into a crawler.RetryPolicy.
func (c Config) RetryPolicy() crawler.RetryPolicy {
	if c.Crawler.MaxAttempts <= 1 {
		return nil
	}
	return crawler.NewRetryPolicy(c.Crawler.MaxAttempts, c.Crawler.BackoffInitial, c.Crawler.BackoffMax)
}
