package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JakeFAU/scholar-crawler/internal/crawler"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Crawler.BaseURL != "https://scholar.google.com" {
		t.Fatalf("unexpected base url %q", cfg.Crawler.BaseURL)
	}
	if cfg.Crawler.Delay != crawler.DefaultDelay {
		t.Fatalf("expected default delay %v, got %v", crawler.DefaultDelay, cfg.Crawler.Delay)
	}
	if cfg.Crawler.MaxAttempts != 3 || cfg.Crawler.FailurePolicy != "abort" {
		t.Fatalf("unexpected retry defaults: %+v", cfg.Crawler)
	}
	if cfg.Output.Sort != "citations" {
		t.Fatalf("expected citations sort, got %q", cfg.Output.Sort)
	}
	if cfg.RetryPolicy() == nil {
		t.Fatal("expected retry policy with default attempts")
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
crawler:
  base_url: http://localhost:8081
  delay: 2s
  user_agent: test-agent
  random_user_agent: true
  respect_robots: true
  request_timeout: 30s
  max_attempts: 1
  failure_policy: skip
  archive_dir: /tmp/pages
output:
  format: json
  sort: year
logging:
  development: true
  quiet: true
metrics:
  file: metrics.prom
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Crawler.BaseURL != "http://localhost:8081" || cfg.Crawler.Delay != 2*time.Second {
		t.Fatalf("expected crawler overrides to apply: %+v", cfg.Crawler)
	}
	if !cfg.Crawler.RandomUserAgent || !cfg.Crawler.RespectRobots || cfg.Crawler.UserAgent != "test-agent" {
		t.Fatalf("expected fetch overrides to apply: %+v", cfg.Crawler)
	}
	if cfg.Crawler.RequestTimeout != 30*time.Second || cfg.Crawler.FailurePolicy != "skip" {
		t.Fatalf("unexpected timeout or policy: %+v", cfg.Crawler)
	}
	if cfg.Output.Format != "json" || cfg.Output.Sort != "year" {
		t.Fatalf("unexpected output config: %+v", cfg.Output)
	}
	if !cfg.Logging.Development || !cfg.Logging.Quiet || cfg.Metrics.File != "metrics.prom" {
		t.Fatalf("unexpected logging/metrics config: %+v %+v", cfg.Logging, cfg.Metrics)
	}
	if cfg.RetryPolicy() != nil {
		t.Fatal("expected retries disabled with a single attempt")
	}
	// Untouched keys keep their defaults.
	if cfg.Crawler.BackoffMax != 5*time.Second {
		t.Fatalf("expected default backoff max, got %v", cfg.Crawler.BackoffMax)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Crawler: CrawlerConfig{
			BaseURL:        "https://scholar.google.com",
			RequestTimeout: time.Second,
			MaxAttempts:    1,
		},
	}

	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{
			name: "relative base url",
			cfg: func() Config {
				c := base
				c.Crawler.BaseURL = "/scholar"
				return c
			}(),
			field: "crawler.base_url",
		},
		{
			name: "negative delay",
			cfg: func() Config {
				c := base
				c.Crawler.Delay = -time.Second
				return c
			}(),
			field: "crawler.delay",
		},
		{
			name: "invalid timeout",
			cfg: func() Config {
				c := base
				c.Crawler.RequestTimeout = 0
				return c
			}(),
			field: "crawler.request_timeout",
		},
		{
			name: "invalid attempts",
			cfg: func() Config {
				c := base
				c.Crawler.MaxAttempts = 0
				return c
			}(),
			field: "crawler.max_attempts",
		},
		{
			name: "unknown failure policy",
			cfg: func() Config {
				c := base
				c.Crawler.FailurePolicy = "retry-forever"
				return c
			}(),
			field: "failure policy",
		},
		{
			name: "unknown sort",
			cfg: func() Config {
				c := base
				c.Output.Sort = "title"
				return c
			}(),
			field: "output.sort",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			var cfgErr *crawler.ConfigurationError
			if !errors.As(err, &cfgErr) || cfgErr.Field != tt.field {
				t.Fatalf("expected configuration error on %q, got %v", tt.field, err)
			}
		})
	}
}
