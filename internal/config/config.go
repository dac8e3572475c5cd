// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers a YAML file and environment variables over those defaults.
// - Validation failures wrap ErrInvalidConfig, source failures ErrLoadConfig.
package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataDir is the corpus root. RosterFile and LogsDir resolve against it
	// when relative.
	DataDir    string `koanf:"data_dir"`
	RosterFile string `koanf:"roster_file"`
	LogsDir    string `koanf:"logs_dir"`

	// WindowSize is the number of most recent games analysed.
	WindowSize int `koanf:"window_size"`

	// StabilityThreshold is the absolute change in ERA, in runs, below which a
	// pitcher is stable.
	StabilityThreshold float64 `koanf:"stability_threshold"`

	// RateStabilityThreshold is the absolute change below which a batting
	// rate is stable.
	RateStabilityThreshold float64 `koanf:"rate_stability_threshold"`

	// DueBaseline picks the due-factor baseline: window or season.
	DueBaseline string `koanf:"due_baseline"`

	// SuggestionLimit caps near-candidate suggestions.
	SuggestionLimit int `koanf:"suggestion_limit"`

	// WorkerCount sets the number of batch analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// UnmatchedCacheSize bounds the unmatched-name tracker.
	UnmatchedCacheSize int `koanf:"unmatched_cache_size"`

	// ReloadIntervalSec reloads the corpus periodically when > 0.
	ReloadIntervalSec int `koanf:"reload_interval_sec"`

	// ReloadCron reloads the corpus on a standard cron schedule. It wins over
	// ReloadIntervalSec.
	ReloadCron string `koanf:"reload_cron"`

	// RateLimitRPS and RateLimitBurst configure the analysis route limiter.
	// RPS <= 0 disables limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// BreakerMaxFailures and BreakerTimeoutSec tune the corpus read breaker.
	BreakerMaxFailures int `koanf:"breaker_max_failures"`
	BreakerTimeoutSec  int `koanf:"breaker_timeout_sec"`

	// ScoreWeights maps base, due and trend to composite score weights.
	ScoreWeights map[string]float64 `koanf:"score_weights"`

	// MaxResultLimit caps GET /team/{code}?limit.
	MaxResultLimit int `koanf:"max_result_limit"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		DataDir:                "data",
		RosterFile:             "roster.json",
		LogsDir:                "logs",
		WindowSize:             10,
		StabilityThreshold:     0.25,
		RateStabilityThreshold: 0.03,
		DueBaseline:            "window",
		SuggestionLimit:        5,
		WorkerCount:            runtime.NumCPU() * 2,
		QueueSize:              1024,
		UnmatchedCacheSize:     10_000,
		RateLimitRPS:           50,
		RateLimitBurst:         100,
		BreakerMaxFailures:     3,
		BreakerTimeoutSec:      30,
		ScoreWeights: map[string]float64{
			"base":  0.5,
			"due":   0.3,
			"trend": 0.2,
		},
		MaxResultLimit: 100,
	}
}

// RosterPath returns the roster file path resolved against DataDir.
func (c *Config) RosterPath() string { return c.resolve(c.RosterFile) }

// LogsPath returns the game-log directory resolved against DataDir.
func (c *Config) LogsPath() string { return c.resolve(c.LogsDir) }

// ReloadInterval returns the periodic reload interval, zero when disabled.
func (c *Config) ReloadInterval() time.Duration {
	if c.ReloadIntervalSec <= 0 {
		return 0
	}
	return time.Duration(c.ReloadIntervalSec) * time.Second
}

// BreakerTimeout returns how long an open breaker stays open.
func (c *Config) BreakerTimeout() time.Duration {
	return time.Duration(c.BreakerTimeoutSec) * time.Second
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.DataDir == "" {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.RosterPath() == "":
		return fmt.Errorf("%w: roster_file must not be empty", ErrInvalidConfig)
	case c.LogsPath() == "":
		return fmt.Errorf("%w: logs_dir must not be empty", ErrInvalidConfig)
	case c.WindowSize < 2:
		return fmt.Errorf("%w: window_size must be at least 2, got %d", ErrInvalidConfig, c.WindowSize)
	case c.StabilityThreshold <= 0:
		return fmt.Errorf("%w: stability_threshold must be positive", ErrInvalidConfig)
	case c.RateStabilityThreshold <= 0:
		return fmt.Errorf("%w: rate_stability_threshold must be positive", ErrInvalidConfig)
	case c.SuggestionLimit < 0:
		return fmt.Errorf("%w: suggestion_limit must not be negative", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.MaxResultLimit < 1:
		return fmt.Errorf("%w: max_result_limit must be positive", ErrInvalidConfig)
	case c.ReloadIntervalSec < 0:
		return fmt.Errorf("%w: reload_interval_sec must not be negative", ErrInvalidConfig)
	case c.RateLimitRPS > 0 && c.RateLimitBurst < 1:
		return fmt.Errorf("%w: rate_limit_burst must be positive when rate limiting", ErrInvalidConfig)
	}

	switch strings.ToLower(c.DueBaseline) {
	case "", "window", "season":
	default:
		return fmt.Errorf("%w: due_baseline must be window or season, got %q", ErrInvalidConfig, c.DueBaseline)
	}

	if c.ReloadCron != "" {
		if _, err := cron.ParseStandard(c.ReloadCron); err != nil {
			return fmt.Errorf("%w: reload_cron %q: %v", ErrInvalidConfig, c.ReloadCron, err)
		}
	}

	for k, w := range c.ScoreWeights {
		switch k {
		case "base", "due", "trend":
		default:
			return fmt.Errorf("%w: unknown score weight %q", ErrInvalidConfig, k)
		}
		if w < 0 {
			return fmt.Errorf("%w: score weight %q must not be negative", ErrInvalidConfig, k)
		}
	}
	return nil
}
