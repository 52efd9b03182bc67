// Package config loads and validates service configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendLocal  = "local"
	BackendGCS    = "gcs"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Search   SearchConfig   `mapstructure:"search"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Storage  StorageConfig  `mapstructure:"storage"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port        int `mapstructure:"port"`
	MaxUploadMB int `mapstructure:"max_upload_mb"`
}

// SearchConfig bounds the random pause between provider misses.
type SearchConfig struct {
	MinDelayMs int `mapstructure:"min_delay_ms"`
	MaxDelayMs int `mapstructure:"max_delay_ms"`
}

// HTTPConfig configures the plain HTTP providers.
type HTTPConfig struct {
	TimeoutSeconds       int     `mapstructure:"timeout_seconds"`
	DirectTimeoutSeconds int     `mapstructure:"direct_timeout_seconds"`
	UserAgent            string  `mapstructure:"user_agent"`
	AcceptLanguage       string  `mapstructure:"accept_language"`
	PerHostRPS           float64 `mapstructure:"per_host_rps"`
	PerHostBurst         int     `mapstructure:"per_host_burst"`
}

// HeadlessConfig configures the browser search provider.
type HeadlessConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	NavTimeoutSec int    `mapstructure:"nav_timeout_seconds"`
	SettleMinMs   int    `mapstructure:"settle_min_ms"`
	SettleMaxMs   int    `mapstructure:"settle_max_ms"`
	ExecPath      string `mapstructure:"exec_path"`
}

// StorageConfig selects where uploads and result workbooks live.
type StorageConfig struct {
	Backend      string `mapstructure:"backend"`
	LocalDir     string `mapstructure:"local_dir"`
	GCSBucket    string `mapstructure:"gcs_bucket"`
	Prefix       string `mapstructure:"prefix"`
	UploadPrefix string `mapstructure:"upload_prefix"`
	ResultPrefix string `mapstructure:"result_prefix"`
}

// PubSubConfig holds metadata for job completion notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// QueueConfig sizes the in-process job queue.
type QueueConfig struct {
	Depth int `mapstructure:"depth"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CONTACTFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		// Without an explicit file, a config.{yaml,json,toml} in the working
		// directory or ~/.contact-finder is optional.
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.contact-finder")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
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
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.max_upload_mb", 16)
	v.SetDefault("search.min_delay_ms", 1000)
	v.SetDefault("search.max_delay_ms", 3000)
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.direct_timeout_seconds", 10)
	v.SetDefault("http.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 "+
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("http.accept_language", "th-TH,th;q=0.9,en-US;q=0.8,en;q=0.7")
	v.SetDefault("http.per_host_rps", 1.0)
	v.SetDefault("http.per_host_burst", 2)
	v.SetDefault("headless.enabled", true)
	v.SetDefault("headless.nav_timeout_seconds", 10)
	v.SetDefault("headless.settle_min_ms", 2000)
	v.SetDefault("headless.settle_max_ms", 4000)
	v.SetDefault("headless.exec_path", "")
	v.SetDefault("storage.backend", BackendLocal)
	v.SetDefault("storage.local_dir", "data")
	v.SetDefault("storage.gcs_bucket", "")
	v.SetDefault("storage.prefix", "")
	v.SetDefault("storage.upload_prefix", "uploads")
	v.SetDefault("storage.result_prefix", "results")
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic_name", "")
	v.SetDefault("queue.depth", 16)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be > 0")
	}
	if c.Search.MinDelayMs < 0 || c.Search.MaxDelayMs < c.Search.MinDelayMs {
		return fmt.Errorf("search delays must satisfy 0 <= min_delay_ms <= max_delay_ms")
	}
	if c.HTTP.TimeoutSeconds <= 0 || c.HTTP.DirectTimeoutSeconds <= 0 {
		return fmt.Errorf("http timeouts must be > 0")
	}
	if c.HTTP.PerHostRPS < 0 {
		return fmt.Errorf("http.per_host_rps must be >= 0")
	}
	if c.Headless.Enabled {
		if c.Headless.NavTimeoutSec <= 0 {
			return fmt.Errorf("headless.nav_timeout_seconds must be > 0 when headless is enabled")
		}
		if c.Headless.SettleMinMs < 0 || c.Headless.SettleMaxMs < c.Headless.SettleMinMs {
			return fmt.Errorf("headless settle range must satisfy 0 <= settle_min_ms <= settle_max_ms")
		}
	}
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendLocal:
		if strings.TrimSpace(c.Storage.LocalDir) == "" {
			return fmt.Errorf("storage.local_dir must be set for the local backend")
		}
	case BackendGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket must be set for the gcs backend")
		}
	default:
		return fmt.Errorf("storage.backend %q is not one of memory, local, gcs", c.Storage.Backend)
	}
	if c.PubSub.TopicName != "" && c.PubSub.ProjectID == "" {
		return fmt.Errorf("pubsub.project_id must be set when pubsub.topic_name is set")
	}
	if c.Queue.Depth <= 0 {
		return fmt.Errorf("queue.depth must be > 0")
	}
	return nil
}

// SearchDelays returns the provider pause range.
func (c Config) SearchDelays() (time.Duration, time.Duration) {
	return time.Duration(c.Search.MinDelayMs) * time.Millisecond,
		time.Duration(c.Search.MaxDelayMs) * time.Millisecond
}

// SearchTimeout bounds one search engine or directory request.
func (c Config) SearchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// DirectTimeout bounds one direct domain probe.
func (c Config) DirectTimeout() time.Duration {
	return time.Duration(c.HTTP.DirectTimeoutSeconds) * time.Second
}

// NavTimeout bounds waiting for the rendered page body.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Headless.NavTimeoutSec) * time.Second
}

// SettleRange returns the random post-load wait of the browser.
func (c Config) SettleRange() (time.Duration, time.Duration) {
	return time.Duration(c.Headless.SettleMinMs) * time.Millisecond,
		time.Duration(c.Headless.SettleMaxMs) * time.Millisecond
}

// MaxUploadBytes is the request body limit for uploads.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}
