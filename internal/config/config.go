package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/couchcryptid/station-monitor/internal/domain"
)

// Config holds all service settings. Values come from an optional TOML file
// and are overridden by environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Station monitor.
	NoiseTokens      []string
	DelayedAfter     time.Duration
	OfflineAfter     time.Duration
	WatchInterval    time.Duration
	ExtractCacheSize int
	MaxUploadBytes   int64

	// Photo renamer.
	FallbackYear int

	// Kafka status publishing.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaStatusTopic string
}

// fileConfig mirrors Config for TOML decoding. Durations are strings so the
// file and the environment accept the same syntax.
type fileConfig struct {
	HTTPAddr         string   `toml:"http_addr"`
	LogLevel         string   `toml:"log_level"`
	LogFormat        string   `toml:"log_format"`
	ShutdownTimeout  string   `toml:"shutdown_timeout"`
	NoiseTokens      []string `toml:"noise_tokens"`
	DelayedAfter     string   `toml:"delayed_after"`
	OfflineAfter     string   `toml:"offline_after"`
	WatchInterval    string   `toml:"watch_interval"`
	ExtractCacheSize int      `toml:"extract_cache_size"`
	MaxUploadBytes   int64    `toml:"max_upload_bytes"`
	FallbackYear     int      `toml:"fallback_year"`
	KafkaEnabled     *bool    `toml:"kafka_enabled"`
	KafkaBrokers     []string `toml:"kafka_brokers"`
	KafkaStatusTopic string   `toml:"kafka_status_topic"`
}

// Load reads configuration from path (optional, "" skips the file) and the
// environment, applying defaults where unset.
func Load(path string) (*Config, error) {
	var fc fileConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", fc.ShutdownTimeout, "10s")
	if err != nil {
		return nil, err
	}
	delayedAfter, err := parsePositiveDuration("DELAYED_AFTER", fc.DelayedAfter, domain.DefaultDelayedAfter.String())
	if err != nil {
		return nil, err
	}
	offlineAfter, err := parsePositiveDuration("OFFLINE_AFTER", fc.OfflineAfter, domain.DefaultOfflineAfter.String())
	if err != nil {
		return nil, err
	}
	watchInterval, err := parsePositiveDuration("WATCH_INTERVAL", fc.WatchInterval, "2s")
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("EXTRACT_CACHE_SIZE", fc.ExtractCacheSize, 1024)
	if err != nil {
		return nil, err
	}
	maxUpload, err := parsePositiveInt("MAX_UPLOAD_BYTES", int(fc.MaxUploadBytes), 256<<20)
	if err != nil {
		return nil, err
	}
	fallbackYear, err := parsePositiveInt("FALLBACK_YEAR", fc.FallbackYear, domain.DefaultFallbackYear)
	if err != nil {
		return nil, err
	}

	noise := fc.NoiseTokens
	if v := os.Getenv("NOISE_TOKENS"); v != "" {
		noise = splitList(v)
	}
	if len(noise) == 0 {
		noise = append([]string(nil), domain.DefaultNoiseTokens...)
	}

	brokers := fc.KafkaBrokers
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = splitList(v)
	}
	kafkaEnabled := len(brokers) > 0
	if fc.KafkaEnabled != nil {
		kafkaEnabled = *fc.KafkaEnabled
	}
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:         envOrDefault("HTTP_ADDR", orDefault(fc.HTTPAddr, ":8080")),
		LogLevel:         envOrDefault("LOG_LEVEL", orDefault(fc.LogLevel, "info")),
		LogFormat:        envOrDefault("LOG_FORMAT", orDefault(fc.LogFormat, "json")),
		ShutdownTimeout:  shutdownTimeout,
		NoiseTokens:      noise,
		DelayedAfter:     delayedAfter,
		OfflineAfter:     offlineAfter,
		WatchInterval:    watchInterval,
		ExtractCacheSize: cacheSize,
		MaxUploadBytes:   int64(maxUpload),
		FallbackYear:     fallbackYear,
		KafkaEnabled:     kafkaEnabled,
		KafkaBrokers:     brokers,
		KafkaStatusTopic: envOrDefault("KAFKA_STATUS_TOPIC", orDefault(fc.KafkaStatusTopic, "station-liveness")),
	}

	if cfg.OfflineAfter <= cfg.DelayedAfter {
		return nil, errors.New("OFFLINE_AFTER must be greater than DELAYED_AFTER")
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q (allowed: json, text)", cfg.LogFormat)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

// Thresholds returns the configured liveness bounds.
func (c *Config) Thresholds() domain.Thresholds {
	return domain.Thresholds{DelayedAfter: c.DelayedAfter, OfflineAfter: c.OfflineAfter}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func parsePositiveDuration(key, fileValue, fallback string) (time.Duration, error) {
	raw := envOrDefault(key, orDefault(fileValue, fallback))
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return d, nil
}

func parsePositiveInt(key string, fileValue, fallback int) (int, error) {
	n := fallback
	if fileValue != 0 {
		n = fileValue
	}
	if raw := os.Getenv(key); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q", key, raw)
		}
		n = v
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s %d: must be positive", key, n)
	}
	return n, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
