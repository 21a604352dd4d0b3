// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP API listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// Env is the application environment ("development", "production"). Production switches gin to release mode and logs to JSON.
	Env string `mapstructure:"APP_ENV"`
	// LogLevel is the zerolog level name (debug, info, warn, error).
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// RedisURL is the session cache URL (redis://host:6379/0). Empty selects the in-process memory cache.
	RedisURL string `mapstructure:"REDIS_URL"`

	// SessionTTL is the durable session lifetime and the maximum cache TTL (e.g. "1h").
	SessionTTLRaw string `mapstructure:"SESSION_TTL"`
	// CookieSecure sets the Secure attribute on the session cookie.
	CookieSecure bool `mapstructure:"COOKIE_SECURE"`
	// RoomCodeTTL is how long an issued room code stays valid (e.g. "10m").
	RoomCodeTTLRaw string `mapstructure:"ROOM_CODE_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 10.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// CORSAllowedOrigins is a comma-separated list of browser origins allowed to send credentials.
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	// RateLimitRPS and RateLimitBurst bound login/register attempts per client IP.
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	// Events (optional). When Kafka brokers are set, the server publishes quiz events to Kafka.
	// KafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// EventsKafkaTopic is the Kafka topic for quiz events (default quiz-events).
	EventsKafkaTopic string `mapstructure:"EVENTS_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group ID for the events worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// Worker-only: Loki URL the events worker pushes to (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// SweepInterval is how often the worker purges expired sessions and room codes.
	SweepIntervalRaw string `mapstructure:"SWEEP_INTERVAL"`

	// OTLPEndpoint is the OpenTelemetry collector endpoint; empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces a plaintext connection to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SESSION_TTL", "1h")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("ROOM_CODE_TTL", "10m")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("EVENTS_KAFKA_TOPIC", "quiz-events")
	v.SetDefault("KAFKA_GROUP_ID", "quiz-events-worker")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("SWEEP_INTERVAL", "5m")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 10
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if cfg.RateLimitRPS <= 0 {
		return nil, errors.New("config: RATE_LIMIT_RPS must be positive")
	}
	if cfg.RateLimitBurst <= 0 {
		return nil, errors.New("config: RATE_LIMIT_BURST must be positive")
	}

	return &cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// SessionTTL parses SESSION_TTL. Returns 1h if unset or invalid.
func (c *Config) SessionTTL() time.Duration {
	return parsePositive(c.SessionTTLRaw, time.Hour)
}

// RoomCodeTTL parses ROOM_CODE_TTL. Returns 10m if unset or invalid.
func (c *Config) RoomCodeTTL() time.Duration {
	return parsePositive(c.RoomCodeTTLRaw, 10*time.Minute)
}

// SweepInterval parses SWEEP_INTERVAL. Returns 5m if unset or invalid.
func (c *Config) SweepInterval() time.Duration {
	return parsePositive(c.SweepIntervalRaw, 5*time.Minute)
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if event publishing is enabled (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.KafkaBrokers)
}

// CORSOrigins returns the allowed CORS origins.
func (c *Config) CORSOrigins() []string {
	if c == nil {
		return nil
	}
	return splitList(c.CORSAllowedOrigins)
}

func parsePositive(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
