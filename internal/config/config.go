package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// UpstreamOptions configures the Taskflow REST API clients.
type UpstreamOptions struct {
	URL            string        `env:"UPSTREAM_API_URL" envDefault:"http://localhost:3000" validate:"required,url"`
	SigningKey     string        `env:"UPSTREAM_SIGNING_KEY"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	MaxRetries     int           `env:"MAX_RETRIES" envDefault:"3" validate:"gte=0,lte=10"`
	InitialBackoff time.Duration `env:"INITIAL_BACKOFF" envDefault:"100ms"`
	MaxConcurrency int           `env:"MAX_CONCURRENCY" envDefault:"50" validate:"gte=1"`
}

// StoreOptions selects the durable key/value backend.
type StoreOptions struct {
	Backend       string `env:"KV_BACKEND" envDefault:"memory" validate:"oneof=memory redis sqlite"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379" validate:"required_if=Backend redis"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"taskflow.db" validate:"required_if=Backend sqlite"`
}

// NotifyOptions configures the callback poller and its event sink.
type NotifyOptions struct {
	PollInterval  time.Duration `env:"NOTIFY_POLL_INTERVAL" envDefault:"10s" validate:"gt=0"`
	Users         []string      `env:"NOTIFY_USERS" envSeparator:","`
	KafkaBrokers  string        `env:"KAFKA_BROKERS"`
	CallbackTopic string        `env:"KAFKA_CALLBACK_TOPIC" envDefault:"taskflow.callback.due"`
}

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port        int      `env:"PORT" envDefault:"8080" validate:"gt=0,lt=65536"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	RateLimit   string   `env:"RATE_LIMIT" envDefault:"300-M"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	Timezone    string   `env:"TIMEZONE" envDefault:"UTC"`

	Upstream UpstreamOptions
	Store    StoreOptions
	Notify   NotifyOptions

	// Cache
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m" validate:"gt=0"`

	// Observability
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	location *time.Location
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := validator.New().Struct(c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.location = loc

	c.LogLevel = strings.ToLower(c.LogLevel)
	c.Notify.Users = compact(c.Notify.Users)
	c.CORSOrigins = compact(c.CORSOrigins)
	return c, nil
}

// Location is the time zone calendar days are computed in.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
