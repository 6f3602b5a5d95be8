package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the relay service.
type Config struct {
	Addr            string        `env:"RELAY_ADDR,default=:8080"`
	UpstreamBaseURL string        `env:"RELAY_UPSTREAM_BASE_URL,default=https://www.cscsw.com/wp-json/cscsw/v1"`
	UpstreamTimeout time.Duration `env:"RELAY_UPSTREAM_TIMEOUT,default=30s"`
	ProfileFile     string        `env:"RELAY_PROFILE_FILE"`
	RateLimit       int           `env:"RELAY_RATE_LIMIT,default=30"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS,default=*"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	NATSURL         string        `env:"NATS_URL"`
	EventsSubject   string        `env:"RELAY_EVENTS_SUBJECT,default=washrelay.tickets.submitted"`
	EventsStream    string        `env:"RELAY_EVENTS_STREAM,default=WASHRELAY"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom returns a Config populated from l and validated.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values envconfig cannot express in struct tags.
func (c Config) Validate() error {
	u, err := url.Parse(c.UpstreamBaseURL)
	if err != nil {
		return fmt.Errorf("invalid RELAY_UPSTREAM_BASE_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("invalid RELAY_UPSTREAM_BASE_URL: %q", c.UpstreamBaseURL)
	}
	if c.UpstreamTimeout <= 0 {
		return errors.New("RELAY_UPSTREAM_TIMEOUT must be positive")
	}
	if c.RateLimit < 0 {
		return errors.New("RELAY_RATE_LIMIT must not be negative")
	}
	return nil
}
