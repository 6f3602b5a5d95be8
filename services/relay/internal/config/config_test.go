package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "https://www.cscsw.com/wp-json/cscsw/v1", cfg.UpstreamBaseURL)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 30, cfg.RateLimit)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "washrelay.tickets.submitted", cfg.EventsSubject)
	assert.Equal(t, "WASHRELAY", cfg.EventsStream)
	assert.Empty(t, cfg.NATSURL)
	assert.Empty(t, cfg.ProfileFile)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"RELAY_ADDR":              ":9090",
		"RELAY_UPSTREAM_BASE_URL": "http://localhost:8081/v1",
		"RELAY_UPSTREAM_TIMEOUT":  "5s",
		"RELAY_RATE_LIMIT":        "0",
		"CORS_ALLOWED_ORIGINS":    "https://a.example.com,https://b.example.com",
		"NATS_URL":                "nats://localhost:4222",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "http://localhost:8081/v1", cfg.UpstreamBaseURL)
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 0, cfg.RateLimit)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "relative upstream url", env: map[string]string{"RELAY_UPSTREAM_BASE_URL": "/wp-json"}},
		{name: "unsupported scheme", env: map[string]string{"RELAY_UPSTREAM_BASE_URL": "ftp://example.com"}},
		{name: "zero timeout", env: map[string]string{"RELAY_UPSTREAM_TIMEOUT": "0s"}},
		{name: "negative rate limit", env: map[string]string{"RELAY_RATE_LIMIT": "-1"}},
		{name: "unparsable timeout", env: map[string]string{"RELAY_UPSTREAM_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(tt.env))
			require.Error(t, err)
		})
	}
}
