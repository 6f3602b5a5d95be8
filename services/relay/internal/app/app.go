package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"washrelay/pkg/bus"
	"washrelay/pkg/telemetry"
	"washrelay/pkg/version"
	"washrelay/services/relay"
	"washrelay/services/relay/internal/config"
)

// App bundles a Relay with the infrastructure it was built on.
type App struct {
	Relay      *relay.Relay
	Middleware func(http.Handler) http.Handler

	bus               *bus.Bus
	shutdownTelemetry func(context.Context) error
}

// Build wires telemetry, the optional event bus and the relay from cfg.
func Build(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, error) {
	shutdownTelemetry, middleware, err := telemetry.Init(ctx, version.Name, cfg.OTLPEndpoint, logger)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	a := &App{Middleware: middleware, shutdownTelemetry: shutdownTelemetry}

	profile, err := relay.LoadProfile(cfg.ProfileFile)
	if err != nil {
		return nil, errors.Join(err, a.Close(ctx))
	}

	opts := relay.Options{
		Client: relay.NewClient(cfg.UpstreamBaseURL, &http.Client{
			Timeout:   cfg.UpstreamTimeout,
			Transport: telemetry.Transport(nil),
		}),
		Profile:        &profile,
		Logger:         logger,
		EventsSubject:  cfg.EventsSubject,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
	}

	if cfg.NATSURL != "" {
		b, err := ConnectBus(cfg)
		if err != nil {
			return nil, errors.Join(err, a.Close(ctx))
		}
		a.bus = b
		opts.Events = b
		logger.Info().Str("subject", cfg.EventsSubject).Msg("publishing ticket events")
	}

	r, err := relay.New(opts)
	if err != nil {
		return nil, errors.Join(err, a.Close(ctx))
	}
	a.Relay = r
	return a, nil
}

// ConnectBus connects to NATS and makes sure the events stream exists.
func ConnectBus(cfg config.Config) (*bus.Bus, error) {
	b, err := bus.New(cfg.NATSURL, nats.Name(version.Name))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	if err := b.EnsureStream(cfg.EventsStream, cfg.EventsSubject); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

// Close drains the event bus and flushes pending spans.
func (a *App) Close(ctx context.Context) error {
	if a.bus != nil {
		a.bus.Close()
		a.bus = nil
	}
	if a.shutdownTelemetry != nil {
		if err := a.shutdownTelemetry(ctx); err != nil {
			return fmt.Errorf("shutdown telemetry: %w", err)
		}
	}
	return nil
}
