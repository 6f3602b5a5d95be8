package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"washrelay/pkg/version"
	"washrelay/services/relay"
	"washrelay/services/relay/internal/app"
	"washrelay/services/relay/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "relay",
		Short:         "Forward laundry machine service requests to the vendor",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newSubmitCommand())
	cmd.AddCommand(newEventsCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP relay",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(ctx)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			a, err := app.Build(ctx, cfg, log.Logger)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := a.Close(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("close app")
				}
			}()

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           a.Middleware(a.Relay.Routes()),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", cfg.Addr).Str("upstream", cfg.UpstreamBaseURL).Msg("starting washrelay")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("shutdown server")
			}
			return nil
		},
	}
}

func newSubmitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <machine-id>",
		Short: "Submit one service request from the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(ctx)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			a, err := app.Build(ctx, cfg, log.Logger)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = a.Close(shutdownCtx)
			}()

			lookup, err := a.Relay.Submit(ctx, args[0])
			status, msg := relay.StatusFor(err)
			if err != nil {
				return fmt.Errorf("%d %s: %w", status, msg, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (site %s)\n", msg, lookup.SiteID)
			return nil
		},
	}
}

func newEventsCommand() *cobra.Command {
	var durable string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print ticket events published by running relays",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(ctx)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.NATSURL == "" {
				return errors.New("NATS_URL is required")
			}

			b, err := app.ConnectBus(cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			out := cmd.OutOrStdout()
			sub, err := b.Subscribe(ctx, cfg.EventsSubject, durable, func(_ context.Context, data []byte) error {
				var event relay.TicketEvent
				if err := json.Unmarshal(data, &event); err != nil {
					log.Warn().Err(err).Msg("skip malformed ticket event")
					return nil
				}
				_, err := fmt.Fprintf(out, "%s\t%s\tsite=%s\t%s\n",
					event.SubmittedAt.Format(time.RFC3339), event.MachineID, event.SiteID, event.EventID)
				return err
			})
			if err != nil {
				return fmt.Errorf("subscribe %s: %w", cfg.EventsSubject, err)
			}
			defer sub.Close()

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&durable, "durable", "washrelay-events-cli", "JetStream durable consumer name")
	return cmd
}
