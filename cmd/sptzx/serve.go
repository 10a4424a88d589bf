package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sagarc03/sptzx"
	"github.com/sagarc03/sptzx/config"
	sptzxhttp "github.com/sagarc03/sptzx/http"
	"github.com/sagarc03/sptzx/keybackend"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the sptzx relay.

Any objects left in the storage medium by a previous process are purged
before the server starts accepting uploads.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: 0.0.0.0:3000, env: SPTZX_SERVER_ADDR)")
	serveCmd.Flags().String("base-url", "", "public base URL used in links (env: SPTZX_SERVER_BASE_URL)")
	serveCmd.Flags().Int("lifetime", 0, "object lifetime in seconds (default: 300, env: SPTZX_RELAY_LIFETIME)")
	serveCmd.Flags().Int64("max-payload-size", 0, "maximum upload size in bytes (env: SPTZX_RELAY_MAX_PAYLOAD_SIZE)")
	serveCmd.Flags().Int("sweep-interval", 0, "seconds between expiry sweeps (env: SPTZX_RELAY_SWEEP_INTERVAL)")
	serveCmd.Flags().String("secret-file", "", "file holding the signing secret (env: SPTZX_RELAY_SECRET_FILE)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	secret, err := keybackend.LoadSecret(cfg.Relay.SecretConfig)
	if err != nil {
		return fmt.Errorf("load signing secret: %w", err)
	}

	auth, err := sptzx.NewLinkAuthenticator(secret)
	if err != nil {
		return fmt.Errorf("create authenticator: %w", err)
	}

	medium, closeMedium, err := openMedium(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s medium: %w", cfg.Storage.Medium, err)
	}
	defer closeMedium()

	if _, err := purgeMedium(ctx, medium); err != nil {
		return err
	}

	store, err := sptzx.NewObjectStore(medium, sptzx.StoreConfig{
		MaxPayloadSize:   cfg.Relay.MaxPayloadSize,
		MaxResidentBytes: cfg.Relay.MaxResidentBytes,
		Clock:            sptzx.SystemClock(),
	})
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}

	relay, err := sptzx.NewRelay(store, auth, sptzx.RelayConfig{Lifetime: cfg.Relay.LifetimeDuration()})
	if err != nil {
		return fmt.Errorf("create relay: %w", err)
	}

	sweeper, err := sptzx.NewSweeper(store, sptzx.SweeperConfig{
		Interval: cfg.Relay.SweepIntervalDuration(),
		Timeout:  cfg.Relay.SweepTimeoutDuration(),
	})
	if err != nil {
		return fmt.Errorf("create sweeper: %w", err)
	}

	handler := sptzxhttp.NewHandler(&sptzxhttp.HandlerConfig{
		BaseURL:   cfg.Server.BaseURL,
		CORS:      cfg.CORS,
		RateLimit: cfg.RateLimit,
		Compress:  cfg.Server.Compress,
	}, relay)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sweeper.Run(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"addr", cfg.Server.Addr,
			"base_url", cfg.Server.BaseURL,
			"medium", cfg.Storage.Medium,
			"max_payload", humanize.IBytes(uint64(cfg.Relay.MaxPayloadSize)),
			"lifetime", cfg.Relay.LifetimeDuration(),
			"sweep_interval", cfg.Relay.SweepIntervalDuration(),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stop()
		<-sweepDone
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "err", err)
	}
	<-sweepDone

	slog.Info("server stopped", "resident_objects", store.Len(), "resident_bytes", humanize.IBytes(uint64(store.ResidentBytes())))
	return nil
}
