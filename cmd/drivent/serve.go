// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/drivent/drivent/internal/auth"
	"github.com/drivent/drivent/internal/auth/github"
	"github.com/drivent/drivent/internal/auth/postgres"
	"github.com/drivent/drivent/internal/config"
	"github.com/drivent/drivent/internal/logging"
	"github.com/drivent/drivent/internal/observability"
	"github.com/drivent/drivent/internal/web"
)

const serviceName = "drivent"

// observabilityStopTimeout bounds stopping the metrics server.
const observabilityStopTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var runMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API serving sign-in, GitHub login, and sign-up,
plus the metrics and health server.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, loadOptions(cmd), runMigrations, nil)
		},
	}

	cmd.Flags().String("http-addr", ":4000", "HTTP API listen address")
	cmd.Flags().String("metrics-addr", "127.0.0.1:9100", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log-format", "json", "log format (json or text)")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().String("database-url", "", "PostgreSQL connection URL")
	cmd.Flags().BoolVar(&runMigrations, "migrate", false, "apply pending migrations before serving")

	return cmd
}

// runServeWithDeps starts the service with injectable dependencies.
// If deps is nil, default implementations are used. It returns when ctx is
// cancelled, a shutdown signal arrives, or a server fails.
func runServeWithDeps(ctx context.Context, cmd *cobra.Command, opts config.Options, runMigrations bool, deps *ServeDeps) error {
	deps = deps.withDefaults()

	cfg, err := deps.ConfigLoader(opts)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cmd, cfg)
	slog.SetDefault(logger)

	if runMigrations {
		if err := migrateUp(deps.MigratorFactory, cfg.Database.URL, logger); err != nil {
			return err
		}
	}

	db, err := deps.DatabaseFactory(ctx, cfg.Database.URL, cfg.Database.ConnectTimeout, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	svc, err := newAuthService(cfg, db, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		obsServer ObservabilityServer
		metrics   *observability.Metrics
	)
	if cfg.Metrics.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Metrics.Addr, func(ctx context.Context) bool {
			return db.Ping(ctx) == nil
		}, logger)
		obsErrChan, err := obsServer.Start()
		if err != nil {
			return oops.With("operation", "start observability server").Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability", logger)
		metrics = obsServer.Metrics()
	} else {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	listener, err := deps.Listen("tcp", cfg.HTTP.Addr)
	if err != nil {
		stopObservability(obsServer, logger)
		return oops.Code("HTTP_LISTEN_FAILED").With("addr", cfg.HTTP.Addr).Wrap(err)
	}

	httpServer := &http.Server{
		Handler:           web.NewRouter(web.Deps{Auth: svc, Metrics: metrics, Logger: logger}),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		if serveErr := httpServer.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	cmd.Println("Drivent listening on " + listener.Addr().String())
	logger.Info("drivent ready", "http_addr", listener.Addr().String())

	var serveErr error
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case serveErr = <-errChan:
		logger.Error("http server failed", "error", serveErr)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping http server", "error", err)
	}
	stopObservability(obsServer, logger)

	logger.Info("shutdown complete")
	if serveErr != nil {
		return oops.Code("HTTP_SERVE_FAILED").Wrap(serveErr)
	}
	return nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level, _ := logging.ParseLevel(cfg.Log.Level) //nolint:errcheck // validated
	return logging.Setup(logging.Options{
		Service: serviceName,
		Version: version,
		Format:  cfg.Log.Format,
		Level:   level,
		Writer:  cmd.ErrOrStderr(),
	})
}

// newAuthService wires the repositories, hasher, issuer, and exchanger.
func newAuthService(cfg *config.Config, db Database, logger *slog.Logger) (*auth.Service, error) {
	issuer, err := auth.NewJWTIssuer(cfg.Auth.JWTSecret, auth.WithTokenTTL(cfg.Auth.TokenTTL))
	if err != nil {
		return nil, err
	}

	exchanger, err := github.NewExchanger(cfg.GitHub.Exchanger())
	if err != nil {
		return nil, err
	}

	return auth.NewAuthServiceWithLogger(
		postgres.NewUserRepository(db),
		postgres.NewSessionRepository(db),
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		issuer,
		exchanger,
		logger,
	)
}

func stopObservability(server ObservabilityServer, logger *slog.Logger) {
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), observabilityStopTimeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Warn("error stopping observability server", "error", err)
	}
}

// monitorServerErrors cancels ctx when a background server fails.
// It exits when an error arrives, the channel closes, or ctx is done.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string, logger *slog.Logger) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			logger.Error("server error, triggering shutdown", "server", serverName, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}
