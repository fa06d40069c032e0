package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/restql/internal/logger"
	"github.com/kailas-cloud/restql/internal/metrics"
	chiTransport "github.com/kailas-cloud/restql/internal/transport/chi"
	healthuc "github.com/kailas-cloud/restql/internal/usecase/health"
)

func serveCmd(a *app) *cobra.Command {
	var apiKeys []string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the query inspection HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(apiKeys) == 0 {
				apiKeys = a.cfg.HTTP.APIKeys
			}
			return serve(cmd.Context(), a, apiKeys)
		},
	}
	cmd.Flags().StringSliceVar(&apiKeys, "api-key", nil, "bearer tokens accepted by the server (overrides http.api_keys)")
	return cmd
}

func serve(ctx context.Context, a *app, apiKeys []string) error {
	logger, err := logpkg.NewLogger(a.env, a.cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting restql API server", append(logFields(a), zap.Int("http_port", a.cfg.HTTP.Port))...)

	// Register metrics explicitly (no init())
	metrics.RegisterCompilerMetrics(prometheus.DefaultRegisterer)
	metrics.RegisterHTTPMetrics(prometheus.DefaultRegisterer)

	reg, err := a.registry()
	if err != nil {
		return err
	}
	logger.Info("Schemas loaded", zap.Strings("types", reg.Names()))

	// No executor ships: search and count reply 501 until one is wired.
	compiler := a.compiler(reg, nil)
	server := chiTransport.NewServer(compiler, healthuc.New(reg, nil), chiTransport.Limits{
		DefaultPageSize: a.cfg.Query.DefaultPageSize,
		MaxPageSize:     a.cfg.Query.MaxPageSize,
		Separators:      a.cfg.Query.ClauseSeparators,
	})

	addr := fmt.Sprintf(":%d", a.cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, chiTransport.RouterOptions{Logger: logger, APIKeys: apiKeys}),
		ReadTimeout:  time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
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
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
