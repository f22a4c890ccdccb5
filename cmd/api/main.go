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

	"github.com/riskibarqy/prediction-pool/internal/app"
	"github.com/riskibarqy/prediction-pool/internal/config"
	"github.com/riskibarqy/prediction-pool/internal/observability"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	base := logging.NewJSON(cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"env", cfg.AppEnv,
	)

	telemetry, err := observability.Setup(cfg, base)
	if err != nil {
		base.Error("setup telemetry", "error", err)
		os.Exit(1)
	}
	logger := telemetry.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		_ = telemetry.Shutdown(context.Background())
		os.Exit(1)
	}

	serveErr := make(chan error, 2)

	go func() {
		srv := application.Server
		var err error
		logger.Info("http server starting",
			"addr", srv.Addr,
			"tls", cfg.TLSEnabled(),
			"data_store", cfg.DataStore,
		)
		if cfg.TLSEnabled() {
			// Certificates are already loaded into TLSConfig.
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http server: %w", err)
		}
	}()

	if redirect := application.RedirectServer; redirect != nil {
		go func() {
			logger.Info("https redirect server starting", "addr", redirect.Addr)
			if err := redirect.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- fmt.Errorf("redirect server: %w", err)
			}
		}()
	}

	exitCode := 0
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		logger.Error("server failed", "error", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if redirect := application.RedirectServer; redirect != nil {
		if err := redirect.Shutdown(shutdownCtx); err != nil {
			logger.Error("redirect server shutdown failed", "error", err)
			exitCode = 1
		}
	}
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		exitCode = 1
	}
	if err := application.Close(); err != nil {
		logger.Error("close storage failed", "error", err)
	}

	logger.Info("http server stopped")

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry shutdown: %v\n", err)
	}
	os.Exit(exitCode)
}
