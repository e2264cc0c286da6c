package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"mfdist/internal/backend"
	"mfdist/internal/cli"
	"mfdist/internal/core"
	apphttp "mfdist/internal/http"
	applog "mfdist/internal/log"
	"mfdist/internal/telemetry"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	shutdownTracing, err := telemetry.Setup(context.Background(), "mfdist", cfg.OTelEndpoint)
	if err != nil {
		logger.Error("Failed to initialize tracing", applog.FieldError, err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)
	result, err := factory.CreateBackend(context.Background(), backendConfig)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, applog.FieldBackend, cfg.LeadBackend)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Catalog:            core.DefaultCatalog(),
		Sessions:           result.Sessions,
		Leads:              result.Backend,
		Logger:             logger.WithComponent(applog.ComponentHTTP),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("Tracing shutdown error", applog.FieldError, err)
		}
	})

	logger.Info("Starting mfdist server",
		"port", cfg.Port,
		applog.FieldBackend, cfg.LeadBackend,
		"sessions", cfg.SessionBackend,
		"events", cfg.EventsEnabled(),
		"tracing", cfg.OTelEndpoint != "")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
