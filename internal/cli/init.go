// Package cli holds the start-up steps shared by the mfdist binaries.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mfdist/internal/config"
	applog "mfdist/internal/log"
	"mfdist/internal/storage"
)

// SetupLogger builds the process logger for component at the given level and
// installs it as the slog default. Unknown levels fall back to info.
func SetupLogger(level, component string) *applog.Logger {
	lvl, err := applog.ParseLevel(level)
	logger := applog.New(applog.Config{Level: lvl, Component: component})
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", level)
	}
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig exits the process when the environment is invalid.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Configuration could not be parsed", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the lead database, applying migrations, or exits.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. cleanup
// runs before cancellation and done closes once it has finished or timeout
// elapsed.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup()
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-time.After(timeout):
			logger.Warn("Shutdown timeout reached", "timeout", timeout)
		}
		cancel()
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until shutdown has completed.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
