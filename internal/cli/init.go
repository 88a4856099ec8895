// Package cli holds the start-up steps shared by cmd/jard, cmd/jard-worker
// and cmd/jard-export.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"jard/internal/config"
	applog "jard/internal/log"
	"jard/internal/storage"
)

// SetupLogger builds the application logger for level and installs it as
// the slog default.
func SetupLogger(level string) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenLocalCache opens the on-device record cache at dbPath.
// Exits the process on failure: nothing works without it.
func OpenLocalCache(logger *applog.Logger, dbPath string) *storage.SQLiteCache {
	cache, err := storage.NewSQLiteCache(dbPath)
	if err != nil {
		logger.Error("Failed to open local cache", "error", err, "path", dbPath)
		os.Exit(1)
	}
	logger.Info("Local cache ready", "path", dbPath)
	return cache
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. cleanup
// runs once, after the signal, bounded by timeout. done is closed when it
// returns or the timeout expires.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (ctx context.Context, done <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer close(finished)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cleaned := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(cleaned)
		}()

		select {
		case <-cleaned:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
	}()

	return ctx, finished
}
