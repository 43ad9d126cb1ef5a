// Package cli holds the start-up steps shared by cmd/bankist and
// cmd/bankist-worker.
package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"bankist/internal/config"
	applog "bankist/internal/log"
)

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and installs it as
// the slog default.
func SetupLogger(component string) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: component,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and exits the process when it
// is invalid.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		if parent.Err() == nil {
			logger.Info("Shutdown signal received")
		}
	}()
	return ctx, stop
}

// Task is a long-running component. It must return once ctx is done.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// RunTasks runs every task until ctx is cancelled or one of them fails,
// then runs cleanup bounded by timeout.
func RunTasks(ctx context.Context, logger *applog.Logger, timeout time.Duration, cleanup func(context.Context) error, tasks ...Task) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		g.Go(func() error {
			logger.Debug("Task started", "task", task.Name)
			if err := task.Run(gctx); err != nil {
				return fmt.Errorf("%s: %w", task.Name, err)
			}
			logger.Debug("Task stopped", "task", task.Name)
			return nil
		})
	}

	runErr := g.Wait()

	if cleanup != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := cleanup(shutdownCtx); err != nil {
			logger.Failure(shutdownCtx, "Cleanup failed", err)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		}
	}

	if runErr != nil {
		return runErr
	}
	logger.Info("Shutdown complete")
	return nil
}

// EnsureSessionSecret fills an empty SESSION_SECRET with a random key.
// Sessions then do not survive a restart.
func EnsureSessionSecret(cfg *config.Config, logger *applog.Logger) error {
	if cfg.SessionSecret != "" {
		return nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("generate session secret: %w", err)
	}
	cfg.SessionSecret = hex.EncodeToString(key)
	logger.Info("No SESSION_SECRET set, generated an ephemeral one")
	return nil
}
